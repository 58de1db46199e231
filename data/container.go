// Package data provides thread-safe data storage and management for the products API.
// It includes the DataContainer struct with atomic operations for zero-downtime
// snapshot swaps and the bulk product resolve used by the ranking engine.
package data

import (
	"sync/atomic"
	"time"

	"github.com/beaverkiria/uptech-api/interfaces"
	"github.com/beaverkiria/uptech-api/logging"
	"github.com/beaverkiria/uptech-api/productsfeed/entities"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the current product snapshot with atomic pointers for
// zero-downtime updates.
type DataContainer struct {
	products        atomic.Value // []entities.Product
	productsMap     atomic.Value // map[int64]*entities.Product
	snapshotID      atomic.Value // string
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.products.Store(make([]entities.Product, 0))
	dc.productsMap.Store(make(map[int64]*entities.Product))
	dc.snapshotID.Store("")
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Thread-safe getters with type check

// GetProducts returns the current product snapshot
func (dc *DataContainer) GetProducts() []entities.Product {
	if v := dc.products.Load(); v != nil {
		if products, ok := v.([]entities.Product); ok {
			return products
		}
	}

	logging.Warn("Products list is empty or invalid")
	return []entities.Product{}
}

// GetProductsMap returns the product map for O(1) lookups
func (dc *DataContainer) GetProductsMap() map[int64]*entities.Product {
	if v := dc.productsMap.Load(); v != nil {
		if productsMap, ok := v.(map[int64]*entities.Product); ok {
			return productsMap
		}
	}

	logging.Warn("ProductsMap is empty or invalid")
	return make(map[int64]*entities.Product)
}

// ResolveProducts bulk-fetches product records by id. Ids without a matching
// record are simply absent from the result. All callers of one snapshot get
// the same record pointers, so a batch resolve shares records across focal
// products.
func (dc *DataContainer) ResolveProducts(ids []int64) map[int64]*entities.Product {
	productsMap := dc.GetProductsMap()

	resolved := make(map[int64]*entities.Product, len(ids))
	for _, id := range ids {
		if p, ok := productsMap[id]; ok {
			resolved[id] = p
		}
	}
	return resolved
}

// GetSnapshotID returns the id of the current feed snapshot
func (dc *DataContainer) GetSnapshotID() string {
	if v := dc.snapshotID.Load(); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}

	logging.Warn("Could not get the snapshot id value")
	return ""
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically swaps in a new product snapshot (zero downtime
// replacement)
func (dc *DataContainer) UpdateData(products []entities.Product, productsMap map[int64]*entities.Product, snapshotID string) {
	dc.products.Store(products)
	dc.productsMap.Store(productsMap)
	dc.snapshotID.Store(snapshotID)
	dc.lastUpdated.Store(time.Now())
}

// BuildProductsMap creates the lookup map for a product slice. Map values
// point into the slice, so a snapshot shares one record instance per product.
func BuildProductsMap(products []entities.Product) map[int64]*entities.Product {
	productsMap := make(map[int64]*entities.Product, len(products))
	for i := range products {
		productsMap[products[i].ID] = &products[i]
	}
	return productsMap
}

// BeginUpdate marks the start of a data update operation.
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
