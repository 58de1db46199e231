// Package interfaces defines core abstractions for the products API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/beaverkiria/uptech-api/productsfeed/entities"
)

// DataQualityReport provides a summary of data quality issues found in an
// imported product snapshot.
type DataQualityReport struct {
	DuplicateSberIDs        []int64
	DanglingAnalogueIDs     []int64 // analogue ids with no matching product record
	SelfReferencingProducts []int64 // products listing their own id as an analogue
	ProductsWithoutPrice    int
	ProductsWithoutScore    int
	ProductsWithoutMedsisID int
}

// DataStore defines the contract for product storage operations.
// It provides thread-safe access to the product snapshot with atomic
// operations for zero-downtime updates, and the bulk resolve used by the
// ranking engine.
type DataStore interface {
	// Data retrieval methods
	GetProducts() []entities.Product
	GetProductsMap() map[int64]*entities.Product
	ResolveProducts(ids []int64) map[int64]*entities.Product
	GetLastUpdated() time.Time
	GetSnapshotID() string
	IsUpdating() bool
	GetServerStartTime() time.Time
	SetServerStartTime(startTime time.Time)

	// Data update methods
	UpdateData(products []entities.Product, productsMap map[int64]*entities.Product, snapshotID string)
	BeginUpdate() bool
	EndUpdate()
}

// Parser defines the contract for importing product data from the external
// feed. It handles downloading, decoding, and joining raw feed files into
// product entities.
type Parser interface {
	// ParseAllProducts downloads the feed files and returns the joined
	// product records together with the snapshot id of this import run.
	ParseAllProducts() ([]entities.Product, string, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated feed refreshes and staleness checks.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	SearchProducts(w http.ResponseWriter, r *http.Request)
	ServePagedProducts(w http.ResponseWriter, r *http.Request)
	FindProduct(w http.ResponseWriter, r *http.Request)
	ProductInfo(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled feed refresh time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ValidateProduct checks if a product entity is valid
	ValidateProduct(p *entities.Product) error

	// ValidateInput validates user input strings
	ValidateInput(input string) error

	// ValidateProductID validates a product id path parameter
	ValidateProductID(input string) (int64, error)

	// ReportDataQuality generates a data quality report with all issues found
	ReportDataQuality(products []entities.Product) *DataQualityReport
}
