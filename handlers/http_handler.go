// Package handlers provides HTTP request handlers for the products API
// endpoints: product search, detail and info views with analogue
// classifications, paged database access and health checks.
package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/beaverkiria/uptech-api/interfaces"
	"github.com/beaverkiria/uptech-api/logging"
	"github.com/beaverkiria/uptech-api/productsfeed/entities"
	"github.com/beaverkiria/uptech-api/ranking"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	databasePageSize = 10
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore interfaces.DataStore
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator, health interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		dataStore: dataStore,
		validator: validator,
		health:    health,
	}
}

// ServeHTTP implements the http.Handler interface. Actual routing is handled
// by chi.
func (h *HTTPHandlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// AnalogueResponse is an analogue record with the three booleans computed
// pairwise against the focal product.
type AnalogueResponse struct {
	entities.Product
	IsCheapest    bool `json:"is_cheapest"`
	IsEffective   bool `json:"is_effective"`
	IsTrustworthy bool `json:"is_trustworthy"`
}

// ProductResponse is a product record with its own classification flags and
// the analogue views, in analogue_ids resolution order.
type ProductResponse struct {
	entities.Product
	IsCheapest    bool               `json:"is_cheapest"`
	IsEffective   bool               `json:"is_effective"`
	IsTrustworthy bool               `json:"is_trustworthy"`
	Analogues     []AnalogueResponse `json:"analogues"`
}

// ProductInfoResponse is the info-endpoint summary. Both fields are null
// when no analogue qualifies.
type ProductInfoResponse struct {
	Cheapest  *entities.Product `json:"cheapest"`
	Effective *entities.Product `json:"effective"`
}

// SearchResponse is a page of classified products
type SearchResponse struct {
	Results    []ProductResponse `json:"results"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
	MaxPage    int               `json:"max_page"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// buildProductResponse renders one classification result
func buildProductResponse(p *entities.Product, c ranking.Classification) ProductResponse {
	analogues := make([]AnalogueResponse, 0, len(c.Analogues))
	for _, view := range c.Analogues {
		analogues = append(analogues, AnalogueResponse{
			Product:       *view.Product,
			IsCheapest:    view.IsCheapest,
			IsEffective:   view.IsEffective,
			IsTrustworthy: view.IsTrustworthy,
		})
	}

	return ProductResponse{
		Product:       *p,
		IsCheapest:    c.IsCheapest,
		IsEffective:   c.IsEffective,
		IsTrustworthy: c.IsTrustworthy,
		Analogues:     analogues,
	}
}

// SearchProducts returns a page of products filtered by an optional name
// prefix, each with its classification flags and analogue views. The whole
// page is classified with a single bulk analogue resolve.
func (h *HTTPHandlerImpl) SearchProducts(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name != "" {
		if err := h.validator.ValidateInput(name); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	page, pageSize, err := parsePageParams(r)
	if err != nil {
		logging.Warn("Unusual user input", "query", r.URL.RawQuery)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	products := h.dataStore.GetProducts()

	var matched []*entities.Product
	prefix := strings.ToLower(name)
	for i := range products {
		if prefix == "" || strings.HasPrefix(strings.ToLower(products[i].Name), prefix) {
			matched = append(matched, &products[i])
		}
	}

	totalItems := len(matched)
	maxPage := (totalItems + pageSize - 1) / pageSize
	if maxPage == 0 {
		maxPage = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}
	pageProducts := matched[start:end]

	// One bulk resolve for the whole page
	classifications := ranking.ClassifyBatch(pageProducts, h.dataStore)

	results := make([]ProductResponse, 0, len(pageProducts))
	for _, p := range pageProducts {
		results = append(results, buildProductResponse(p, classifications[p.ID]))
	}

	h.RespondWithJSON(w, http.StatusOK, SearchResponse{
		Results:    results,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		MaxPage:    maxPage,
	})
}

// ServePagedProducts returns a raw page of the product database
func (h *HTTPHandlerImpl) ServePagedProducts(w http.ResponseWriter, r *http.Request) {
	pageNumber := chi.URLParam(r, "pageNumber")
	page, err := strconv.Atoi(pageNumber)
	if err != nil || page < 1 {
		logging.Warn("Unusual user input", "pageNumber", pageNumber)
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	products := h.dataStore.GetProducts()
	start := (page - 1) * databasePageSize
	end := start + databasePageSize

	if start >= len(products) {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}

	if end > len(products) {
		end = len(products)
	}

	totalItems := len(products)
	maxPage := (totalItems + databasePageSize - 1) / databasePageSize

	response := map[string]interface{}{
		"data":       products[start:end],
		"page":       page,
		"pageSize":   databasePageSize,
		"totalItems": totalItems,
		"maxPage":    maxPage,
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}

// FindProduct returns a product detail view: the record, its classification
// flags, and its analogues with pairwise flags.
func (h *HTTPHandlerImpl) FindProduct(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateProductID(chi.URLParam(r, "productId"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	productsMap := h.dataStore.GetProductsMap()
	p, exists := productsMap[id]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	classification := ranking.Classify(p, h.dataStore)
	h.RespondWithJSON(w, http.StatusOK, buildProductResponse(p, classification))
}

// ProductInfo returns the cheapest/effective analogue summary for a product
func (h *HTTPHandlerImpl) ProductInfo(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateProductID(chi.URLParam(r, "productId"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	productsMap := h.dataStore.GetProductsMap()
	p, exists := productsMap[id]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	summary := ranking.Summarize(p, h.dataStore)
	h.RespondWithJSON(w, http.StatusOK, ProductInfoResponse{
		Cheapest:  summary.Cheapest,
		Effective: summary.Effective,
	})
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()
	uptime := time.Since(h.dataStore.GetServerStartTime())

	response := map[string]interface{}{
		"status":         status,
		"uptime_seconds": uptime.Seconds(),
		"data":           data,
		"system": map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// parsePageParams reads page/page_size query parameters with defaults
func parsePageParams(r *http.Request) (page, pageSize int, err error) {
	page = 1
	pageSize = defaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errInvalidPage
		}
	}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return 0, 0, errInvalidPageSize
		}
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}

	return page, pageSize, nil
}
