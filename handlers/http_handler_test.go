package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beaverkiria/uptech-api/data"
	"github.com/beaverkiria/uptech-api/health"
	"github.com/beaverkiria/uptech-api/interfaces"
	"github.com/beaverkiria/uptech-api/productsfeed/entities"
	"github.com/beaverkiria/uptech-api/validation"
	"github.com/go-chi/chi/v5"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func i64ptr(v int64) *int64   { return &v }

// newTestContainer builds a data container with a small catalog:
//
//	1 Aspirin        price 100, score 9, analogues 2 and 3
//	2 Aspirin Forte  price 50, score 7, the cheapest usable analogue
//	3 Ibuprofen      price 200, score 8, the most effective analogue
func newTestContainer() *data.DataContainer {
	products := []entities.Product{
		{
			ID:                1,
			SberProductID:     1001,
			Name:              "Aspirin",
			Price:             fptr(100),
			Score:             fptr(9),
			Safety:            iptr(90),
			SideEffects:       iptr(5),
			Contraindications: iptr(5),
			Effectiveness:     iptr(90),
			MedsisID:          i64ptr(201),
			AnalogueIDs:       []int64{2, 3},
		},
		{
			ID:                2,
			SberProductID:     1002,
			Name:              "Aspirin Forte",
			Price:             fptr(50),
			Score:             fptr(7),
			Safety:            iptr(80),
			SideEffects:       iptr(10),
			Contraindications: iptr(10),
			Effectiveness:     iptr(95),
			MedsisID:          i64ptr(202),
		},
		{
			ID:                3,
			SberProductID:     1003,
			Name:              "Ibuprofen",
			Price:             fptr(200),
			Score:             fptr(8),
			Safety:            iptr(85),
			SideEffects:       iptr(10),
			Contraindications: iptr(10),
			Effectiveness:     iptr(96),
			MedsisID:          i64ptr(203),
		},
	}

	dc := data.NewDataContainer()
	dc.UpdateData(products, data.BuildProductsMap(products), "test-snapshot")
	dc.SetServerStartTime(time.Now())
	return dc
}

func newTestHandler(dc *data.DataContainer) interfaces.HTTPHandler {
	return NewHTTPHandler(dc, validation.NewDataValidator(), health.NewHealthChecker(dc))
}

func newTestRouter(h interfaces.HTTPHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/products", h.SearchProducts)
	r.Get("/products/page/{pageNumber}", h.ServePagedProducts)
	r.Get("/products/{productId}", h.FindProduct)
	r.Get("/products/{productId}/info", h.ProductInfo)
	r.Get("/health", h.HealthCheck)
	return r
}

func doRequest(t *testing.T, router *chi.Mux, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestFindProduct(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	rr := doRequest(t, router, "/products/1")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var got ProductResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got.ID != 1 || got.Name != "Aspirin" {
		t.Errorf("Expected product 1 Aspirin, got %d %s", got.ID, got.Name)
	}

	// Cheaper trustworthy analogue exists, so the focal is not the pick
	if got.IsCheapest {
		t.Error("Focal should not be flagged cheapest with a cheaper scored analogue")
	}
	// Score 9 > 6 and effectiveness 90 >= 80
	if !got.IsEffective {
		t.Error("Focal should be flagged effective")
	}
	// Rate (90+95+95)/3 = 93.33 >= 80 with score >= 6
	if !got.IsTrustworthy {
		t.Error("Focal should be flagged trustworthy")
	}

	if len(got.Analogues) != 2 {
		t.Fatalf("Expected 2 analogues, got %d", len(got.Analogues))
	}
	if got.Analogues[0].ID != 2 || got.Analogues[1].ID != 3 {
		t.Error("Analogues should keep analogue_ids order")
	}
	if !got.Analogues[0].IsEffective {
		t.Error("Analogue 2 with effectiveness 95 should be flagged effective against 90")
	}
	if got.Analogues[0].IsTrustworthy {
		t.Error("Analogue 2 with a lower rate should not be flagged trustworthy")
	}
}

func TestFindProduct_NotFound(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	rr := doRequest(t, router, "/products/999")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestFindProduct_InvalidID(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	for _, path := range []string{"/products/abc", "/products/-5", "/products/0"} {
		rr := doRequest(t, router, path)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", path, rr.Code)
		}
	}
}

func TestProductInfo(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	rr := doRequest(t, router, "/products/1/info")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var got ProductInfoResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got.Cheapest == nil || got.Cheapest.ID != 2 {
		t.Errorf("Expected product 2 as cheapest analogue, got %+v", got.Cheapest)
	}
	if got.Effective == nil || got.Effective.ID != 3 {
		t.Errorf("Expected product 3 as effective analogue, got %+v", got.Effective)
	}
}

func TestProductInfo_NoAnalogues(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	// Product 2 has no analogues, both picks must be null
	rr := doRequest(t, router, "/products/2/info")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var got ProductInfoResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got.Cheapest != nil || got.Effective != nil {
		t.Errorf("Expected null picks, got cheapest=%+v effective=%+v", got.Cheapest, got.Effective)
	}
}

func TestSearchProducts(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	tests := []struct {
		name          string
		path          string
		expectedCode  int
		expectedIDs   []int64
		expectedTotal int
	}{
		{
			name:          "no filter returns everything",
			path:          "/products",
			expectedCode:  http.StatusOK,
			expectedIDs:   []int64{1, 2, 3},
			expectedTotal: 3,
		},
		{
			name:          "prefix filter is case-insensitive",
			path:          "/products?name=asp",
			expectedCode:  http.StatusOK,
			expectedIDs:   []int64{1, 2},
			expectedTotal: 2,
		},
		{
			name:          "prefix matches from the start only",
			path:          "/products?name=forte",
			expectedCode:  http.StatusOK,
			expectedIDs:   []int64{},
			expectedTotal: 0,
		},
		{
			name:          "pagination slices the match list",
			path:          "/products?page=2&page_size=2",
			expectedCode:  http.StatusOK,
			expectedIDs:   []int64{3},
			expectedTotal: 3,
		},
		{
			name:          "page past the end is empty, not an error",
			path:          "/products?page=50",
			expectedCode:  http.StatusOK,
			expectedIDs:   []int64{},
			expectedTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, tt.path)
			if rr.Code != tt.expectedCode {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedCode, rr.Code, rr.Body.String())
			}

			var got SearchResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if got.TotalItems != tt.expectedTotal {
				t.Errorf("Expected total %d, got %d", tt.expectedTotal, got.TotalItems)
			}
			if len(got.Results) != len(tt.expectedIDs) {
				t.Fatalf("Expected %d results, got %d", len(tt.expectedIDs), len(got.Results))
			}
			for i, id := range tt.expectedIDs {
				if got.Results[i].ID != id {
					t.Errorf("Result %d: expected product %d, got %d", i, id, got.Results[i].ID)
				}
			}
		})
	}
}

func TestSearchProducts_InvalidParams(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	for _, path := range []string{
		"/products?page=0",
		"/products?page=abc",
		"/products?page_size=-1",
		"/products?page_size=abc",
		"/products?name=DROP%20TABLE%3B--",
	} {
		rr := doRequest(t, router, path)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", path, rr.Code)
		}
	}
}

func TestSearchProducts_PageSizeCap(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	rr := doRequest(t, router, "/products?page_size=10000")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var got SearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got.PageSize != maxPageSize {
		t.Errorf("Expected page_size capped at %d, got %d", maxPageSize, got.PageSize)
	}
}

func TestServePagedProducts(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	rr := doRequest(t, router, "/products/page/1")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	var pageProducts []entities.Product
	if err := json.Unmarshal(got["data"], &pageProducts); err != nil {
		t.Fatalf("Failed to decode data field: %v", err)
	}
	if len(pageProducts) != 3 {
		t.Errorf("Expected 3 products on page 1, got %d", len(pageProducts))
	}
}

func TestServePagedProducts_OutOfRange(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	rr := doRequest(t, router, "/products/page/99")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for out-of-range page, got %d", rr.Code)
	}
}

func TestServePagedProducts_InvalidPage(t *testing.T) {
	router := newTestRouter(newTestHandler(newTestContainer()))

	for _, path := range []string{"/products/page/abc", "/products/page/0", "/products/page/-1"} {
		rr := doRequest(t, router, path)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", path, rr.Code)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("populated container is healthy", func(t *testing.T) {
		router := newTestRouter(newTestHandler(newTestContainer()))

		rr := doRequest(t, router, "/health")
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var got map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if got["status"] != "healthy" {
			t.Errorf("Expected healthy status, got %v", got["status"])
		}
	})

	t.Run("empty container is unhealthy", func(t *testing.T) {
		dc := data.NewDataContainer()
		dc.SetServerStartTime(time.Now())
		router := newTestRouter(newTestHandler(dc))

		rr := doRequest(t, router, "/health")
		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", rr.Code)
		}
	})
}
