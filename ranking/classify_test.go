package ranking

import (
	"reflect"
	"testing"

	"github.com/beaverkiria/uptech-api/productsfeed/entities"
)

// mockResolver records every bulk lookup it serves
type mockResolver struct {
	products map[int64]*entities.Product
	calls    int
	lastIDs  []int64
}

func (m *mockResolver) ResolveProducts(ids []int64) map[int64]*entities.Product {
	m.calls++
	m.lastIDs = ids

	out := make(map[int64]*entities.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out
}

func newMockResolver(products ...*entities.Product) *mockResolver {
	m := &mockResolver{products: make(map[int64]*entities.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func ratedProduct(id int64, price, score *float64, safety, side, contra, eff *int) *entities.Product {
	return &entities.Product{
		ID:                id,
		Name:              "Product",
		Price:             price,
		Score:             score,
		Safety:            safety,
		SideEffects:       side,
		Contraindications: contra,
		Effectiveness:     eff,
	}
}

func TestClassify_DetailScenario(t *testing.T) {
	// Focal: rate (1+99+99)/3 = 66.33, effective on its own, cheapest
	// trustworthy pick among itself and its priced analogues.
	focal := ratedProduct(1, fptr(1), fptr(9), iptr(1), iptr(1), iptr(1), iptr(90))
	focal.AnalogueIDs = []int64{2, 3, 4}

	// Higher safety lifts the rate to 69.33: more trustworthy, not more
	// effective (equal effectiveness).
	a2 := ratedProduct(2, fptr(10), fptr(9), iptr(10), iptr(1), iptr(1), iptr(90))
	// Cheaper than the focal but score below 6: loses the trustworthy pick.
	a3 := ratedProduct(3, fptr(0.5), fptr(5), iptr(1), iptr(1), iptr(1), iptr(95))
	// No price: excluded from the cheapness pool entirely.
	a4 := ratedProduct(4, nil, fptr(8), iptr(1), iptr(1), iptr(1), iptr(80))

	resolver := newMockResolver(a2, a3, a4)

	got := Classify(focal, resolver)

	if !got.IsCheapest {
		t.Error("Focal should be the cheapest trustworthy pick in its pool")
	}
	if !got.IsEffective {
		t.Error("Focal with score 9 and effectiveness 90 should be effective")
	}
	if got.IsTrustworthy {
		t.Error("Focal with rate 66.33 should not be trustworthy")
	}

	if len(got.Analogues) != 3 {
		t.Fatalf("Expected 3 analogue views, got %d", len(got.Analogues))
	}

	views := map[int64]AnalogueView{}
	for _, v := range got.Analogues {
		views[v.Product.ID] = v
	}

	if !views[2].IsTrustworthy {
		t.Error("Analogue 2 with a higher rate should be flagged trustworthy")
	}
	if views[2].IsEffective {
		t.Error("Analogue 2 with equal effectiveness should not be flagged effective")
	}
	if views[3].IsTrustworthy {
		t.Error("Analogue 3 with an equal rate should not be flagged trustworthy")
	}
	if !views[3].IsEffective {
		t.Error("Analogue 3 with higher effectiveness should be flagged effective")
	}

	// Focal has a score, so the relative-gain set is empty
	for id, v := range views {
		if v.IsCheapest {
			t.Errorf("Analogue %d should not be flagged cheaper for a scored focal", id)
		}
	}
}

func TestClassify_NoPricedAnalogues(t *testing.T) {
	focal := ratedProduct(1, fptr(1), fptr(9), nil, nil, nil, nil)
	focal.AnalogueIDs = []int64{2}

	a2 := ratedProduct(2, nil, fptr(9), nil, nil, nil, nil)
	resolver := newMockResolver(a2)

	got := Classify(focal, resolver)

	if got.IsCheapest {
		t.Error("Focal with no priced analogues cannot be the cheapest pick")
	}
}

func TestClassify_UnresolvedAnaloguesDropped(t *testing.T) {
	focal := ratedProduct(1, fptr(1), fptr(9), nil, nil, nil, nil)
	focal.AnalogueIDs = []int64{2, 999, 3}

	a2 := ratedProduct(2, fptr(2), fptr(7), nil, nil, nil, nil)
	a3 := ratedProduct(3, fptr(3), fptr(7), nil, nil, nil, nil)
	resolver := newMockResolver(a2, a3)

	got := Classify(focal, resolver)

	if len(got.Analogues) != 2 {
		t.Fatalf("Expected unresolved id to be dropped, got %d views", len(got.Analogues))
	}
	if got.Analogues[0].Product.ID != 2 || got.Analogues[1].Product.ID != 3 {
		t.Error("Analogue views should keep analogue_ids order")
	}
}

func TestClassify_NoAnalogueIDsSkipsResolver(t *testing.T) {
	focal := ratedProduct(1, fptr(1), fptr(9), nil, nil, nil, nil)
	resolver := newMockResolver()

	got := Classify(focal, resolver)

	if resolver.calls != 0 {
		t.Errorf("Resolver should not be called for an empty analogue list, got %d calls", resolver.calls)
	}
	if got.IsCheapest {
		t.Error("Focal without analogues cannot be the cheapest pick")
	}
	if len(got.Analogues) != 0 {
		t.Errorf("Expected no analogue views, got %d", len(got.Analogues))
	}
}

func TestClassifyBatch_SingleResolve(t *testing.T) {
	p1 := ratedProduct(1, fptr(10), fptr(9), nil, nil, nil, nil)
	p1.AnalogueIDs = []int64{10, 11}
	p2 := ratedProduct(2, fptr(20), fptr(9), nil, nil, nil, nil)
	p2.AnalogueIDs = []int64{11, 12}

	a10 := ratedProduct(10, fptr(1), fptr(7), nil, nil, nil, nil)
	a11 := ratedProduct(11, fptr(2), fptr(7), nil, nil, nil, nil)
	a12 := ratedProduct(12, fptr(3), fptr(7), nil, nil, nil, nil)
	resolver := newMockResolver(a10, a11, a12)

	results := ClassifyBatch([]*entities.Product{p1, p2}, resolver)

	if resolver.calls != 1 {
		t.Errorf("Expected exactly one bulk resolve, got %d", resolver.calls)
	}

	// Union of analogue ids in first-seen order
	expectedIDs := []int64{10, 11, 12}
	if !reflect.DeepEqual(resolver.lastIDs, expectedIDs) {
		t.Errorf("Expected resolve of %v, got %v", expectedIDs, resolver.lastIDs)
	}

	if len(results) != 2 {
		t.Fatalf("Expected results for 2 products, got %d", len(results))
	}

	// The shared analogue must be the same record in both classifications
	shared1 := results[1].Analogues[1].Product
	shared2 := results[2].Analogues[0].Product
	if shared1 != shared2 {
		t.Error("Shared analogue should be resolved once and referenced from both results")
	}
	if shared1 != a11 {
		t.Error("Resolved analogue should be the resolver's record, not a copy")
	}
}

func TestClassifyBatch_Empty(t *testing.T) {
	resolver := newMockResolver()

	results := ClassifyBatch(nil, resolver)

	if resolver.calls != 0 {
		t.Errorf("Empty batch should not hit the resolver, got %d calls", resolver.calls)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty results, got %d", len(results))
	}
}

// Classifying the same product twice against the same snapshot must give the
// same answer: nothing in the engine may accumulate state on the records.
func TestClassify_Idempotent(t *testing.T) {
	focal := ratedProduct(1, fptr(5), nil, iptr(50), iptr(10), iptr(10), iptr(90))
	focal.AnalogueIDs = []int64{2, 3}

	a2 := ratedProduct(2, fptr(1), fptr(9), iptr(90), iptr(5), iptr(5), iptr(95))
	a3 := ratedProduct(3, fptr(8), fptr(7), iptr(70), iptr(20), iptr(20), iptr(85))
	resolver := newMockResolver(a2, a3)

	first := Classify(focal, resolver)
	second := Classify(focal, resolver)

	if !reflect.DeepEqual(first, second) {
		t.Error("Repeated classification should yield identical results")
	}
}

func TestSummarize(t *testing.T) {
	focal := ratedProduct(1, fptr(50), fptr(9), nil, nil, nil, nil)
	focal.AnalogueIDs = []int64{2, 3, 4, 5}

	cheap := ratedProduct(2, fptr(1), fptr(7), nil, nil, nil, iptr(80))
	cheap.MedsisID = i64ptr(102)
	effective := ratedProduct(3, fptr(30), fptr(8), nil, nil, nil, iptr(95))
	effective.MedsisID = i64ptr(103)
	// Cheaper than both, but unusable without a medsis id
	noMedsis := ratedProduct(4, fptr(0.1), fptr(9), nil, nil, nil, iptr(99))
	// And unusable without a price
	noPrice := ratedProduct(5, nil, fptr(9), nil, nil, nil, iptr(99))
	noPrice.MedsisID = i64ptr(105)

	resolver := newMockResolver(cheap, effective, noMedsis, noPrice)

	got := Summarize(focal, resolver)

	if got.Cheapest == nil || got.Cheapest.ID != 2 {
		t.Errorf("Expected product 2 as cheapest pick, got %+v", got.Cheapest)
	}
	if got.Effective == nil || got.Effective.ID != 3 {
		t.Errorf("Expected product 3 as effective pick, got %+v", got.Effective)
	}
}

func TestSummarize_NoCandidates(t *testing.T) {
	focal := ratedProduct(1, fptr(50), fptr(9), nil, nil, nil, nil)
	focal.AnalogueIDs = []int64{2}

	noMedsis := ratedProduct(2, fptr(1), fptr(7), nil, nil, nil, nil)
	resolver := newMockResolver(noMedsis)

	got := Summarize(focal, resolver)

	if got.Cheapest != nil {
		t.Errorf("Expected nil cheapest pick, got %+v", got.Cheapest)
	}
	if got.Effective != nil {
		t.Errorf("Expected nil effective pick, got %+v", got.Effective)
	}
}
