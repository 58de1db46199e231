package ranking

import (
	"github.com/beaverkiria/uptech-api/productsfeed/entities"
)

// Resolver bulk-fetches product records by id. Missing ids are simply absent
// from the result, never an error. The engine calls it at most once per
// batch.
type Resolver interface {
	ResolveProducts(ids []int64) map[int64]*entities.Product
}

// AnalogueView pairs a resolved analogue record with the three booleans
// computed pairwise against the focal product.
type AnalogueView struct {
	Product       *entities.Product
	IsCheapest    bool
	IsEffective   bool
	IsTrustworthy bool
}

// Classification is the per-product result for detail and list views.
// It is a companion struct keyed by product id, kept outside the records
// themselves: analogue records are shared across focal products within a
// batch and must never be mutated to carry per-focal context.
type Classification struct {
	IsCheapest    bool
	IsEffective   bool
	IsTrustworthy bool
	Analogues     []AnalogueView
}

// Summary is the info-endpoint result: the cheapest trustworthy analogue and
// the most effective one, either of which may be nil.
type Summary struct {
	Cheapest  *entities.Product
	Effective *entities.Product
}

// Summarize computes the cheapest/effective picks for p over its analogue
// set filtered to records with a known price and a medsis id.
func Summarize(p *entities.Product, r Resolver) Summary {
	resolved := resolve(r, p.AnalogueIDs)
	candidates := infoCandidates(orderedAnalogues(p, resolved))

	return Summary{
		Cheapest:  PickCheapest(candidates),
		Effective: PickMostEffective(candidates),
	}
}

// Classify computes the detail-view classification for a single product.
func Classify(p *entities.Product, r Resolver) Classification {
	return classifyWith(p, resolve(r, p.AnalogueIDs))
}

// ClassifyBatch classifies every product in the batch with a single bulk
// resolve covering all analogue ids the batch references. Resolved records
// are shared across focal products; results are returned in a side table
// keyed by product id.
func ClassifyBatch(products []*entities.Product, r Resolver) map[int64]Classification {
	seen := make(map[int64]bool)
	var ids []int64
	for _, p := range products {
		for _, id := range p.AnalogueIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	resolved := resolve(r, ids)

	results := make(map[int64]Classification, len(products))
	for _, p := range products {
		results[p.ID] = classifyWith(p, resolved)
	}

	return results
}

func classifyWith(p *entities.Product, resolved map[int64]*entities.Product) Classification {
	analogues := orderedAnalogues(p, resolved)
	cheaper := CheaperAnalogueIDs(p, analogues)

	views := make([]AnalogueView, 0, len(analogues))
	for _, a := range analogues {
		views = append(views, AnalogueView{
			Product:       a,
			IsCheapest:    cheaper[a.ID],
			IsEffective:   MoreEffective(a, p),
			IsTrustworthy: MoreTrustworthy(a, p),
		})
	}

	return Classification{
		IsCheapest:    isCheapestAmong(p, analogues),
		IsEffective:   IsSelfEffective(p),
		IsTrustworthy: IsTrustworthy(p),
		Analogues:     views,
	}
}

// isCheapestAmong reports whether p itself is the cheapest trustworthy pick
// among itself and its priced analogues. Without a price, or without any
// priced analogue to compare against, the flag is false.
func isCheapestAmong(p *entities.Product, analogues []*entities.Product) bool {
	if p.Price == nil {
		return false
	}

	pool := make([]*entities.Product, 0, len(analogues)+1)
	pool = append(pool, p)
	for _, a := range analogues {
		if a.Price != nil {
			pool = append(pool, a)
		}
	}
	if len(pool) == 1 {
		return false
	}

	pick := PickCheapest(pool)
	return pick != nil && pick.ID == p.ID
}

// orderedAnalogues builds the analogue set in analogue_ids order, silently
// dropping ids the resolver did not return. Duplicates and self-references
// are kept as listed.
func orderedAnalogues(p *entities.Product, resolved map[int64]*entities.Product) []*entities.Product {
	analogues := make([]*entities.Product, 0, len(p.AnalogueIDs))
	for _, id := range p.AnalogueIDs {
		if a, ok := resolved[id]; ok {
			analogues = append(analogues, a)
		}
	}
	return analogues
}

// infoCandidates filters to records usable by the info picks: price known and
// medsis id present.
func infoCandidates(analogues []*entities.Product) []*entities.Product {
	candidates := make([]*entities.Product, 0, len(analogues))
	for _, a := range analogues {
		if a.Price != nil && a.MedsisID != nil {
			candidates = append(candidates, a)
		}
	}
	return candidates
}

func resolve(r Resolver, ids []int64) map[int64]*entities.Product {
	if len(ids) == 0 {
		return nil
	}
	return r.ResolveProducts(ids)
}
