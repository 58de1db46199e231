// Package ranking implements the analogue ranking engine for the products API.
// It computes cheapest/effective/trustworthy classifications for a focal
// product against its resolved analogue set. Every function here is a pure
// function of the records it receives: no persistence, no shared state.
package ranking

import (
	"sort"

	"github.com/beaverkiria/uptech-api/productsfeed/entities"
)

// The two 6.0 boundaries below are separate product decisions, not one
// concept: the pick threshold is inclusive, the self-effectiveness one is
// strict. Do not unify them.
const (
	// CheapnessTrustThreshold is the minimum score (inclusive) for an
	// analogue to qualify as a trustworthy pick in PickCheapest and
	// PickMostEffective.
	CheapnessTrustThreshold = 6.0

	// SelfEffectiveScoreThreshold is the score a product must strictly
	// exceed to be flagged effective on its own.
	SelfEffectiveScoreThreshold = 6.0

	// TrustworthyRateThreshold is the minimum trustworthy rate for the
	// absolute trustworthiness flag.
	TrustworthyRateThreshold = 80.0

	// EffectiveRatingThreshold is the minimum effectiveness sub-rating for
	// the effectiveness flags.
	EffectiveRatingThreshold = 80
)

// TrustworthyRate computes (safety + (100-side_effects) + (100-contraindications)) / 3.
// A product without a score has no rate at all: the result is exactly 0.0,
// never an average of whatever sub-ratings happen to be present.
func TrustworthyRate(p *entities.Product) float64 {
	if p.Score == nil {
		return 0.0
	}

	return (float64(p.SafetyValue()) +
		float64(100-p.SideEffectsValue()) +
		float64(100-p.ContraindicationsValue())) / 3.0
}

// IsTrustworthy reports the absolute trustworthiness classification:
// score present and >= 6.0, trustworthy rate >= 80.
func IsTrustworthy(p *entities.Product) bool {
	return p.Score != nil &&
		p.ScoreValue() >= CheapnessTrustThreshold &&
		TrustworthyRate(p) >= TrustworthyRateThreshold
}

// IsSelfEffective reports whether a product counts as effective on its own,
// independent of any analogue: score strictly above 6.0 and effectiveness
// present and >= 80.
func IsSelfEffective(p *entities.Product) bool {
	return p.ScoreValue() > SelfEffectiveScoreThreshold &&
		p.Effectiveness != nil &&
		*p.Effectiveness >= EffectiveRatingThreshold
}

// MoreEffective reports whether analogue a is more effective than the focal
// product p. An analogue without effectiveness data never qualifies, even
// when p lacks data too.
func MoreEffective(a, p *entities.Product) bool {
	if a.EffectivenessValue() == 0 {
		return false
	}
	return p.EffectivenessValue() == 0 || a.EffectivenessValue() > p.EffectivenessValue()
}

// MoreTrustworthy reports whether analogue a has a strictly higher
// trustworthy rate than the focal product p. No score/rate thresholds apply
// in the pairwise case.
func MoreTrustworthy(a, p *entities.Product) bool {
	return TrustworthyRate(a) > TrustworthyRate(p)
}

// CheaperAnalogueIDs returns the ids of analogues whose relative price gain
// over p exceeds their relative quality gain. The classification only applies
// to a focal product that has a price and no score; otherwise the result is
// empty. Analogues missing a price or score are skipped, which also guards
// both divisions.
func CheaperAnalogueIDs(p *entities.Product, analogues []*entities.Product) map[int64]bool {
	ids := make(map[int64]bool)

	if p.PriceValue() == 0 || p.ScoreValue() != 0 {
		return ids
	}

	for _, a := range analogues {
		if a.PriceValue() == 0 || a.ScoreValue() == 0 {
			continue
		}

		relativePriceGain := (p.PriceValue() - a.PriceValue()) / p.PriceValue()
		relativeQualityGain := (a.ScoreValue() - p.ScoreValue()) / a.ScoreValue()

		if relativePriceGain > relativeQualityGain {
			ids[a.ID] = true
		}
	}

	return ids
}

// PickCheapest returns the cheapest trustworthy candidate: candidates sorted
// ascending by price (stable, so equal prices keep resolution order), first
// one with score >= 6.0, falling back to the overall cheapest when none
// qualifies. Returns nil for an empty candidate list.
func PickCheapest(candidates []*entities.Product) *entities.Product {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]*entities.Product, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriceValue() < sorted[j].PriceValue()
	})

	for _, c := range sorted {
		if c.ScoreValue() >= CheapnessTrustThreshold {
			return c
		}
	}

	return sorted[0]
}

// PickMostEffective returns the most effective trustworthy candidate:
// candidates sorted descending by effectiveness (absent sorts lowest, sort is
// stable), first one with score >= 6.0 and effectiveness >= 80, falling back
// to the highest effectiveness when none qualifies. Returns nil for an empty
// candidate list.
func PickMostEffective(candidates []*entities.Product) *entities.Product {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]*entities.Product, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectivenessValue() > sorted[j].EffectivenessValue()
	})

	for _, c := range sorted {
		if c.ScoreValue() >= CheapnessTrustThreshold &&
			c.EffectivenessValue() >= EffectiveRatingThreshold {
			return c
		}
	}

	return sorted[0]
}
