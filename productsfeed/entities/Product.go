package entities

// Product is a catalog record as imported from the sber product feed,
// enriched with medsis ratings. Optional fields are pointers: nil means the
// feed carried no value, which is not the same thing as an explicit zero.
type Product struct {
	ID                int64    `json:"id"`
	SberProductID     int64    `json:"sber_product_id"`
	Name              string   `json:"name"`
	Country           *string  `json:"country"`
	Dosage            *string  `json:"dosage"`
	DrugForm          *string  `json:"drug_form"`
	FormName          *string  `json:"form_name"`
	IsRecipe          bool     `json:"is_recipe"`
	Manufacturer      *string  `json:"manufacturer"`
	Packing           *string  `json:"packing"`
	Price             *float64 `json:"price"`
	DetailPageURL     *string  `json:"detail_page_url"`
	AnalogueIDs       []int64  `json:"analogue_ids"`
	MedsisID          *int64   `json:"medsis_id"`
	Effectiveness     *int     `json:"effectiveness"`
	Safety            *int     `json:"safety"`
	Convenience       *int     `json:"convenience"`
	Contraindications *int     `json:"contraindications"`
	SideEffects       *int     `json:"side_effects"`
	Tolerance         *int     `json:"tolerance"`
	Score             *float64 `json:"score"`
}

// Zero-defaulting accessors. Threshold logic in the ranking package treats
// absent and zero alike, so absence is normalized exactly here and nowhere
// else.

// PriceValue returns the price, or 0 when the feed carried none.
func (p *Product) PriceValue() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// ScoreValue returns the composite score, or 0 when unrated.
func (p *Product) ScoreValue() float64 {
	if p.Score == nil {
		return 0
	}
	return *p.Score
}

// EffectivenessValue returns the effectiveness sub-rating, or 0 when absent.
func (p *Product) EffectivenessValue() int {
	if p.Effectiveness == nil {
		return 0
	}
	return *p.Effectiveness
}

// SafetyValue returns the safety sub-rating, or 0 when absent.
func (p *Product) SafetyValue() int {
	if p.Safety == nil {
		return 0
	}
	return *p.Safety
}

// SideEffectsValue returns the side effects sub-rating, or 0 when absent.
func (p *Product) SideEffectsValue() int {
	if p.SideEffects == nil {
		return 0
	}
	return *p.SideEffects
}

// ContraindicationsValue returns the contraindications sub-rating, or 0 when absent.
func (p *Product) ContraindicationsValue() int {
	if p.Contraindications == nil {
		return 0
	}
	return *p.Contraindications
}
