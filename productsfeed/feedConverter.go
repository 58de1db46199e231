package productsfeed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/beaverkiria/uptech-api/logging"
	"github.com/beaverkiria/uptech-api/productsfeed/entities"
)

// feedProduct is a row of products.json
type feedProduct struct {
	ID   int64  `json:"ID"`
	Name string `json:"NAME"`
}

// feedProperty is a row of property.json; Code (lowercased) names the
// product field the property values fill in.
type feedProperty struct {
	ID   int64  `json:"ID"`
	Code string `json:"CODE"`
}

// buildProducts joins the three feed files into product entities: products
// carry id and name, property values are attached by the property code of
// their PROPERTY_<id> column. Rows referencing unknown products or unknown
// properties are skipped, matching the permissive behavior of the original
// import job. The result is capped at limit products, in feed order.
func buildProducts(raw map[string][]byte, limit int) ([]entities.Product, error) {
	var feedProducts []feedProduct
	if err := json.Unmarshal(raw["products"], &feedProducts); err != nil {
		return nil, fmt.Errorf("failed to parse products feed: %w", err)
	}

	var feedProperties []feedProperty
	if err := json.Unmarshal(raw["properties"], &feedProperties); err != nil {
		return nil, fmt.Errorf("failed to parse property feed: %w", err)
	}

	var valueRows []map[string]json.RawMessage
	if err := json.Unmarshal(raw["propertyValues"], &valueRows); err != nil {
		return nil, fmt.Errorf("failed to parse property values feed: %w", err)
	}

	// Property id -> product field name, keeping only codes we know
	propertyCodes := make(map[int64]string, len(feedProperties))
	for _, prop := range feedProperties {
		code := strings.ToLower(prop.Code)
		if knownPropertyCodes[code] {
			propertyCodes[prop.ID] = code
		}
	}

	productsByID := make(map[int64]*entities.Product, len(feedProducts))
	order := make([]int64, 0, len(feedProducts))
	skippedInvalid := 0

	for _, fp := range feedProducts {
		if fp.ID <= 0 || strings.TrimSpace(fp.Name) == "" {
			skippedInvalid++
			continue
		}
		if _, exists := productsByID[fp.ID]; exists {
			logging.Warn("Duplicate product id in feed", "product_id", fp.ID)
			continue
		}
		productsByID[fp.ID] = &entities.Product{
			ID:            fp.ID,
			SberProductID: fp.ID,
			Name:          fp.Name,
		}
		order = append(order, fp.ID)
	}

	for _, row := range valueRows {
		productID, err := rawInt64(row["IBLOCK_ELEMENT_ID"])
		if err != nil {
			logging.Warn("Property values row without a valid product id", "error", err)
			continue
		}
		product, ok := productsByID[productID]
		if !ok {
			continue
		}

		for column, value := range row {
			if !strings.HasPrefix(column, "PROPERTY_") {
				continue
			}
			propertyID, err := strconv.ParseInt(strings.TrimPrefix(column, "PROPERTY_"), 10, 64)
			if err != nil {
				continue
			}
			code, ok := propertyCodes[propertyID]
			if !ok {
				continue
			}
			if err := assignProperty(product, code, value); err != nil {
				logging.Warn("Skipping malformed property value",
					"product_id", productID, "property", code, "error", err)
			}
		}
	}

	if len(order) > limit {
		logging.Warn("Feed exceeds product limit, truncating",
			"total", len(order), "limit", limit)
		order = order[:limit]
	}

	products := make([]entities.Product, 0, len(order))
	for _, id := range order {
		products = append(products, *productsByID[id])
	}

	if skippedInvalid > 0 {
		logging.Warn("Skipped invalid product rows", "count", skippedInvalid)
	}

	return products, nil
}

// knownPropertyCodes are the feed property codes with a product field.
var knownPropertyCodes = map[string]bool{
	"country":           true,
	"dosage":            true,
	"drug_form":         true,
	"form_name":         true,
	"is_recipe":         true,
	"manufacturer":      true,
	"packing":           true,
	"price":             true,
	"detail_page_url":   true,
	"analogue_ids":      true,
	"medsis_id":         true,
	"effectiveness":     true,
	"safety":            true,
	"convenience":       true,
	"contraindications": true,
	"side_effects":      true,
	"tolerance":         true,
	"score":             true,
}

// assignProperty sets one feed property value on a product. Null values
// leave the field absent.
func assignProperty(p *entities.Product, code string, raw json.RawMessage) error {
	if isNull(raw) {
		return nil
	}

	switch code {
	case "country":
		return assignString(&p.Country, raw)
	case "dosage":
		return assignString(&p.Dosage, raw)
	case "drug_form":
		return assignString(&p.DrugForm, raw)
	case "form_name":
		return assignString(&p.FormName, raw)
	case "manufacturer":
		return assignString(&p.Manufacturer, raw)
	case "packing":
		return assignString(&p.Packing, raw)
	case "detail_page_url":
		return assignString(&p.DetailPageURL, raw)
	case "is_recipe":
		b, err := rawBool(raw)
		if err != nil {
			return err
		}
		p.IsRecipe = b
	case "price":
		f, err := rawFloat(raw)
		if err != nil {
			return err
		}
		if f < 0 {
			return fmt.Errorf("negative price: %v", f)
		}
		p.Price = &f
	case "score":
		f, err := rawFloat(raw)
		if err != nil {
			return err
		}
		if f < 0 || f > 10 {
			return fmt.Errorf("score out of range: %v", f)
		}
		p.Score = &f
	case "medsis_id":
		id, err := rawInt64(raw)
		if err != nil {
			return err
		}
		p.MedsisID = &id
	case "analogue_ids":
		ids, err := rawInt64Slice(raw)
		if err != nil {
			return err
		}
		p.AnalogueIDs = ids
	case "effectiveness":
		return assignRating(&p.Effectiveness, raw)
	case "safety":
		return assignRating(&p.Safety, raw)
	case "convenience":
		return assignRating(&p.Convenience, raw)
	case "contraindications":
		return assignRating(&p.Contraindications, raw)
	case "side_effects":
		return assignRating(&p.SideEffects, raw)
	case "tolerance":
		return assignRating(&p.Tolerance, raw)
	default:
		return fmt.Errorf("unknown property code: %s", code)
	}

	return nil
}

func assignString(dst **string, raw json.RawMessage) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	*dst = &s
	return nil
}

// assignRating parses a 0-100 sub-rating
func assignRating(dst **int, raw json.RawMessage) error {
	v, err := rawInt64(raw)
	if err != nil {
		return err
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("rating out of range: %d", v)
	}
	rating := int(v)
	*dst = &rating
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null" || string(raw) == `""`
}

// The feed is inconsistent about scalar types: numbers come through both as
// JSON numbers and as quoted strings. The raw* helpers accept either.

func rawFloat(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	// Legacy exports use a comma decimal separator
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return f, nil
}

func rawInt64(raw json.RawMessage) (int64, error) {
	var i int64
	if err := json.Unmarshal(raw, &i); err == nil {
		return i, nil
	}

	f, err := rawFloat(raw)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func rawBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "y", "yes", "true", "1":
			return true, nil
		case "n", "no", "false", "0", "":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	}

	i, err := rawInt64(raw)
	if err != nil {
		return false, fmt.Errorf("not a boolean: %s", raw)
	}
	return i != 0, nil
}

// rawInt64Slice parses an analogue id list: a JSON array of numbers or
// strings, or a single comma-separated string.
func rawInt64Slice(raw json.RawMessage) ([]int64, error) {
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err == nil {
		ids := make([]int64, 0, len(rawItems))
		for _, item := range rawItems {
			if isNull(item) {
				continue
			}
			id, err := rawInt64(item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("not an id list: %s", raw)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an id list: %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
