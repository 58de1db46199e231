// Package validation provides data validation functionality for the products API.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beaverkiria/uptech-api/interfaces"
	"github.com/beaverkiria/uptech-api/productsfeed/entities"
)

// Pre-compiled patterns, compiled once at package initialization.
var (
	// Input validation: alphanumeric + cyrillic + safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9а-яА-ЯёЁ\s\-\.\+'%]+$`)

	// Dangerous patterns as plain substrings; strings.Contains is much
	// faster than regex for these.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "eval(", "expression(", "@import",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateProduct checks if a product entity is valid
func (v *DataValidatorImpl) ValidateProduct(p *entities.Product) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}

	if p.ID <= 0 {
		return fmt.Errorf("invalid product id: %d", p.ID)
	}

	if p.SberProductID <= 0 {
		return fmt.Errorf("invalid sber product id for product %d: %d", p.ID, p.SberProductID)
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("empty name for product %d", p.ID)
	}

	if len(p.Name) > 400 {
		return fmt.Errorf("name too long for product %d: %d characters", p.ID, len(p.Name))
	}

	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("negative price for product %d: %v", p.ID, *p.Price)
	}

	if p.Score != nil && (*p.Score < 0 || *p.Score > 10) {
		return fmt.Errorf("score out of [0,10] for product %d: %v", p.ID, *p.Score)
	}

	ratings := map[string]*int{
		"effectiveness":     p.Effectiveness,
		"safety":            p.Safety,
		"convenience":       p.Convenience,
		"contraindications": p.Contraindications,
		"side_effects":      p.SideEffects,
		"tolerance":         p.Tolerance,
	}
	for name, rating := range ratings {
		if rating != nil && (*rating < 0 || *rating > 100) {
			return fmt.Errorf("%s out of [0,100] for product %d: %d", name, p.ID, *rating)
		}
	}

	return nil
}

// ValidateInput validates user input strings for search terms
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if input == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > 100 {
		return fmt.Errorf("input too long: %d characters (max 100)", len(input))
	}

	lowered := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowered, pattern) {
			return fmt.Errorf("input contains invalid characters")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters")
	}

	return nil
}

// ValidateProductID validates a product id path parameter
func (v *DataValidatorImpl) ValidateProductID(input string) (int64, error) {
	if input == "" {
		return 0, fmt.Errorf("product id cannot be empty")
	}

	id, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("product id must be a number: %s", input)
	}

	if id <= 0 {
		return 0, fmt.Errorf("product id must be positive: %d", id)
	}

	return id, nil
}

// ReportDataQuality generates a data quality report for a product snapshot
func (v *DataValidatorImpl) ReportDataQuality(products []entities.Product) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{}

	known := make(map[int64]bool, len(products))
	sberCount := make(map[int64]int, len(products))
	for i := range products {
		known[products[i].ID] = true
		sberCount[products[i].SberProductID]++
	}

	for sberID, count := range sberCount {
		if count > 1 {
			report.DuplicateSberIDs = append(report.DuplicateSberIDs, sberID)
		}
	}

	danglingSeen := make(map[int64]bool)
	for i := range products {
		p := &products[i]

		if p.Price == nil {
			report.ProductsWithoutPrice++
		}
		if p.Score == nil {
			report.ProductsWithoutScore++
		}
		if p.MedsisID == nil {
			report.ProductsWithoutMedsisID++
		}

		for _, id := range p.AnalogueIDs {
			if id == p.ID {
				report.SelfReferencingProducts = append(report.SelfReferencingProducts, p.ID)
				continue
			}
			if !known[id] && !danglingSeen[id] {
				danglingSeen[id] = true
				report.DanglingAnalogueIDs = append(report.DanglingAnalogueIDs, id)
			}
		}
	}

	return report
}
