// internal/workers/pricing/price-bid/models.go
package pricebid

import "rfp-workers/internal/models"

type Input struct {
	RFPID            string                             `json:"rfpId"`
	Products         []models.Requirement               `json:"products"`
	Recommendations  map[string][]models.Recommendation `json:"product_recommendations"`
	TestRequirements []string                           `json:"test_requirements,omitempty"`
}

type Output struct {
	RFPID            string                `json:"rfpId"`
	SelectedProducts []models.Selection    `json:"selected_products"`
	Pricing          models.PricingSummary `json:"pricing_summary"`
}
