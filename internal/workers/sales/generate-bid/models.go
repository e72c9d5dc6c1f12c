// internal/workers/sales/generate-bid/models.go
package generatebid

import "rfp-workers/internal/models"

type Input struct {
	RFPID            string                `json:"rfpId"`
	Summary          *models.RFPSummary    `json:"rfpSummary,omitempty"`
	SelectedProducts []models.Selection    `json:"selected_products"`
	Pricing          models.PricingSummary `json:"pricing_summary"`
	WinProbability   float64               `json:"win_probability"`
	TotalProducts    int                   `json:"totalProducts,omitempty"`
}

type Output struct {
	RFPID       string `json:"rfpId"`
	BidDocument string `json:"bid_document"`
	LineItems   int    `json:"lineItems"`
}
