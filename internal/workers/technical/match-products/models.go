// internal/workers/technical/match-products/models.go
package matchproducts

import "rfp-workers/internal/models"

type Input struct {
	RFPID   string             `json:"rfpId"`
	Summary *models.RFPSummary `json:"rfpSummary,omitempty"`
}

type Output struct {
	RFPID           string                             `json:"rfpId"`
	Recommendations map[string][]models.Recommendation `json:"product_recommendations"`
	MatchedCount    int                                `json:"matchedCount"`
	TotalProducts   int                                `json:"totalProducts"`
}
