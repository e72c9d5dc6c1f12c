// internal/workers/technical/estimate-win/models.go
package estimatewin

import "rfp-workers/internal/models"

type Input struct {
	RFPID            string               `json:"rfpId"`
	Products         []models.Requirement `json:"products,omitempty"`
	TotalProducts    int                  `json:"totalProducts,omitempty"`
	SelectedProducts []models.Selection   `json:"selected_products"`
}

type Output struct {
	RFPID          string     `json:"rfpId"`
	WinProbability float64    `json:"win_probability"`
	Factors        WinFactors `json:"win_factors"`
}

// WinFactors breaks the probability into its three components.
type WinFactors struct {
	Coverage   float64 `json:"coverage"`
	Quality    float64 `json:"quality"`
	Compliance float64 `json:"compliance"`
}
