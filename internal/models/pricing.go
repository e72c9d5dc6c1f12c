package models

// MaterialCost is one priced bid line derived from a Selection.
type MaterialCost struct {
	RequirementName string  `json:"rfp_product"`
	SKU             string  `json:"sku"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	Unit            string  `json:"unit"`
	UnitPrice       float64 `json:"unit_price_inr"`
	TotalPrice      float64 `json:"total_price_inr"`
}

// TestingCost is one priced test/acceptance requirement. PricePerTest is
// charged once per product in scope.
type TestingCost struct {
	TestRequirement string  `json:"test_requirement"`
	TestName        string  `json:"test_name"`
	PricePerTest    float64 `json:"price_per_test_inr"`
	Quantity        int     `json:"quantity"`
	TotalTestCost   float64 `json:"total_test_cost_inr"`
}

// PricingTotals is the consolidated bid arithmetic. Field names and the
// 2-decimal rounding are a contract with downstream bid-text generation.
type PricingTotals struct {
	TotalMaterialCost float64 `json:"total_material_cost_inr"`
	TotalTestingCost  float64 `json:"total_testing_cost_inr"`
	Subtotal          float64 `json:"subtotal_inr"`
	Contingency       float64 `json:"contingency_10pct_inr"`
	GrandTotal        float64 `json:"grand_total_inr"`
}

// PricingSummary is the full pricing breakdown for one bid.
type PricingSummary struct {
	MaterialCosts []MaterialCost `json:"material_costs"`
	TestingCosts  []TestingCost  `json:"testing_costs"`
	Totals        PricingTotals  `json:"summary"`
}
