package models

// ComparisonDetail records the outcome of comparing one requirement
// attribute against one candidate. CandidateValue is nil when the candidate
// did not specify the attribute at all.
type ComparisonDetail struct {
	RequirementValue interface{} `json:"rfp_value"`
	CandidateValue   interface{} `json:"oem_value"`
	Matched          bool        `json:"match"`
}

// Recommendation is one scored (requirement, candidate) pair. The top three
// per requirement are retained, rank 1..3, ties broken by catalog order.
type Recommendation struct {
	OEMProductID    int64                       `json:"oem_product_id,omitempty"`
	OEMName         string                      `json:"oem_name"`
	ProductName     string                      `json:"product_name"`
	SKU             string                      `json:"sku"`
	MatchPercentage float64                     `json:"spec_match_percentage"`
	Comparison      map[string]ComparisonDetail `json:"comparison"`
	ComparisonOrder []string                    `json:"comparison_order,omitempty"` // requirement attribute insertion order
	UnitPrice       float64                     `json:"unit_price"`
}

// Selection is the rank-1 pick for one requirement, priced. Requirements
// with no candidates produce no Selection; that is policy, not an error.
type Selection struct {
	RequirementID   int64   `json:"rfp_product_id,omitempty"`
	RequirementName string  `json:"product_name"`
	OEMName         string  `json:"selected_oem"`
	OEMProductName  string  `json:"selected_product_name"`
	SKU             string  `json:"sku"`
	MatchPercentage float64 `json:"spec_match_percentage"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	TotalPrice      float64 `json:"total_price"`
}
