// internal/workers/extraction/extract-requirements/models.go
package extractrequirements

import "rfp-workers/internal/models"

type Input struct {
	RFPID       string `json:"rfpId,omitempty"`
	RFPDocument string `json:"rfpDocument"`
}

type Output struct {
	RFPID            string             `json:"rfpId"`
	Summary          *models.RFPSummary `json:"rfpSummary"`
	TestRequirements []string           `json:"test_requirements,omitempty"`
	Provider         string             `json:"extractionProvider"`
	TotalProducts    int                `json:"totalProducts"`
}

// extractedDocument is the raw shape the LLM is asked to produce: the summary
// plus any test/acceptance requirements it spotted in the document.
type extractedDocument struct {
	models.RFPSummary
	TestRequirements []string `json:"test_requirements,omitempty"`
}
