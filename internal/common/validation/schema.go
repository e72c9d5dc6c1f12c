// Package validation checks LLM extraction output against the RFP summary
// schema before anything downstream trusts it.
package validation

import (
	"fmt"
	"regexp"

	"github.com/xeipuuv/gojsonschema"
)

// summarySchema is the contract the extraction worker holds the LLM to.
// Specifications are deliberately open: any attribute map is accepted, the
// matcher decides what the values mean.
const summarySchema = `{
  "type": "object",
  "required": ["rfp_info", "products"],
  "properties": {
    "rfp_info": {
      "type": "object",
      "required": ["rfp_name", "client_name"],
      "properties": {
        "rfp_id": {"type": "string"},
        "rfp_name": {"type": "string", "minLength": 1},
        "client_name": {"type": "string", "minLength": 1},
        "due_date": {"type": "string"}
      }
    },
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["product_name", "specifications"],
        "properties": {
          "product_name": {"type": "string", "minLength": 1},
          "category": {"type": "string"},
          "quantity": {"type": "integer", "minimum": 0},
          "specifications": {"type": "object"}
        }
      }
    }
  }
}`

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

var compiledSummarySchema = gojsonschema.NewStringLoader(summarySchema)

// ValidateSummary validates a raw extraction document against the RFP summary
// schema. A schema error here is a model-output problem, not a transport one.
func ValidateSummary(doc []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(compiledSummarySchema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, resErr := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   resErr.Field(),
			Message: resErr.Description(),
		})
	}
	return out, nil
}

// ValidateDocument validates arbitrary JSON against a caller-supplied schema.
func ValidateDocument(schemaJSON string, doc []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, resErr := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   resErr.Field(),
			Message: resErr.Description(),
		})
	}
	return out, nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
