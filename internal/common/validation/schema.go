package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// PlanResultSchema is the structural contract for a plan produced by the model
// and for a plan carried to the results view.
const PlanResultSchema = `{
  "type": "object",
  "required": ["planTitle", "summary", "recommendations"],
  "properties": {
    "planTitle": {"type": "string"},
    "summary": {"type": "string"},
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["placeName", "category", "reason", "address", "latitude", "longitude"],
        "properties": {
          "placeName": {"type": "string"},
          "category": {"type": "string"},
          "reason": {"type": "string"},
          "address": {"type": "string"},
          "latitude": {"type": "number", "minimum": -90, "maximum": 90},
          "longitude": {"type": "number", "minimum": -180, "maximum": 180}
        }
      }
    }
  }
}`

var planResultLoader = gojsonschema.NewStringLoader(PlanResultSchema)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateJSON validates a raw JSON document against a JSON schema.
// A document that is not JSON at all is reported as an error, not as an invalid result.
func ValidateJSON(schema gojsonschema.JSONLoader, document []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}, nil
}

// ValidatePlanResult checks a JSON document against PlanResultSchema.
func ValidatePlanResult(document []byte) error {
	result, err := ValidateJSON(planResultLoader, document)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("data validation failed: %v", result.GetErrorMessages())
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}
