package intake

import (
	"fmt"
	"strings"

	apperrors "loan-intake/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// submissionSchema constrains the public intake payload before any identifier
// is consumed or data persisted. Loan variants are discriminated by loanType.
var submissionSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"personalInfo", "businessInfo", "loanInfo"},
	"properties": map[string]interface{}{
		"personalInfo": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"firstName", "lastName", "email", "phone"},
			"properties": map[string]interface{}{
				"firstName": map[string]interface{}{"type": "string", "minLength": 1},
				"lastName":  map[string]interface{}{"type": "string", "minLength": 1},
				"email":     map[string]interface{}{"type": "string", "pattern": `^[^@\s]+@[^@\s]+\.[^@\s]+$`},
				"phone":     map[string]interface{}{"type": "string", "minLength": 7},
			},
		},
		"businessInfo": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"businessName"},
			"properties": map[string]interface{}{
				"businessName": map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
		"loanInfo": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"loanType", "amountRequested"},
			"properties": map[string]interface{}{
				"loanType":        map[string]interface{}{"type": "string", "enum": []interface{}{"Business", "Equipment"}},
				"amountRequested": map[string]interface{}{"type": "number", "minimum": 0.01},
			},
		},
		"signature": map[string]interface{}{
			"type":    "string",
			"pattern": `^data:image/`,
		},
	},
}

// ValidateSubmission checks a raw submission payload against the schema.
// Returns a non-retryable validation error listing every violated field.
func ValidateSubmission(payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(submissionSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apperrors.NewValidationFailedError(fmt.Sprintf("schema evaluation: %v", err))
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return apperrors.NewValidationFailedError(strings.Join(details, "; "))
	}

	return nil
}
