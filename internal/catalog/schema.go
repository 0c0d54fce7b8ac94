// internal/catalog/schema.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema constrains JSON catalogs: every trait maps to an object with
// non-empty "high" and "low" arrays of video filenames.
var catalogSchema = map[string]any{
	"type": "object",
	"additionalProperties": map[string]any{
		"type":     "object",
		"required": []string{"high", "low"},
		"properties": map[string]any{
			"high": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
			"low": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
		},
		"additionalProperties": false,
	},
}

// validateJSON checks raw catalog JSON against catalogSchema and returns an
// error naming every violation.
func validateJSON(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("catalog validation failed: %s", strings.Join(errs, ", "))
}
