// Package schemas validates LLM output documents against embedded JSON
// schemas before they are trusted by downstream stages.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed distillation.schema.json
var distillationSchema string

// ValidationError reports every schema violation found in a document.
type ValidationError struct {
	Schema   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document does not match %s schema: %s", e.Schema, strings.Join(e.Problems, "; "))
}

// ValidateDistillation checks a raw JSON document against the
// distillation schema. A nil return means the document is safe to
// unmarshal into the distillation result type.
func ValidateDistillation(doc []byte) error {
	return validate("distillation", distillationSchema, doc)
}

func validate(name, schema string, doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validating against %s schema: %w", name, err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{Schema: name}
	for _, problem := range result.Errors() {
		verr.Problems = append(verr.Problems, problem.String())
	}
	return verr
}
