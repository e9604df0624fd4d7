package catalog

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/command-template.json
var schemaJSON []byte

// schemaValidator checks raw template documents against the embedded JSON
// schema before they are decoded into typed structs.
type schemaValidator struct {
	schema *gojsonschema.Schema
}

func newSchemaValidator() (*schemaValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("load template schema: %w", err)
	}
	return &schemaValidator{schema: schema}, nil
}

// validate returns the schema violations of doc, which must be the generic
// decoding of one template.
func (v *schemaValidator) validate(doc any) ([]FieldError, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]FieldError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, FieldError{Field: re.Field(), Message: re.Description()})
	}
	return errs, nil
}
