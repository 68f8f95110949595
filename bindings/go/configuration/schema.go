package configuration

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/config.schema.json
var schemaJSON []byte

const schemaResource = "config.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing configuration schema failed: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, doc); err != nil {
		return nil, fmt.Errorf("adding configuration schema failed: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compiling configuration schema failed: %w", err)
	}
	return schema, nil
})

// JSONSchema returns the JSON schema configuration documents are validated against.
func JSONSchema() []byte {
	return bytes.Clone(schemaJSON)
}

func validateJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing configuration failed: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("configuration does not match schema: %w", err)
	}
	return nil
}
