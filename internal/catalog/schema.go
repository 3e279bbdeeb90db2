package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas
var schemaFS embed.FS

const collectionSchemaPath = "schemas/collection.schema.json"

// ValidateCollection checks a raw course-collection document against the
// embedded JSON Schema. It returns the first validation error, wrapped with
// enough context to locate the offending record.
func ValidateCollection(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(collectionSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}

	var schemaDoc any
	if err := json.Unmarshal(raw, &schemaDoc); err != nil {
		return nil, fmt.Errorf("parse embedded schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(collectionSchemaPath, schemaDoc); err != nil {
		return nil, fmt.Errorf("register schema: %w", err)
	}
	schema, err := c.Compile(collectionSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
