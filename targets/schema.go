package targets

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/dartcc.schema.json
var configSchema []byte

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		loader := gojsonschema.NewBytesLoader(configSchema)
		compiledSchema, compileErr = gojsonschema.NewSchema(loader)
	})
	return compiledSchema, compileErr
}

// ValidateDefinition validates raw dartcc.yaml bytes against the config
// schema. It returns a slice of validation error descriptions and an
// error if the document cannot be decoded or the schema fails to
// compile.
func ValidateDefinition(yamlData []byte) ([]string, error) {
	var doc any
	if err := yaml.Unmarshal(yamlData, &doc); err != nil {
		return nil, fmt.Errorf("parsing dartcc config: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting dartcc config to JSON: %w", err)
	}

	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling dartcc config schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("validating dartcc config: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
