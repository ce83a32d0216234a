// Where: internal/manifest/validator.go
// What: Schema validation for descriptor files.
// Why: Reject malformed descriptors before any provider call is issued.
package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

//go:embed schema/descriptor.schema.json
var descriptorSchema []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func validate(content []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}

	return sch.Validate(document)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(
			"descriptor.schema.json",
			strings.NewReader(string(descriptorSchema)),
		); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("descriptor.schema.json")
	})
	return compiledSchema, schemaErr
}
