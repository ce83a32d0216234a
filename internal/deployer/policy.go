// Where: internal/deployer/policy.go
// What: Default access-policy document loading.
// Why: Surface the fallback policy when the record carries none.
package deployer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// policyFileNames are probed in order under the project directory.
var policyFileNames = []string{"policy.json", "policy.yml", "policy.yaml"}

// PolicyDocument is an access-policy document in its generic JSON form.
// Policies are loaded and reported, never edited: policy management stays
// with the external framework.
type PolicyDocument map[string]any

// StatementCount returns the number of statements in the document, or zero
// when the document has no statement list.
func (p PolicyDocument) StatementCount() int {
	statements, ok := p["Statement"].([]any)
	if !ok {
		return 0
	}
	return len(statements)
}

// LoadDefaultPolicy reads the default access-policy document from the
// project directory. YAML documents are converted to JSON first. A missing
// policy file yields a nil document without error.
func LoadDefaultPolicy(projectDir string) (PolicyDocument, error) {
	for _, name := range policyFileNames {
		path := filepath.Join(projectDir, name)
		raw, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read policy %s: %w", path, err)
		}

		jsonData, err := yaml.YAMLToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("convert policy %s: %w", path, err)
		}
		var document PolicyDocument
		if err := json.Unmarshal(jsonData, &document); err != nil {
			return nil, fmt.Errorf("parse policy %s: %w", path, err)
		}
		return document, nil
	}
	return nil, nil
}
