// Where: internal/manifest/loader.go
// What: Descriptor file loading and parsing.
// Why: Turn funcwire.yml into binding specs while preserving declared order.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the descriptor file looked up in the project directory
// when no explicit path is given.
const DefaultFileName = "funcwire.yml"

// Load reads, renders, validates, and parses the descriptor at path.
// The file is run through text/template with the sprig function map before
// parsing, so entries may reference environment variables and defaults.
func Load(path string) (Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read descriptor: %w", err)
	}
	rendered, err := render(path, raw)
	if err != nil {
		return Descriptor{}, err
	}
	if err := validate(rendered); err != nil {
		return Descriptor{}, fmt.Errorf("invalid descriptor %s: %w", path, err)
	}
	return Parse(rendered)
}

// Parse decodes rendered descriptor YAML. Binding order within each category
// follows the document order, which is why this walks yaml.Node mappings
// instead of decoding into Go maps.
func Parse(content []byte) (Descriptor, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return Descriptor{}, fmt.Errorf("parse descriptor: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Descriptor{}, fmt.Errorf("parse descriptor: empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Descriptor{}, fmt.Errorf("parse descriptor: top level must be a mapping")
	}

	out := Descriptor{}
	for key, value := range mappingEntries(root) {
		var err error
		switch key.Value {
		case "function":
			err = value.Decode(&out.Function)
		case "schedules":
			out.Schedules, err = parseSchedules(value)
		case "topics":
			out.Topics, err = parseTopics(value)
		case "buckets":
			out.Buckets, err = parseBuckets(value)
		}
		if err != nil {
			return Descriptor{}, fmt.Errorf("parse %s: %w", key.Value, err)
		}
	}
	if strings.TrimSpace(out.Function.Name) == "" {
		return Descriptor{}, fmt.Errorf("parse descriptor: function.name is required")
	}
	return out, nil
}

func render(name string, raw []byte) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("render descriptor: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return nil, fmt.Errorf("render descriptor: %w", err)
	}
	return buf.Bytes(), nil
}

func parseSchedules(node *yaml.Node) ([]ScheduleBinding, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schedules must be a mapping")
	}
	var out []ScheduleBinding
	for key, value := range mappingEntries(node) {
		binding := ScheduleBinding{Name: key.Value}
		for field, fieldValue := range mappingEntries(value) {
			switch field.Value {
			case "schedule":
				binding.Schedule = fieldValue.Value
			case "pattern":
				pattern, err := patternJSON(fieldValue)
				if err != nil {
					return nil, fmt.Errorf("schedule %s: %w", key.Value, err)
				}
				binding.Pattern = pattern
			}
		}
		out = append(out, binding)
	}
	return out, nil
}

func parseTopics(node *yaml.Node) ([]TopicBinding, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("topics must be a mapping")
	}
	var out []TopicBinding
	for key, value := range mappingEntries(node) {
		binding := TopicBinding{Name: key.Value}
		switch value.Kind {
		case yaml.ScalarNode:
			binding.Handler = value.Value
		case yaml.MappingNode:
			for field, fieldValue := range mappingEntries(value) {
				if field.Value == "handler" {
					binding.Handler = fieldValue.Value
				}
			}
		}
		out = append(out, binding)
	}
	return out, nil
}

func parseBuckets(node *yaml.Node) ([]StorageBinding, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("buckets must be a mapping")
	}
	var out []StorageBinding
	for key, value := range mappingEntries(node) {
		binding := StorageBinding{Bucket: key.Value}
		for field, fieldValue := range mappingEntries(value) {
			switch field.Value {
			case "events":
				if err := fieldValue.Decode(&binding.Events); err != nil {
					return nil, fmt.Errorf("bucket %s: %w", key.Value, err)
				}
			case "prefix":
				binding.Prefix = fieldValue.Value
			case "suffix":
				binding.Suffix = fieldValue.Value
			}
		}
		out = append(out, binding)
	}
	return out, nil
}

// patternJSON normalizes an event pattern to its JSON encoding. Patterns may
// be written inline as YAML mappings or as pre-encoded JSON strings.
func patternJSON(node *yaml.Node) (string, error) {
	if node.Kind == yaml.ScalarNode {
		return node.Value, nil
	}
	var value any
	if err := node.Decode(&value); err != nil {
		return "", fmt.Errorf("decode pattern: %w", err)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode pattern: %w", err)
	}
	return string(encoded), nil
}

// mappingEntries iterates the key/value node pairs of a YAML mapping in
// document order.
func mappingEntries(node *yaml.Node) func(yield func(*yaml.Node, *yaml.Node) bool) {
	return func(yield func(*yaml.Node, *yaml.Node) bool) {
		if node == nil || node.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !yield(node.Content[i], node.Content[i+1]) {
				return
			}
		}
	}
}
