// Package schemas validates LLM-generated JSON documents against embedded
// JSON Schema files before they are accepted into the system.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

var (
	cache   = make(map[string]*gojsonschema.Schema)
	cacheMu sync.Mutex
)

// load compiles an embedded schema by filename, caching the result.
func load(name string) (*gojsonschema.Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if schema, ok := cache[name]; ok {
		return schema, nil
	}

	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %q: %w", name, err)
	}
	cache[name] = schema
	return schema, nil
}

// Validate checks a JSON document against the named embedded schema.
// Violations are joined into a single error message.
func Validate(schemaName, document string) error {
	schema, err := load(schemaName)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var parts []string
		for _, desc := range result.Errors() {
			parts = append(parts, desc.String())
		}
		return fmt.Errorf("document violates %s: %s", schemaName, strings.Join(parts, "; "))
	}
	return nil
}
