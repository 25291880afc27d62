package hooks

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// hookInputSchemaDoc constrains only the shape this package actually reads:
// tool_input/tool_output/tool_result must be objects when present, with the
// known string/number/bool leaves typed. Everything else is left open so a
// richer host payload never fails validation.
var hookInputSchemaDoc = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"tool_input": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command":   map[string]any{"type": "string"},
				"file_path": map[string]any{"type": "string"},
				"path":      map[string]any{"type": "string"},
			},
		},
		"tool_output": toolResultSchemaDoc(),
		"tool_result": toolResultSchemaDoc(),
	},
}

func toolResultSchemaDoc() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"exit_code": map[string]any{"type": "number"},
			"code":      map[string]any{"type": "number"},
			"success":   map[string]any{"type": "boolean"},
			"stdout":    map[string]any{"type": "string"},
			"stderr":    map[string]any{"type": "string"},
			"output":    map[string]any{"type": "string"},
			"error":     map[string]any{"type": "string"},
		},
	}
}

var (
	hookSchemaOnce sync.Once
	hookSchema     *jsonschema.Schema
	hookSchemaErr  error
)

func compiledHookSchema() (*jsonschema.Schema, error) {
	hookSchemaOnce.Do(func() {
		b, err := json.Marshal(hookInputSchemaDoc)
		if err != nil {
			hookSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("hook-input.json", strings.NewReader(string(b))); err != nil {
			hookSchemaErr = err
			return
		}
		hookSchema, hookSchemaErr = c.Compile("hook-input.json")
	})
	return hookSchema, hookSchemaErr
}

// validateHookInput reports whether raw parses as JSON and matches the
// shape this package expects. A schema-invalid payload is not an error the
// caller should propagate — handlers degrade to their graceful-default
// response instead.
func validateHookInput(raw []byte) bool {
	if len(raw) == 0 {
		return true
	}
	schema, err := compiledHookSchema()
	if err != nil {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return schema.Validate(v) == nil
}
