package overrides

import (
	"bytes"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaDocument = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["formats"],
  "additionalProperties": false,
  "properties": {
    "formats": {
      "type": "object",
      "minProperties": 1,
      "propertyNames": {"minLength": 1},
      "additionalProperties": {
        "type": "object",
        "propertyNames": {"pattern": "^(render)?[A-Z][A-Za-z]*$"},
        "additionalProperties": {"$ref": "#/$defs/fragment"}
      }
    }
  },
  "$defs": {
    "fragment": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enter": {"type": "string"},
        "exit": {"type": "string"},
        "directive": {"enum": ["continue", "skip", "stop"]}
      }
    }
  }
}`

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("overrides.json", bytes.NewReader([]byte(schemaDocument))); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = compiler.Compile("overrides.json")
	})
	return compiledSchema, compileErr
}
