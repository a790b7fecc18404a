package craft

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema describes the shape of a YAML world configuration.
// Cross references between names are checked by Config.Validate.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["rows", "cols", "objects", "items", "tasks"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string"},
    "rows": {"type": "integer", "minimum": 1},
    "cols": {"type": "integer", "minimum": 1},
    "padded": {"type": "boolean"},
    "start": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "row": {"type": "integer", "minimum": 0},
        "col": {"type": "integer", "minimum": 0}
      }
    },
    "objects": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "behaviour"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "behaviour": {"enum": ["harvest", "bridgeable", "station", "terrain"]},
          "count": {"type": "integer", "minimum": 0},
          "exempt": {"type": "boolean"},
          "traversable": {"type": "boolean"},
          "yields": {"type": "string"},
          "consumes": {"type": "string"},
          "becomes": {"type": "string"},
          "surround": {"type": "string"}
        }
      }
    },
    "items": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "recipes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "consumes", "produces"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "requires": {"$ref": "#/definitions/counts"},
          "consumes": {"$ref": "#/definitions/counts"},
          "produces": {"$ref": "#/definitions/counts"}
        }
      }
    },
    "tasks": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "item", "target"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "item": {"type": "string", "minLength": 1},
          "target": {"type": "integer", "minimum": 1}
        }
      }
    }
  },
  "definitions": {
    "counts": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 1}
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// validateSchema validates a decoded JSON document against the world
// configuration schema
func validateSchema(doc interface{}) error {
	compileOnce.Do(func() {
		compiled, compileErr = jsonschema.CompileString("craft-config.json",
			configSchema)
	})
	if compileErr != nil {
		return fmt.Errorf("validateSchema: could not compile schema: %w",
			compileErr)
	}

	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("validateSchema: %w", err)
	}
	return nil
}
