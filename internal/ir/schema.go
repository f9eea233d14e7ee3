package ir

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tzstack/michelvm/internal/vmerrors"
)

// documentSchemaText is the jsonschema definition of a top-level IR document: a
// JSON array of Node objects (§6's "a program is an array of instructions"),
// recursively constraining each node to carry exactly one of prim or a
// literal field.
const documentSchemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "https://michelvm.invalid/ir-document.json",
  "type": "array",
  "items": { "$ref": "#/definitions/node" },
  "definitions": {
    "node": {
      "type": "object",
      "oneOf": [
        {
          "required": ["prim"],
          "properties": {
            "prim": {"type": "string", "minLength": 1},
            "args": {"type": "array", "items": {"$ref": "#/definitions/arg"}}
          },
          "additionalProperties": false
        },
        {
          "required": ["int"],
          "properties": {"int": {"type": "string"}},
          "additionalProperties": false
        },
        {
          "required": ["string"],
          "properties": {"string": {"type": "string"}},
          "additionalProperties": false
        }
      ]
    },
    "arg": {
      "oneOf": [
        {"$ref": "#/definitions/node"},
        {"type": "array", "items": {"$ref": "#/definitions/node"}}
      ]
    }
  }
}`

var compiledDocumentSchema = mustCompileDocumentSchema()

func mustCompileDocumentSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("ir-document.json", bytes.NewReader([]byte(documentSchemaText))); err != nil {
		panic("ir: invalid embedded schema: " + err.Error())
	}
	return compiler.MustCompile("ir-document.json")
}

// ValidateDocument validates raw JSON against the IR document schema before
// it's unmarshaled into []Node, so a malformed externally-supplied document
// produces one clear schema-validation error instead of a confusing
// UnmarshalJSON failure partway through the tree.
func ValidateDocument(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return vmerrors.Wrap(vmerrors.KindInvalidIR, "IR document is not valid JSON", err)
	}
	if err := compiledDocumentSchema.Validate(doc); err != nil {
		return vmerrors.Wrap(vmerrors.KindInvalidIR, "IR document failed schema validation", err)
	}
	return nil
}

// ParseDocument validates raw against the schema and unmarshals it into a
// node sequence.
func ParseDocument(raw []byte) ([]Node, error) {
	if err := ValidateDocument(raw); err != nil {
		return nil, err
	}
	var nodes []Node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, vmerrors.Wrap(vmerrors.KindInvalidIR, "malformed IR document", err)
	}
	return nodes, nil
}
