package application

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const payloadSchemaURL = "https://agexparts.com/schemas/freight-quote-payload.json"

// payloadSchema checks container shapes only. Scalars are deliberately
// loose because storefront payloads send numbers as strings and vice versa.
const payloadSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "$defs": {
    "scalar": {"type": ["string", "number", "null"]},
    "flag": {"type": ["boolean", "string", "number", "null"]},
    "party": {"type": ["object", "null"]},
    "accessorials": {
      "anyOf": [
        {"type": "array", "items": {"type": "string"}},
        {"type": "object", "properties": {"codes": {"type": "array", "items": {"type": "string"}}}},
        {"type": "null"}
      ]
    },
    "lineItem": {
      "type": "object",
      "properties": {
        "weight": {"$ref": "#/$defs/scalar"},
        "pieces": {"$ref": "#/$defs/scalar"},
        "quantity": {"$ref": "#/$defs/scalar"},
        "isHazardous": {"$ref": "#/$defs/flag"}
      }
    },
    "handlingUnit": {
      "type": "object",
      "properties": {
        "count": {"$ref": "#/$defs/scalar"},
        "weight": {"$ref": "#/$defs/scalar"},
        "tareWeight": {"$ref": "#/$defs/scalar"},
        "lineItems": {"type": ["array", "null"], "items": {"$ref": "#/$defs/lineItem"}}
      }
    }
  },
  "properties": {
    "quoteRequest": {
      "type": ["object", "null"],
      "properties": {
        "shipDate": {"type": ["string", "null"]},
        "shipTime": {"type": ["string", "null"]},
        "serviceLevels": {"type": ["array", "string", "null"], "items": {"type": "string"}},
        "origin": {"$ref": "#/$defs/party"},
        "destination": {"$ref": "#/$defs/party"},
        "commodity": {
          "type": ["object", "null"],
          "properties": {
            "handlingUnits": {"type": ["array", "null"], "items": {"$ref": "#/$defs/handlingUnit"}}
          }
        },
        "handlingUnits": {"type": ["array", "null"], "items": {"$ref": "#/$defs/handlingUnit"}},
        "accessorials": {"$ref": "#/$defs/accessorials"}
      }
    },
    "checkout": {
      "type": ["object", "null"],
      "properties": {
        "destination": {"$ref": "#/$defs/party"},
        "items": {"type": ["array", "null"], "items": {"$ref": "#/$defs/lineItem"}}
      }
    },
    "items": {"type": ["array", "null"], "items": {"$ref": "#/$defs/lineItem"}},
    "origin": {"$ref": "#/$defs/party"},
    "destination": {"$ref": "#/$defs/party"},
    "payment": {"$ref": "#/$defs/party"},
    "requestor": {"$ref": "#/$defs/party"},
    "weight": {"$ref": "#/$defs/scalar"},
    "length": {"$ref": "#/$defs/scalar"},
    "width": {"$ref": "#/$defs/scalar"},
    "height": {"$ref": "#/$defs/scalar"},
    "shipTime": {"type": ["string", "null"]},
    "accessorials": {"$ref": "#/$defs/accessorials"}
  }
}`

func compilePayloadSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payloadSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse payload schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(payloadSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add payload schema: %w", err)
	}

	schema, err := compiler.Compile(payloadSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile payload schema: %w", err)
	}
	return schema, nil
}
