package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/matzehuels/adforge/pkg/errors"
)

// Schemas check request structure only. Semantic rules (compression range,
// known channels, production titles) stay with the export and pipeline
// packages so their error codes reach the client unchanged.
const definitions = `"definitions": {
	"layout": {
		"type": "object",
		"required": ["id", "channel"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string"},
			"channel": {"type": "string", "minLength": 1},
			"width": {"type": "integer"},
			"height": {"type": "integer"},
			"images": {"type": ["array", "null"]},
			"texts": {"type": ["array", "null"]}
		}
	},
	"config": {
		"type": "object",
		"required": ["channel", "quality"],
		"properties": {
			"channel": {"type": "string"},
			"quality": {"type": "string"},
			"includeBleed": {"type": "boolean"},
			"includeCropMarks": {"type": "boolean"},
			"colorProfile": {"type": "string"},
			"compression": {"type": "integer"},
			"format": {"type": "string"},
			"metadata": {"$ref": "#/definitions/metadata"}
		},
		"additionalProperties": false
	},
	"metadata": {
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"author": {"type": "string"},
			"description": {"type": "string"},
			"keywords": {"type": "array", "items": {"type": "string"}},
			"copyright": {"type": "string"}
		},
		"additionalProperties": false
	},
	"project": {
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"quality": {"type": "string"},
			"format": {"type": "string"},
			"compression": {"type": "integer"},
			"metadata": {"$ref": "#/definitions/metadata"},
			"colorProfile": {"type": "string"},
			"noArchive": {"type": "boolean"}
		},
		"additionalProperties": false
	}
}`

const layoutsSchema = `{
	"type": "object",
	"required": ["territory", "channels"],
	"properties": {
		"territory": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"id": {"type": "string"},
				"name": {"type": "string", "minLength": 1},
				"positioning": {"type": "string"},
				"tone": {"type": "string"},
				"headlines": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["headline"],
						"properties": {
							"headline": {"type": "string"},
							"followUp": {"type": "string"}
						}
					}
				}
			}
		},
		"assets": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "role"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"role": {"type": "string"},
					"quality": {"type": "integer"},
					"url": {"type": "string"}
				}
			}
		},
		"guidelines": {"type": "object"},
		"channels": {"type": "array", "minItems": 1, "items": {"type": "string"}},
		"styles": {"type": "array", "items": {"type": "string"}},
		"refresh": {"type": "boolean"},
		"export": {"$ref": "#/definitions/project"}
	},
	"additionalProperties": false,
	` + definitions + `
}`

const exportSchema = `{
	"type": "object",
	"required": ["layout"],
	"properties": {
		"layout": {"$ref": "#/definitions/layout"},
		"config": {"$ref": "#/definitions/config"},
		"preset": {"type": "string", "minLength": 1},
		"channel": {"type": "string"}
	},
	"oneOf": [
		{"required": ["config"]},
		{"required": ["preset", "channel"]}
	],
	"additionalProperties": false,
	` + definitions + `
}`

const batchSchema = `{
	"type": "object",
	"required": ["layout", "configs"],
	"properties": {
		"layout": {"$ref": "#/definitions/layout"},
		"configs": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/config"}}
	},
	"additionalProperties": false,
	` + definitions + `
}`

const projectSchema = `{
	"type": "object",
	"required": ["layouts"],
	"properties": {
		"layouts": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/layout"}},
		"options": {"$ref": "#/definitions/project"}
	},
	"additionalProperties": false,
	` + definitions + `
}`

type schemas struct {
	layouts, export, batch, project *gojsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	var s schemas
	for _, c := range []struct {
		dst  **gojsonschema.Schema
		name string
		src  string
	}{
		{&s.layouts, "layouts", layoutsSchema},
		{&s.export, "export", exportSchema},
		{&s.batch, "batch", batchSchema},
		{&s.project, "project", projectSchema},
	} {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(c.src))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", c.name, err)
		}
		*c.dst = compiled
	}
	return &s, nil
}

// validate checks body against schema and returns an INVALID_INPUT error
// listing every violation.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed JSON body")
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "request validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
