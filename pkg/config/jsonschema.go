// SPDX-License-Identifier: Apache-2.0
package config

import (
	"encoding/json"
	"strings"
)

// JSONSchema represents a JSON Schema Draft 2020-12 document
type JSONSchema struct {
	Schema               string                 `json:"$schema"`
	Title                string                 `json:"title"`
	Description          string                 `json:"description"`
	Type                 string                 `json:"type"`
	Properties           map[string]interface{} `json:"properties"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

// JSONSchemaProperty represents a property in the JSON Schema
type JSONSchemaProperty struct {
	Type                 string                 `json:"type,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Default              interface{}            `json:"default,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
	Properties           map[string]interface{} `json:"properties,omitempty"`
	AdditionalProperties *bool                  `json:"additionalProperties,omitempty"`
}

// GenerateJSONSchema generates a JSON Schema for the user config file from the ConfigRegistry
func GenerateJSONSchema() ([]byte, error) {
	schema := JSONSchema{
		Schema:               "https://json-schema.org/draft/2020-12/schema",
		Title:                "crypto-install Configuration",
		Description:          "User configuration for crypto-install (" + "~/.config/" + AppName + "/" + ConfigFileName + DefaultConfigExt + ")",
		Type:                 "object",
		Properties:           make(map[string]interface{}),
		AdditionalProperties: false,
	}

	for _, def := range ConfigRegistry {
		addProperty(schema.Properties, def)
	}

	return json.MarshalIndent(schema, "", "  ")
}

// addProperty inserts def into props, creating intermediate objects for dotted keys
func addProperty(props map[string]interface{}, def ConfigKeyDefinition) {
	parts := strings.Split(def.Key, ".")

	current := props
	for _, part := range parts[:len(parts)-1] {
		if _, exists := current[part]; !exists {
			closed := false
			current[part] = &JSONSchemaProperty{
				Type:                 "object",
				Properties:           make(map[string]interface{}),
				AdditionalProperties: &closed,
			}
		}
		current = current[part].(*JSONSchemaProperty).Properties
	}

	current[parts[len(parts)-1]] = buildProperty(def)
}

// buildProperty creates a JSONSchemaProperty from a ConfigKeyDefinition
func buildProperty(def ConfigKeyDefinition) *JSONSchemaProperty {
	prop := &JSONSchemaProperty{
		Description: def.Description,
		Default:     def.Default,
	}

	switch def.Type {
	case "bool":
		prop.Type = "boolean"
	case "int":
		prop.Type = "integer"
	case "string":
		prop.Type = "string"
		prop.Pattern = def.Pattern
	case "enum":
		prop.Type = "string"
		prop.Enum = def.EnumValues
	}

	return prop
}
