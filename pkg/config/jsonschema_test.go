// SPDX-License-Identifier: Apache-2.0
package config

import (
	"encoding/json"
	"testing"
)

func TestGenerateJSONSchema(t *testing.T) {
	schema, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("GenerateJSONSchema failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(schema, &result); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	if result["$schema"] != "https://json-schema.org/draft/2020-12/schema" {
		t.Errorf("$schema = %v, want Draft 2020-12", result["$schema"])
	}
	if title, _ := result["title"].(string); title == "" {
		t.Error("title field missing or empty")
	}

	properties, ok := result["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties field missing or not an object")
	}
	for _, key := range []string{"log-level", "interactive", "gui", "stop-on-error", "gnupg", "openssh"} {
		if _, exists := properties[key]; !exists {
			t.Errorf("Expected property '%s' not found in schema", key)
		}
	}
}

func TestGenerateJSONSchema_NestedProperties(t *testing.T) {
	schema, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("GenerateJSONSchema failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(schema, &result); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	properties := result["properties"].(map[string]interface{})

	tests := []struct {
		section string
		keys    []string
	}{
		{"gnupg", []string{"enabled", "home", "program", "algorithm", "existence-check"}},
		{"openssh", []string{"enabled", "home", "config", "program", "passphrase-source"}},
	}

	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			section, ok := properties[tt.section].(map[string]interface{})
			if !ok {
				t.Fatalf("%s is not an object", tt.section)
			}
			if section["type"] != "object" {
				t.Errorf("%s type = %v, want object", tt.section, section["type"])
			}
			if section["additionalProperties"] != false {
				t.Errorf("%s additionalProperties = %v, want false", tt.section, section["additionalProperties"])
			}
			nested := section["properties"].(map[string]interface{})
			for _, key := range tt.keys {
				if _, ok := nested[key]; !ok {
					t.Errorf("%s.%s missing from schema", tt.section, key)
				}
			}
		})
	}
}

func TestGenerateJSONSchema_Types(t *testing.T) {
	schema, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("GenerateJSONSchema failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(schema, &result); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}
	properties := result["properties"].(map[string]interface{})

	interactive := properties["interactive"].(map[string]interface{})
	if interactive["type"] != "boolean" {
		t.Errorf("interactive type = %v, want boolean", interactive["type"])
	}

	gnupg := properties["gnupg"].(map[string]interface{})["properties"].(map[string]interface{})
	algo := gnupg["algorithm"].(map[string]interface{})
	if algo["type"] != "string" {
		t.Errorf("gnupg.algorithm type = %v, want string", algo["type"])
	}
	enum, ok := algo["enum"].([]interface{})
	if !ok || len(enum) != 2 {
		t.Errorf("gnupg.algorithm enum = %v, want [legacy modern]", algo["enum"])
	}

	program := gnupg["program"].(map[string]interface{})
	if program["pattern"] == nil {
		t.Error("gnupg.program should carry a pattern")
	}
}
