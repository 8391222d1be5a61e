// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ConfigValue represents a configuration key-value pair with its source
type ConfigValue struct {
	Key    string
	Value  interface{}
	Source string
}

// SetConfigValue validates and stores a value in the user config file
func SetConfigValue(key, valueStr string) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	configPath := ConfigFilePath()

	// Isolated instance so defaults and ENV are not written to the file
	v := viper.New()
	v.SetConfigType(ConfigType)
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig() // Ignore error if file doesn't exist

	value, err := parseValue(def, valueStr)
	if err != nil {
		return err
	}
	if err := ValidateValue(key, value); err != nil {
		return err
	}

	v.Set(key, value)

	if err := os.MkdirAll(GlobalPaths.ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.SafeWriteConfigAs(configPath); err != nil {
		if _, ok := err.(viper.ConfigFileAlreadyExistsError); ok {
			if err := v.WriteConfigAs(configPath); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to create config: %w", err)
		}
	}

	return nil
}

// GetConfigValue retrieves a configuration value and its source
func GetConfigValue(key string) (*ConfigValue, error) {
	if GetKeyDefinition(key) == nil && !viper.IsSet(key) {
		return nil, fmt.Errorf("configuration key not found: %s", key)
	}

	return &ConfigValue{
		Key:    key,
		Value:  viper.Get(key),
		Source: getConfigSource(key),
	}, nil
}

// UnsetConfigValue removes a key from the user config file
func UnsetConfigValue(key string) error {
	configPath := ConfigFilePath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(ConfigType)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if !v.IsSet(key) {
		return fmt.Errorf("key '%s' not found in config", key)
	}

	settings := v.AllSettings()
	if err := deleteNestedKey(settings, key); err != nil {
		return err
	}

	// viper cannot delete keys, so write the remaining settings from scratch
	out := viper.New()
	out.SetConfigFile(configPath)
	out.SetConfigType(ConfigType)
	for k, val := range settings {
		out.Set(k, val)
	}

	if err := out.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ListConfigValues returns all configuration values with their sources, sorted by key
func ListConfigValues() ([]ConfigValue, error) {
	keys := flattenKeys(viper.AllSettings(), "")
	sort.Strings(keys)

	values := make([]ConfigValue, 0, len(keys))
	for _, key := range keys {
		values = append(values, ConfigValue{
			Key:    key,
			Value:  viper.Get(key),
			Source: getConfigSource(key),
		})
	}

	return values, nil
}

// parseValue converts a command-line string to the type the key expects
func parseValue(def *ConfigKeyDefinition, valueStr string) (interface{}, error) {
	switch def.Type {
	case "bool":
		switch strings.ToLower(valueStr) {
		case "true", "yes", "on", "enable", "enabled":
			return true, nil
		case "false", "no", "off", "disable", "disabled":
			return false, nil
		}
		if b, err := strconv.ParseBool(valueStr); err == nil {
			return b, nil
		}
		return nil, fmt.Errorf("key '%s' must be a boolean (got '%s')", def.Key, valueStr)
	case "int":
		i, err := strconv.Atoi(valueStr)
		if err != nil {
			return nil, fmt.Errorf("key '%s' must be an integer (got '%s')", def.Key, valueStr)
		}
		return i, nil
	default:
		return valueStr, nil
	}
}

// keyToEnvVar converts a config key to its environment variable name
func keyToEnvVar(key string) string {
	r := strings.NewReplacer("-", "_", ".", "_")
	return strings.ToUpper(EnvPrefix + "_" + r.Replace(key))
}

// getConfigSource determines where a config value comes from
func getConfigSource(key string) string {
	envKey := keyToEnvVar(key)
	if _, ok := os.LookupEnv(envKey); ok {
		return fmt.Sprintf("from ENV: %s", envKey)
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)
		v.SetConfigType(ConfigType)
		if err := v.ReadInConfig(); err == nil && v.IsSet(key) {
			return fmt.Sprintf("from %s", configFile)
		}
	}

	return "default"
}

// deleteNestedKey removes a key from a nested map using dot notation
func deleteNestedKey(m map[string]interface{}, key string) error {
	parts := strings.Split(key, ".")

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			return fmt.Errorf("key not found: %s", key)
		}
		current = next
	}

	last := parts[len(parts)-1]
	if _, exists := current[last]; !exists {
		return fmt.Errorf("key not found: %s", key)
	}
	delete(current, last)

	return nil
}

// flattenKeys recursively flattens nested map keys with dot notation
func flattenKeys(m map[string]interface{}, prefix string) []string {
	var keys []string

	for k, v := range m {
		fullKey := k
		if prefix != "" {
			fullKey = prefix + "." + k
		}

		if nested, ok := v.(map[string]interface{}); ok {
			keys = append(keys, flattenKeys(nested, fullKey)...)
		} else {
			keys = append(keys, fullKey)
		}
	}

	return keys
}
