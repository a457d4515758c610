package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type TestConfig struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (c *TestConfig) Validate() error {
	if c == nil || c.Value < 0 {
		return errors.New("value negativo")
	}
	return nil
}

func writeConfig(t *testing.T, content any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.json")
	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create temporary file: %v", err)
	}
	return path
}

func TestSetupConfig(t *testing.T) {
	validConfig := TestConfig{Name: "test", Value: 123}
	path := writeConfig(t, validConfig)

	var config TestConfig
	err := setupConfig(path, &config)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if config != validConfig {
		t.Errorf("Expected config to be %v, got: %v", validConfig, config)
	}
}

func TestSetupConfig_ThrowError(t *testing.T) {
	err := setupConfig("nonexistent.json", &TestConfig{})
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestSetupConfig_UnknownField(t *testing.T) {
	path := writeConfig(t, map[string]any{"name": "test", "otro": 1})

	if err := setupConfig(path, &TestConfig{}); err == nil {
		t.Error("Expected error for unknown field, got nil")
	}
}

func TestLoadConfig_GlobalPointer(t *testing.T) {
	path := writeConfig(t, TestConfig{Name: "memoria", Value: 8002})

	var global *TestConfig
	if err := LoadConfig(path, &global); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if global == nil || global.Name != "memoria" || global.Value != 8002 {
		t.Errorf("Expected global config to be loaded, got: %v", global)
	}
}

func TestLoadConfig_Validates(t *testing.T) {
	path := writeConfig(t, TestConfig{Name: "x", Value: -1})

	var config TestConfig
	if err := LoadConfig(path, &config); err == nil {
		t.Error("Expected validation error, got nil")
	}
}

func TestInitConfig_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected InitConfig to panic")
		}
	}()
	InitConfig("nonexistent.json", &TestConfig{})
}
