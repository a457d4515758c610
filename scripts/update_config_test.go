package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestParseUpdates(t *testing.T) {
	updates, err := parseUpdates([]string{"ip_memory", "10.0.0.1", "swap_delay", "50"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if updates["ip_memory"] != "10.0.0.1" {
		t.Errorf("Expected ip as string, got %v", updates["ip_memory"])
	}
	if updates["swap_delay"] != float64(50) {
		t.Errorf("Expected swap_delay as number, got %v", updates["swap_delay"])
	}

	if _, err := parseUpdates([]string{"ip_memory"}); err == nil {
		t.Error("Expected error for an odd number of arguments")
	}
}

func TestUpdateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memoria.json")
	os.WriteFile(path, []byte(`{"ip_memory": "127.0.0.1", "port_memory": 8002}`), 0644)

	modified, err := updateConfigFile(path, map[string]any{"ip_memory": "10.0.0.1", "ip_kernel": "10.0.0.2"})
	if err != nil || !modified {
		t.Fatalf("Expected file to be modified, got %v (%v)", modified, err)
	}

	var data map[string]any
	content, _ := os.ReadFile(path)
	json.Unmarshal(content, &data)
	if data["ip_memory"] != "10.0.0.1" {
		t.Errorf("Expected ip_memory to be updated, got %v", data["ip_memory"])
	}
	if _, ok := data["ip_kernel"]; ok {
		t.Error("Expected unknown keys not to be added")
	}

	modified, _ = updateConfigFile(path, map[string]any{"otra": 1})
	if modified {
		t.Error("Expected no modification when no key matches")
	}
}
