package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vikunja-mcp.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func clearVikunjaEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VIKUNJA_URL", "")
	t.Setenv("VIKUNJA_TOKEN", "")
}

func TestLoadInstances_FromFlags(t *testing.T) {
	clearVikunjaEnv(t)

	if _, err := loadInstances(filepath.Join(t.TempDir(), "missing.yaml"), "", ""); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}

	instances, err := loadInstances("", "https://vikunja.example.com", "tk_test")
	if err != nil {
		t.Fatalf("loadInstances failed: %v", err)
	}

	inst, ok := instances["default"]
	if !ok {
		t.Fatal("expected default instance")
	}
	if inst.URL != "https://vikunja.example.com" {
		t.Errorf("URL = %q, want %q", inst.URL, "https://vikunja.example.com")
	}
	if inst.Token != "tk_test" {
		t.Errorf("Token = %q, want %q", inst.Token, "tk_test")
	}
}

func TestLoadInstances_FromEnv(t *testing.T) {
	t.Setenv("VIKUNJA_URL", "https://env.example.com")
	t.Setenv("VIKUNJA_TOKEN", "tk_env")

	instances, err := loadInstances("", "", "")
	if err != nil {
		t.Fatalf("loadInstances failed: %v", err)
	}

	if instances["default"].URL != "https://env.example.com" {
		t.Errorf("URL = %q, want env value", instances["default"].URL)
	}
}

func TestLoadInstances_FlagOverridesEnv(t *testing.T) {
	t.Setenv("VIKUNJA_URL", "https://env.example.com")
	t.Setenv("VIKUNJA_TOKEN", "tk_env")

	instances, err := loadInstances("", "https://flag.example.com", "tk_flag")
	if err != nil {
		t.Fatalf("loadInstances failed: %v", err)
	}

	if instances["default"].URL != "https://flag.example.com" {
		t.Errorf("URL = %q, want flag value", instances["default"].URL)
	}
}

func TestLoadInstances_FromConfigFile(t *testing.T) {
	clearVikunjaEnv(t)

	path := writeConfigFile(t, `instances:
  default:
    url: https://vikunja.example.com
    token: tk_default
  work:
    url: https://tasks.work.example.com
    token: tk_work
`)

	instances, err := loadInstances(path, "", "")
	if err != nil {
		t.Fatalf("loadInstances failed: %v", err)
	}

	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	if instances["work"].URL != "https://tasks.work.example.com" {
		t.Errorf("work URL = %q", instances["work"].URL)
	}
}

func TestLoadInstances_FlagsOverrideConfigFileDefault(t *testing.T) {
	clearVikunjaEnv(t)

	path := writeConfigFile(t, `instances:
  default:
    url: https://file.example.com
    token: tk_file
`)

	instances, err := loadInstances(path, "https://flag.example.com", "tk_flag")
	if err != nil {
		t.Fatalf("loadInstances failed: %v", err)
	}

	if instances["default"].URL != "https://flag.example.com" {
		t.Errorf("default URL = %q, want flag value", instances["default"].URL)
	}
}

func TestLoadInstances_MissingDefault(t *testing.T) {
	clearVikunjaEnv(t)

	path := writeConfigFile(t, `instances:
  work:
    url: https://tasks.work.example.com
    token: tk_work
`)

	_, err := loadInstances(path, "", "")
	if err == nil {
		t.Fatal("expected error for missing default instance")
	}
}

func TestLoadInstances_IncompleteInstance(t *testing.T) {
	clearVikunjaEnv(t)

	path := writeConfigFile(t, `instances:
  default:
    url: https://vikunja.example.com
`)

	_, err := loadInstances(path, "", "")
	if err == nil {
		t.Fatal("expected error for instance missing token")
	}
}

func TestLoadInstances_NoConfiguration(t *testing.T) {
	clearVikunjaEnv(t)

	// Run from an empty directory so no vikunja-mcp.yaml is picked up
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	_, err = loadInstances("", "", "")
	if err == nil {
		t.Fatal("expected error when nothing is configured")
	}
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"vikunja_list_tasks", "Task Tools"},
		{"vikunja_create_task", "Task Tools"},
		{"filter_build", "Filter Tools"},
		{"filter_save", "Filter Tools"},
		{"something_else", "Other"},
	}

	for _, tt := range tests {
		if got := getCategoryFromToolName(tt.name); got != tt.expected {
			t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}
