package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDataConfig_RequiresDatasets(t *testing.T) {
	cfg := DataConfig{Dir: "./data"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty dataset list should fail validation")
	}
}

func TestDataConfig_DuplicateDatasetID(t *testing.T) {
	cfg := DataConfig{
		Dir: "./data",
		Datasets: []DatasetDef{
			{ID: "main"},
			{ID: "main"},
		},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("duplicate dataset id should fail validation")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDataConfig_DatasetConfigs_DefaultPaths(t *testing.T) {
	cfg := DataConfig{
		Dir: "/srv/raido",
		Datasets: []DatasetDef{
			{ID: "main"},
			{ID: "lab", Label: "Lab", BundlesCSV: "/custom/lab.csv"},
		},
	}
	configs := cfg.DatasetConfigs()

	if configs[0].Label != "main" {
		t.Errorf("label defaults to id, got %q", configs[0].Label)
	}
	want := filepath.Join("/srv/raido", "main_bundles.csv")
	if configs[0].Paths.Bundles != want {
		t.Errorf("bundles path = %q, want %q", configs[0].Paths.Bundles, want)
	}
	if configs[1].Paths.Bundles != "/custom/lab.csv" {
		t.Errorf("explicit path not honored: %q", configs[1].Paths.Bundles)
	}
	if configs[1].Paths.Memos != filepath.Join("/srv/raido", "lab_memos.csv") {
		t.Errorf("memos path = %q", configs[1].Paths.Memos)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
