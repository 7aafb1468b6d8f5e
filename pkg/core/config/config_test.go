package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
strictness: strict
quality_threshold: 0.9
dates:
  prefer_mdy: false
  century_cutoff: 30
detection:
  confidence_threshold: 0.8
  enable_fuzzy_matching: true
  analyze_headers: true
  max_worksheets: 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Strictness != StrictnessStrict {
		t.Errorf("Strictness = %q", cfg.Strictness)
	}
	if cfg.QualityThreshold != 0.9 {
		t.Errorf("QualityThreshold = %v", cfg.QualityThreshold)
	}
	if cfg.Dates.PreferMDY || cfg.Dates.CenturyCutoff != 30 {
		t.Errorf("Dates = %+v", cfg.Dates)
	}
	// Keys absent from the file keep their defaults.
	if cfg.OverrideCacheSize != 1000 {
		t.Errorf("OverrideCacheSize = %d, want default 1000", cfg.OverrideCacheSize)
	}
	if cfg.Quality.Completeness != 0.3 {
		t.Errorf("Quality.Completeness = %v, want default 0.3", cfg.Quality.Completeness)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file must fail")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProcessingConfig)
	}{
		{"bad strictness", func(c *ProcessingConfig) { c.Strictness = "paranoid" }},
		{"threshold above one", func(c *ProcessingConfig) { c.QualityThreshold = 1.5 }},
		{"negative confidence", func(c *ProcessingConfig) { c.MinMatchConfidence = -0.1 }},
		{"zero cache", func(c *ProcessingConfig) { c.OverrideCacheSize = 0 }},
		{"century cutoff", func(c *ProcessingConfig) { c.Dates.CenturyCutoff = 120 }},
		{"zero weights", func(c *ProcessingConfig) { c.Quality = QualityWeights{} }},
		{"zero deadline", func(c *ProcessingConfig) { c.ReportDeadlineSecs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("strictness: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML must fail")
	}
}
