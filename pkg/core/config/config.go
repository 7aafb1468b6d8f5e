// Package config - Processing configuration
// Pure value objects loaded from YAML; nothing here carries hidden global
// state, and every knob has a working default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// =============================================================================
// CONFIGURATION MODEL
// =============================================================================

// Strictness selects how validation failures are treated downstream
type Strictness string

const (
	StrictnessLenient Strictness = "lenient"
	StrictnessNormal  Strictness = "normal"
	StrictnessStrict  Strictness = "strict"
)

// DateConfig carries locale preferences for the date chain
type DateConfig struct {
	PreferMDY     bool `yaml:"prefer_mdy"`
	CenturyCutoff int  `yaml:"century_cutoff"`
}

// DetectionConfig carries template-detection settings
type DetectionConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	EnableFuzzyMatching bool    `yaml:"enable_fuzzy_matching"`
	AnalyzeHeaders      bool    `yaml:"analyze_headers"`
	MaxWorksheets       int     `yaml:"max_worksheets"`
	PatternFile         string  `yaml:"pattern_file,omitempty"`
}

// QualityWeights mirrors the quality engine's dimension weights
type QualityWeights struct {
	Completeness float64 `yaml:"completeness"`
	Accuracy     float64 `yaml:"accuracy"`
	Consistency  float64 `yaml:"consistency"`
	Compliance   float64 `yaml:"compliance"`
}

// ProcessingConfig is the full ingestion configuration
type ProcessingConfig struct {
	Strictness          Strictness      `yaml:"strictness"`
	RequiredFields      []string        `yaml:"required_fields"`
	QualityThreshold    float64         `yaml:"quality_threshold"`
	MinMatchConfidence  float64         `yaml:"min_match_confidence"`
	OverrideCacheSize   int             `yaml:"override_cache_size"`
	FuzzyCacheSize      int             `yaml:"fuzzy_cache_size"`
	GenerateAssetIDs    bool            `yaml:"generate_asset_ids"`
	DefaultEnvironment  string          `yaml:"default_environment"`
	DefaultCriticality  string          `yaml:"default_criticality"`
	Dates               DateConfig      `yaml:"dates"`
	Detection           DetectionConfig `yaml:"detection"`
	Quality             QualityWeights  `yaml:"quality_weights"`
	OverrideRulesFile   string          `yaml:"override_rules_file,omitempty"`
	ReportDeadlineSecs  int             `yaml:"report_deadline_seconds"`
}

// Default returns the working configuration used when no file is supplied
func Default() ProcessingConfig {
	return ProcessingConfig{
		Strictness:         StrictnessNormal,
		RequiredFields:     []string{"asset_id", "asset_name"},
		QualityThreshold:   0.7,
		MinMatchConfidence: 0.7,
		OverrideCacheSize:  1000,
		FuzzyCacheSize:     1000,
		GenerateAssetIDs:   true,
		DefaultEnvironment: "production",
		DefaultCriticality: "medium",
		Dates: DateConfig{
			PreferMDY:     true,
			CenturyCutoff: 50,
		},
		Detection: DetectionConfig{
			ConfidenceThreshold: 0.7,
			EnableFuzzyMatching: true,
			AnalyzeHeaders:      true,
			MaxWorksheets:       20,
		},
		Quality: QualityWeights{
			Completeness: 0.3,
			Accuracy:     0.3,
			Consistency:  0.2,
			Compliance:   0.2,
		},
		ReportDeadlineSecs: 30,
	}
}

// =============================================================================
// LOADING AND VALIDATION
// =============================================================================

// Load reads a YAML file over the defaults; missing keys keep their
// default values.
func Load(path string) (ProcessingConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that would misbehave silently
func (c ProcessingConfig) Validate() error {
	switch c.Strictness {
	case StrictnessLenient, StrictnessNormal, StrictnessStrict:
	default:
		return fmt.Errorf("unknown strictness %q", c.Strictness)
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 1 {
		return fmt.Errorf("quality_threshold %v outside [0,1]", c.QualityThreshold)
	}
	if c.MinMatchConfidence < 0 || c.MinMatchConfidence > 1 {
		return fmt.Errorf("min_match_confidence %v outside [0,1]", c.MinMatchConfidence)
	}
	if c.Detection.ConfidenceThreshold < 0 || c.Detection.ConfidenceThreshold > 1 {
		return fmt.Errorf("detection confidence_threshold %v outside [0,1]", c.Detection.ConfidenceThreshold)
	}
	if c.OverrideCacheSize <= 0 || c.FuzzyCacheSize <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}
	if c.Dates.CenturyCutoff < 0 || c.Dates.CenturyCutoff > 99 {
		return fmt.Errorf("century_cutoff %d outside [0,99]", c.Dates.CenturyCutoff)
	}
	weightSum := c.Quality.Completeness + c.Quality.Accuracy +
		c.Quality.Consistency + c.Quality.Compliance
	if weightSum <= 0 {
		return fmt.Errorf("quality weights sum to %v, must be positive", weightSum)
	}
	if c.ReportDeadlineSecs <= 0 {
		return fmt.Errorf("report_deadline_seconds must be positive")
	}
	return nil
}
