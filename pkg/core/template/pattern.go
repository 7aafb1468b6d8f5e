// Package template - Workbook template/schema detection
// Matches worksheet names and header rows against a library of known
// spreadsheet conventions to decide which schema a workbook follows.
package template

import (
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"
)

// =============================================================================
// TEMPLATE TYPES
// =============================================================================

// TemplateType identifies a known spreadsheet convention
type TemplateType string

const (
	TemplateFedRampIntegrated TemplateType = "fedramp_integrated"
	TemplateNetworkInventory  TemplateType = "network_inventory"
	TemplateSoftwareInventory TemplateType = "software_inventory"
	TemplateCustom            TemplateType = "custom"
)

// TemplatePattern describes one known convention. Immutable once
// registered with a detector.
type TemplatePattern struct {
	TemplateType       TemplateType        `json:"template_type"`
	Version            string              `json:"version"`
	RequiredWorksheets []string            `json:"required_worksheets"`
	OptionalWorksheets []string            `json:"optional_worksheets"`
	RequiredHeaders    map[string][]string `json:"required_headers"`
	ConfidenceWeight   float64             `json:"confidence_weight"`
}

// DetectionResult is produced once per detection call and not mutated
// afterward
type DetectionResult struct {
	TemplateType        TemplateType        `json:"template_type"`
	Confidence          float64             `json:"confidence"`
	MatchedWorksheets   []string            `json:"matched_worksheets"`
	MatchedHeaders      map[string][]string `json:"matched_headers"`
	ConfidenceBreakdown map[string]float64  `json:"confidence_breakdown"`
	Warnings            []string            `json:"warnings,omitempty"`
}

// =============================================================================
// DEFAULT PATTERN LIBRARY
// =============================================================================

// DefaultPatterns returns the built-in convention library. Registration
// order matters for exact score ties: the first registered pattern with
// the top score wins.
func DefaultPatterns() []TemplatePattern {
	return []TemplatePattern{
		{
			TemplateType:       TemplateFedRampIntegrated,
			Version:            "1.0",
			RequiredWorksheets: []string{"Hardware Inventory", "Software Inventory"},
			OptionalWorksheets: []string{"Relationships", "Ports and Protocols"},
			RequiredHeaders: map[string][]string{
				"Hardware Inventory": {"Asset ID", "Asset Name", "Asset Type"},
				"Software Inventory": {"Asset ID", "Software Name", "Version"},
			},
			ConfidenceWeight: 1.0,
		},
		{
			TemplateType:       TemplateNetworkInventory,
			Version:            "1.0",
			RequiredWorksheets: []string{"Network Devices"},
			OptionalWorksheets: []string{"Network Topology"},
			RequiredHeaders: map[string][]string{
				"Network Devices": {"Device Name", "IP Address"},
			},
			ConfidenceWeight: 0.9,
		},
		{
			TemplateType:       TemplateSoftwareInventory,
			Version:            "1.0",
			RequiredWorksheets: []string{"Software"},
			OptionalWorksheets: []string{"Licenses"},
			RequiredHeaders: map[string][]string{
				"Software": {"Software Name", "Version"},
			},
			ConfidenceWeight: 0.8,
		},
	}
}

// LoadPatterns reads a pattern library from an HJSON file. The file format
// mirrors the TemplatePattern struct; HJSON keeps the library comfortable
// to hand-edit (comments, trailing commas).
func LoadPatterns(path string) ([]TemplatePattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern library: %w", err)
	}
	var patterns []TemplatePattern
	if err := hjson.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("parse pattern library %s: %w", path, err)
	}
	for i, p := range patterns {
		if p.TemplateType == "" {
			return nil, fmt.Errorf("pattern %d in %s has no template_type", i, path)
		}
		if p.ConfidenceWeight <= 0 || p.ConfidenceWeight > 1 {
			return nil, fmt.Errorf("pattern %q has confidence_weight %v outside (0,1]", p.TemplateType, p.ConfidenceWeight)
		}
	}
	return patterns, nil
}
