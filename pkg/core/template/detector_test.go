package template

import (
	"math"
	"testing"
)

// fakeWorkbook satisfies the Workbook interface for detector tests
type fakeWorkbook struct {
	sheets  []string
	headers map[string][]string
}

func (f *fakeWorkbook) WorksheetNames() []string { return f.sheets }

func (f *fakeWorkbook) HeaderRow(name string) []string { return f.headers[name] }

func TestDetectFedRampIntegrated(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.AnalyzeHeaders = false
	d := NewDetector(cfg)

	wb := &fakeWorkbook{sheets: []string{"Hardware Inventory", "Software Inventory"}}
	result := d.DetectTemplate(wb)

	if result.TemplateType != TemplateFedRampIntegrated {
		t.Fatalf("TemplateType = %q, want %q", result.TemplateType, TemplateFedRampIntegrated)
	}
	// Both required matched, no optional: worksheet score 0.8, header
	// score defaults to 1.0 with analysis disabled, pattern weight 1.0.
	want := (0.8*0.7 + 1.0*0.3) * 1.0
	if math.Abs(result.Confidence-want) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", result.Confidence, want)
	}
	if result.Confidence < 0.7 {
		t.Errorf("Confidence %v below detection threshold", result.Confidence)
	}
}

func TestDetectWithHeaders(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	wb := &fakeWorkbook{
		sheets: []string{"Hardware Inventory", "Software Inventory"},
		headers: map[string][]string{
			"Hardware Inventory": {"Asset ID", "Asset Name", "Asset Type", "Owner"},
			"Software Inventory": {"Asset ID", "Software Name", "Version"},
		},
	}
	result := d.DetectTemplate(wb)

	if result.TemplateType != TemplateFedRampIntegrated {
		t.Fatalf("TemplateType = %q, want %q", result.TemplateType, TemplateFedRampIntegrated)
	}
	// All required headers present in both sheets: header score 1.0.
	want := (0.8*0.7 + 1.0*0.3) * 1.0
	if math.Abs(result.Confidence-want) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", result.Confidence, want)
	}
	if len(result.MatchedHeaders["Hardware Inventory"]) != 3 {
		t.Errorf("matched %d hardware headers, want 3", len(result.MatchedHeaders["Hardware Inventory"]))
	}
}

func TestDetectCustomFallback(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	wb := &fakeWorkbook{sheets: []string{"Random Sheet", "Totally Unrelated"}}
	result := d.DetectTemplate(wb)

	if result.TemplateType != TemplateCustom {
		t.Fatalf("TemplateType = %q, want custom fallback", result.TemplateType)
	}
	if len(result.MatchedWorksheets) != 2 {
		t.Errorf("custom fallback should list all worksheets, got %v", result.MatchedWorksheets)
	}
	if len(result.MatchedHeaders) != 0 {
		t.Errorf("custom fallback should have empty mappings, got %v", result.MatchedHeaders)
	}
	if len(result.Warnings) == 0 {
		t.Error("custom fallback should carry a warning")
	}
}

func TestDetectTieKeepsFirstPattern(t *testing.T) {
	patterns := []TemplatePattern{
		{
			TemplateType:       "first",
			RequiredWorksheets: []string{"Inventory"},
			ConfidenceWeight:   1.0,
		},
		{
			TemplateType:       "second",
			RequiredWorksheets: []string{"Inventory"},
			ConfidenceWeight:   1.0,
		},
	}
	cfg := DefaultDetectorConfig()
	cfg.AnalyzeHeaders = false
	d := NewDetectorWithPatterns(cfg, patterns)

	wb := &fakeWorkbook{sheets: []string{"Inventory"}}
	result := d.DetectTemplate(wb)
	if result.TemplateType != "first" {
		t.Errorf("exact tie resolved to %q, want first registered pattern", result.TemplateType)
	}
}

func TestMatchNameCascade(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())

	tests := []struct {
		name       string
		target     string
		candidates []string
		want       string
		found      bool
	}{
		{"exact case-insensitive", "hardware inventory", []string{"Hardware Inventory"}, "Hardware Inventory", true},
		{"containment", "Software", []string{"All Software Items"}, "All Software Items", true},
		{"word overlap", "Hardware Asset Inventory", []string{"Hardware Inventory List"}, "Hardware Inventory List", true},
		{"no match", "Network Devices", []string{"Budget", "Timeline"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.matchName(tt.target, tt.candidates)
			if ok != tt.found || got != tt.want {
				t.Errorf("matchName(%q, %v) = (%q, %v), want (%q, %v)",
					tt.target, tt.candidates, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestRelationshipWorksheets(t *testing.T) {
	sheets := []string{"Hardware Inventory", "Asset Relationships", "Dependencies", "Notes"}
	got := RelationshipWorksheets(sheets)
	if len(got) != 2 {
		t.Fatalf("RelationshipWorksheets = %v, want 2 entries", got)
	}
	if got[0] != "Asset Relationships" || got[1] != "Dependencies" {
		t.Errorf("RelationshipWorksheets = %v", got)
	}
}

func TestMapHeaderToStandardField(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Asset ID", "asset_id"},
		{"asset-id", "asset_id"},
		{"Asset Name", "asset_name"},
		{"Device Name", "asset_name"},
		{"IP Address", "ip_address"},
		{"Responsible Party", "owner"},
		{"Physical Location", "location"},
		{"Criticality Level", "criticality"},
		{"OS", "operating_system"},
		{"Some Unknown Column", "some_unknown_column"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := MapHeaderToStandardField(tt.header); got != tt.want {
				t.Errorf("MapHeaderToStandardField(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
