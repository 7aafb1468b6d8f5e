package template

import (
	"fmt"
	"log"
	"strings"
)

// =============================================================================
// DETECTOR CONFIGURATION
// =============================================================================

// DetectorConfig controls matching behavior
type DetectorConfig struct {
	EnableFuzzyMatching bool    `yaml:"enable_fuzzy_matching"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MaxWorksheets       int     `yaml:"max_worksheets"`
	AnalyzeHeaders      bool    `yaml:"analyze_headers"`
}

// DefaultDetectorConfig returns the standard detection settings
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		EnableFuzzyMatching: true,
		ConfidenceThreshold: 0.7,
		MaxWorksheets:       20,
		AnalyzeHeaders:      true,
	}
}

// Workbook is the minimal view of a parsed workbook the detector needs
type Workbook interface {
	WorksheetNames() []string
	HeaderRow(worksheet string) []string
}

// =============================================================================
// DETECTOR
// =============================================================================

// Detector matches workbooks against a registered pattern library
type Detector struct {
	config   DetectorConfig
	patterns []TemplatePattern
}

// NewDetector creates a detector over the default pattern library
func NewDetector(config DetectorConfig) *Detector {
	return &Detector{config: config, patterns: DefaultPatterns()}
}

// NewDetectorWithPatterns creates a detector over a custom library.
// Pattern order is significant: exact score ties keep the earlier pattern.
func NewDetectorWithPatterns(config DetectorConfig, patterns []TemplatePattern) *Detector {
	return &Detector{config: config, patterns: patterns}
}

// DetectTemplate scores every registered pattern against the workbook and
// returns the best match at or above the configured threshold. When no
// pattern clears the threshold the result is a synthetic Custom template
// whose matched worksheets are all worksheets in the workbook and whose
// header mappings are empty; callers must treat that as "unmapped".
func (d *Detector) DetectTemplate(wb Workbook) DetectionResult {
	names := wb.WorksheetNames()
	if d.config.MaxWorksheets > 0 && len(names) > d.config.MaxWorksheets {
		log.Printf("[template-detector] workbook has %d worksheets, scoring first %d", len(names), d.config.MaxWorksheets)
		names = names[:d.config.MaxWorksheets]
	}

	var best *DetectionResult
	for i := range d.patterns {
		candidate := d.scorePattern(&d.patterns[i], names, wb)
		// Strictly greater keeps the first pattern on an exact tie, so
		// registration order decides ties.
		if best == nil || candidate.Confidence > best.Confidence {
			best = &candidate
		}
	}

	if best != nil && best.Confidence >= d.config.ConfidenceThreshold {
		return *best
	}

	custom := DetectionResult{
		TemplateType:        TemplateCustom,
		MatchedWorksheets:   append([]string(nil), names...),
		MatchedHeaders:      map[string][]string{},
		ConfidenceBreakdown: map[string]float64{},
		Warnings:            []string{"no registered template cleared the confidence threshold; falling back to custom"},
	}
	if best != nil {
		custom.Confidence = best.Confidence
		custom.ConfidenceBreakdown["best_rejected_"+string(best.TemplateType)] = best.Confidence
	}
	return custom
}

func (d *Detector) scorePattern(pattern *TemplatePattern, names []string, wb Workbook) DetectionResult {
	result := DetectionResult{
		TemplateType:        pattern.TemplateType,
		MatchedHeaders:      map[string][]string{},
		ConfidenceBreakdown: map[string]float64{},
	}

	// Worksheet-name score: required ratio weighted 0.8, optional 0.2.
	requiredMatched := 0
	for _, req := range pattern.RequiredWorksheets {
		if matched, ok := d.matchName(req, names); ok {
			requiredMatched++
			result.MatchedWorksheets = append(result.MatchedWorksheets, matched)
		}
	}
	optionalMatched := 0
	for _, opt := range pattern.OptionalWorksheets {
		if matched, ok := d.matchName(opt, names); ok {
			optionalMatched++
			result.MatchedWorksheets = append(result.MatchedWorksheets, matched)
		}
	}

	requiredRatio := 1.0
	if len(pattern.RequiredWorksheets) > 0 {
		requiredRatio = float64(requiredMatched) / float64(len(pattern.RequiredWorksheets))
	}
	optionalRatio := 0.0
	if len(pattern.OptionalWorksheets) > 0 {
		optionalRatio = float64(optionalMatched) / float64(len(pattern.OptionalWorksheets))
	}
	worksheetScore := requiredRatio*0.8 + optionalRatio*0.2

	headerScore := d.scoreHeaders(pattern, result.MatchedWorksheets, wb, &result)

	result.ConfidenceBreakdown["worksheet_score"] = worksheetScore
	result.ConfidenceBreakdown["header_score"] = headerScore
	result.ConfidenceBreakdown["pattern_weight"] = pattern.ConfidenceWeight
	result.Confidence = (worksheetScore*0.7 + headerScore*0.3) * pattern.ConfidenceWeight

	if requiredMatched < len(pattern.RequiredWorksheets) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%s: %d of %d required worksheets present",
			pattern.TemplateType, requiredMatched, len(pattern.RequiredWorksheets)))
	}
	return result
}

// scoreHeaders averages, over matched worksheets that declare required
// headers, the fraction of required headers found. Header analysis
// disabled or a pattern with no header requirements scores 1.0; a pattern
// with requirements but no matched worksheet carrying them scores 0.0.
func (d *Detector) scoreHeaders(pattern *TemplatePattern, matched []string, wb Workbook, result *DetectionResult) float64 {
	if !d.config.AnalyzeHeaders || len(pattern.RequiredHeaders) == 0 {
		return 1.0
	}

	total := 0.0
	counted := 0
	for _, sheet := range matched {
		required := requiredHeadersFor(pattern, sheet)
		if len(required) == 0 {
			continue
		}
		headers := wb.HeaderRow(sheet)
		found := 0
		for _, want := range required {
			if matchedHeader, ok := d.matchName(want, headers); ok {
				found++
				result.MatchedHeaders[sheet] = append(result.MatchedHeaders[sheet], matchedHeader)
			}
		}
		total += float64(found) / float64(len(required))
		counted++
	}
	if counted == 0 {
		return 0.0
	}
	return total / float64(counted)
}

// requiredHeadersFor resolves the header requirement for a matched sheet
// name, tolerating the same loose matching used for worksheet names.
func requiredHeadersFor(pattern *TemplatePattern, sheet string) []string {
	if headers, ok := pattern.RequiredHeaders[sheet]; ok {
		return headers
	}
	for key, headers := range pattern.RequiredHeaders {
		if strings.EqualFold(key, sheet) {
			return headers
		}
	}
	return nil
}

// =============================================================================
// NAME MATCHING CASCADE
// =============================================================================

// matchName finds target among candidates: exact case-insensitive first,
// then substring containment in either direction, then word-overlap fuzzy
// matching requiring at least half the tokens shared.
func (d *Detector) matchName(target string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if strings.EqualFold(target, c) {
			return c, true
		}
	}
	lowerTarget := strings.ToLower(target)
	for _, c := range candidates {
		lowerC := strings.ToLower(c)
		if strings.Contains(lowerC, lowerTarget) || strings.Contains(lowerTarget, lowerC) {
			return c, true
		}
	}
	if !d.config.EnableFuzzyMatching {
		return "", false
	}
	targetWords := tokenize(target)
	for _, c := range candidates {
		if wordOverlap(targetWords, tokenize(c)) >= 0.5 {
			return c, true
		}
	}
	return "", false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '.'
	})
}

func wordOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	shared := 0
	for _, w := range b {
		if set[w] {
			shared++
		}
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(shared) / float64(longer)
}

// =============================================================================
// RELATIONSHIP WORKSHEETS
// =============================================================================

var relationshipNameKeywords = []string{"relationship", "dependency", "dependencies", "connection"}

// RelationshipWorksheets returns the worksheets whose names indicate they
// hold explicit asset-relationship rows
func RelationshipWorksheets(names []string) []string {
	var out []string
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, kw := range relationshipNameKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
