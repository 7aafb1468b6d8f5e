package workbook

import (
	"fmt"
	"log"

	"compliance_ingest/pkg/core/confidence"
	"compliance_ingest/pkg/core/template"
)

// =============================================================================
// PARSE CONFIGURATION
// =============================================================================

// ParseConfig bundles the knobs for the parse entry point. Zero values
// fall back to the package defaults.
type ParseConfig struct {
	Detector template.DetectorConfig
	Patterns []template.TemplatePattern
	Scorer   *confidence.Scorer
}

// DefaultParseConfig uses the built-in pattern library and scorer
func DefaultParseConfig() ParseConfig {
	return ParseConfig{
		Detector: template.DefaultDetectorConfig(),
		Patterns: template.DefaultPatterns(),
		Scorer:   confidence.NewDefaultScorer(),
	}
}

// ColumnMapping records where one observed header landed
type ColumnMapping struct {
	SourceColumn string  `json:"source_column"`
	TargetField  string  `json:"target_field"`
	Confidence   float64 `json:"confidence"`
}

// WorksheetContent is the parsed view of one worksheet
type WorksheetContent struct {
	Headers        []string            `json:"headers"`
	Rows           []map[string]string `json:"rows"`
	ColumnMappings []ColumnMapping     `json:"column_mappings"`
	AvgConfidence  float64             `json:"avg_confidence"`
}

// ParsedDocument is the parse entry point's result
type ParsedDocument struct {
	DocumentType     string                      `json:"document_type"`
	SourcePath       string                      `json:"source_path"`
	Metadata         map[string]any              `json:"metadata"`
	Content          map[string]WorksheetContent `json:"content"`
	ValidationErrors []string                    `json:"validation_errors"`
	QualityScore     float64                     `json:"quality_score"`
}

// =============================================================================
// PARSE
// =============================================================================

// Parse decodes a workbook, detects its template, maps every worksheet's
// headers to canonical fields with confidence scores, and aggregates a
// document quality score: the mean of per-worksheet average mapping
// confidence, or 0.0 when nothing was parseable. Worksheets that fail to
// parse are skipped and reported in the validation errors rather than
// aborting the document.
func Parse(data []byte, filename string, cfg ParseConfig) (*ParsedDocument, error) {
	if cfg.Patterns == nil {
		cfg.Patterns = template.DefaultPatterns()
	}
	if cfg.Detector.ConfidenceThreshold == 0 {
		cfg.Detector = template.DefaultDetectorConfig()
	}
	if cfg.Scorer == nil {
		cfg.Scorer = confidence.NewDefaultScorer()
	}

	wb, err := Decode(data, filename)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	detector := template.NewDetectorWithPatterns(cfg.Detector, cfg.Patterns)
	detection := detector.DetectTemplate(wb)

	doc := &ParsedDocument{
		DocumentType: string(detection.TemplateType),
		SourcePath:   filename,
		Content:      make(map[string]WorksheetContent),
		Metadata: map[string]any{
			"worksheet_count":      len(wb.WorksheetNames()),
			"detection_confidence": detection.Confidence,
			"matched_worksheets":   detection.MatchedWorksheets,
			"detection_warnings":   detection.Warnings,
		},
	}

	var sheetAverages []float64
	for _, name := range wb.WorksheetNames() {
		content, err := parseWorksheet(wb, name, detection.TemplateType, cfg.Scorer)
		if err != nil {
			log.Printf("[workbook] worksheet %q skipped: %v", name, err)
			doc.ValidationErrors = append(doc.ValidationErrors,
				fmt.Sprintf("worksheet %q: %v", name, err))
			continue
		}
		doc.Content[name] = content
		sheetAverages = append(sheetAverages, content.AvgConfidence)
	}

	if len(sheetAverages) > 0 {
		total := 0.0
		for _, avg := range sheetAverages {
			total += avg
		}
		doc.QualityScore = total / float64(len(sheetAverages))
	}
	return doc, nil
}

func parseWorksheet(wb *Memory, name string, templateType template.TemplateType, scorer *confidence.Scorer) (WorksheetContent, error) {
	headers := wb.HeaderRow(name)
	if len(headers) == 0 {
		return WorksheetContent{}, fmt.Errorf("no header row")
	}

	content := WorksheetContent{
		Headers: headers,
		Rows:    wb.DataRows(name),
	}

	mctx := confidence.MappingContext{
		DocumentType: string(templateType),
		Worksheet:    name,
	}
	total := 0.0
	for _, header := range headers {
		target := template.MapHeaderToStandardField(header)
		score := scorer.CalculateConfidence(header, target, mctx)
		content.ColumnMappings = append(content.ColumnMappings, ColumnMapping{
			SourceColumn: header,
			TargetField:  target,
			Confidence:   score.OverallScore,
		})
		total += score.OverallScore
	}
	content.AvgConfidence = total / float64(len(headers))
	return content, nil
}
