package report

import (
	"fmt"
	"log"
	"strings"
	"time"

	"compliance_ingest/pkg/core/config"
	"compliance_ingest/pkg/core/inventory"
	"compliance_ingest/pkg/core/quality"
	"compliance_ingest/pkg/core/template"
	"compliance_ingest/pkg/core/validation"
	"compliance_ingest/pkg/core/workbook"
)

// =============================================================================
// PIPELINE ASSEMBLY
// =============================================================================

// Assemble runs the downstream stages over a parsed document and returns
// the full report: asset extraction, relationship mapping, document
// validation, and POA&M quality assessment, each as a deadline-bounded
// section.
func Assemble(doc *workbook.ParsedDocument, cfg config.ProcessingConfig) *Report {
	builder := NewBuilder().
		WithDeadline(time.Duration(cfg.ReportDeadlineSecs) * time.Second)

	builder.AddSection("detection", func(r *Report) error {
		r.Detection = &template.DetectionResult{
			TemplateType: template.TemplateType(doc.DocumentType),
			Confidence:   metadataFloat(doc.Metadata, "detection_confidence"),
		}
		return nil
	})

	builder.AddSection("validation", func(r *Report) error {
		result := validateWorksheets(doc, cfg)
		r.Validation = &result
		return nil
	})

	builder.AddSection("assets", func(r *Report) error {
		assets, relationships, err := extractAssets(doc, cfg)
		if err != nil {
			return err
		}
		r.Assets = assets
		r.Relationships = relationships
		return nil
	})

	builder.AddSection("quality", func(r *Report) error {
		items := extractPOAMItems(doc)
		if len(items) == 0 && !hasPOAMWorksheet(doc) {
			return nil
		}
		checker := quality.NewChecker(qualityConfig(cfg))
		r.Quality = checker.Assess(items)
		return nil
	})

	return builder.Generate(doc.SourcePath, doc.DocumentType)
}

func metadataFloat(metadata map[string]any, key string) float64 {
	if v, ok := metadata[key].(float64); ok {
		return v
	}
	return 0
}

// =============================================================================
// VALIDATION STAGE
// =============================================================================

// validateWorksheets pools every worksheet's columns and validates the
// configured required fields as strings.
func validateWorksheets(doc *workbook.ParsedDocument, cfg config.ProcessingConfig) validation.DocumentValidationResult {
	columns := make(map[string][]string)
	for _, content := range doc.Content {
		for _, row := range content.Rows {
			for _, mapping := range content.ColumnMappings {
				if value, ok := row[mapping.SourceColumn]; ok {
					columns[mapping.TargetField] = append(columns[mapping.TargetField], value)
				}
			}
		}
	}

	schema := make([]validation.SchemaField, 0, len(cfg.RequiredFields))
	for _, field := range cfg.RequiredFields {
		schema = append(schema, validation.SchemaField{
			FieldID:      field,
			SourceColumn: field,
			ExpectedType: "string",
		})
	}

	validator := validation.NewDocumentValidator(cfg.QualityThreshold)
	return validator.ValidateDocument(columns, schema)
}

// =============================================================================
// ASSET STAGE
// =============================================================================

func extractAssets(doc *workbook.ParsedDocument, cfg config.ProcessingConfig) ([]inventory.Asset, []inventory.AssetRelationship, error) {
	processorConfig := inventory.DefaultProcessorConfig()
	processorConfig.GenerateAssetIDs = cfg.GenerateAssetIDs
	processorConfig.DefaultEnvironment = inventory.ParseEnvironment(cfg.DefaultEnvironment, inventory.EnvProduction)
	processorConfig.DefaultCriticality = inventory.ParseCriticality(cfg.DefaultCriticality, inventory.CriticalityMedium)
	processor := inventory.NewProcessor(processorConfig)

	names := make([]string, 0, len(doc.Content))
	for name := range doc.Content {
		names = append(names, name)
	}
	relationshipSheets := make(map[string]bool)
	for _, name := range template.RelationshipWorksheets(names) {
		relationshipSheets[name] = true
	}

	var assets []inventory.Asset
	var explicitRows []map[string]string
	for name, content := range doc.Content {
		if relationshipSheets[name] {
			explicitRows = append(explicitRows, content.Rows...)
			continue
		}
		if isPOAMWorksheet(name) {
			continue
		}
		for i, row := range content.Rows {
			asset, findings, err := processor.ProcessRow(row)
			if err != nil {
				if cfg.Strictness == config.StrictnessStrict {
					return nil, nil, fmt.Errorf("worksheet %q row %d: %w", name, i, err)
				}
				log.Printf("[pipeline] worksheet %q row %d skipped: %v", name, i, err)
				continue
			}
			for _, finding := range findings {
				log.Printf("[pipeline] worksheet %q row %d: %s", name, i, finding)
			}
			assets = append(assets, asset)
		}
	}

	relationships := inventory.NewMapper().MapRelationships(assets, explicitRows)
	return assets, relationships, nil
}

// =============================================================================
// POA&M STAGE
// =============================================================================

func isPOAMWorksheet(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "poa") || strings.Contains(lower, "plan of action")
}

func hasPOAMWorksheet(doc *workbook.ParsedDocument) bool {
	for name := range doc.Content {
		if isPOAMWorksheet(name) {
			return true
		}
	}
	return false
}

func extractPOAMItems(doc *workbook.ParsedDocument) []quality.POAMItem {
	var items []quality.POAMItem
	for name, content := range doc.Content {
		if !isPOAMWorksheet(name) {
			continue
		}
		for _, row := range content.Rows {
			items = append(items, rowToPOAMItem(row))
		}
	}
	return items
}

func rowToPOAMItem(row map[string]string) quality.POAMItem {
	return quality.POAMItem{
		UUID:                    pick(row, "uuid", "UUID", "POA&M Item ID", "ID"),
		Title:                   pick(row, "title", "Title", "Weakness Name"),
		Description:             pick(row, "description", "Description", "Weakness Description"),
		Status:                  pick(row, "status", "Status"),
		Severity:                pick(row, "severity", "Severity", "Risk Rating"),
		ScheduledCompletionDate: pick(row, "scheduled_completion_date", "Scheduled Completion Date"),
		ActualCompletionDate:    pick(row, "actual_completion_date", "Actual Completion Date"),
		ResponsibleEntity:       pick(row, "responsible_entity", "Responsible Entity", "Point of Contact"),
		ResourcesRequired:       pick(row, "resources_required", "Resources Required"),
		RiskAssessment:          pick(row, "risk_assessment", "Risk Assessment"),
	}
}

func pick(row map[string]string, keys ...string) string {
	for _, key := range keys {
		if value, ok := row[key]; ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// qualityConfig maps the processing weights onto the quality engine config
func qualityConfig(cfg config.ProcessingConfig) quality.QualityConfig {
	qc := quality.DefaultQualityConfig()
	qc.Weights = quality.DimensionWeights{
		Completeness: cfg.Quality.Completeness,
		Accuracy:     cfg.Quality.Accuracy,
		Consistency:  cfg.Quality.Consistency,
		Compliance:   cfg.Quality.Compliance,
	}
	return qc
}
