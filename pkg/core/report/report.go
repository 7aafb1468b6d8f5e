// Package report - Ingestion report assembly and export
// Collects the outputs of template detection, document validation, the
// asset pipeline, and the quality engine into a single versioned report,
// then renders it to the supported export formats.
package report

import (
	"log"
	"time"

	"github.com/google/uuid"

	"compliance_ingest/pkg/core/inventory"
	"compliance_ingest/pkg/core/quality"
	"compliance_ingest/pkg/core/template"
	"compliance_ingest/pkg/core/validation"
)

// ReportVersion is bumped when the report shape changes
const ReportVersion = "1.0"

// DefaultDeadline bounds report assembly; sections that would start after
// it are omitted and the report is marked partial.
const DefaultDeadline = 30 * time.Second

// =============================================================================
// REPORT
// =============================================================================

// Report is the versioned aggregation of one document's ingestion results.
// Pointer sections are nil when their pipeline stage did not run or was
// dropped by the deadline.
type Report struct {
	ReportID        string                               `json:"report_id"`
	Version         string                               `json:"version"`
	GeneratedAt     time.Time                            `json:"generated_at"`
	SourcePath      string                               `json:"source_path"`
	DocumentType    string                               `json:"document_type"`
	Detection       *template.DetectionResult            `json:"detection,omitempty"`
	Validation      *validation.DocumentValidationResult `json:"validation,omitempty"`
	Assets          []inventory.Asset                    `json:"assets,omitempty"`
	Relationships   []inventory.AssetRelationship        `json:"relationships,omitempty"`
	Quality         *quality.QualityAssessment           `json:"quality,omitempty"`
	Partial         bool                                 `json:"partial"`
	OmittedSections []string                             `json:"omitted_sections,omitempty"`
}

// =============================================================================
// BUILDER
// =============================================================================

// Section computes one part of the report. Sections run in registration
// order; a section that errors is skipped, not fatal.
type Section struct {
	Name string
	Fill func(*Report) error
}

// Builder assembles a report under a soft deadline
type Builder struct {
	deadline time.Duration
	sections []Section
	now      func() time.Time
}

// NewBuilder creates a builder with the default 30 second deadline
func NewBuilder() *Builder {
	return &Builder{deadline: DefaultDeadline, now: time.Now}
}

// WithDeadline overrides the soft deadline
func (b *Builder) WithDeadline(d time.Duration) *Builder {
	b.deadline = d
	return b
}

// AddSection registers a section; order is preserved
func (b *Builder) AddSection(name string, fill func(*Report) error) *Builder {
	b.sections = append(b.sections, Section{Name: name, Fill: fill})
	return b
}

// Generate runs the registered sections. When the deadline passes, the
// remaining sections are recorded as omitted and the report is returned
// partial rather than failing.
func (b *Builder) Generate(sourcePath, documentType string) *Report {
	start := b.now()
	report := &Report{
		ReportID:     uuid.NewString(),
		Version:      ReportVersion,
		GeneratedAt:  start.UTC(),
		SourcePath:   sourcePath,
		DocumentType: documentType,
	}

	for i, section := range b.sections {
		if b.now().Sub(start) > b.deadline {
			report.Partial = true
			for _, remaining := range b.sections[i:] {
				report.OmittedSections = append(report.OmittedSections, remaining.Name)
			}
			log.Printf("[report] deadline exceeded; omitting %d sections", len(b.sections)-i)
			break
		}
		if err := section.Fill(report); err != nil {
			log.Printf("[report] section %q failed: %v", section.Name, err)
			report.Partial = true
			report.OmittedSections = append(report.OmittedSections, section.Name)
		}
	}
	return report
}
