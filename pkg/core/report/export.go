package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlRenderer handles the GFM table syntax used by the asset section
var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// =============================================================================
// EXPORT FORMATS
// =============================================================================

// Format names a supported export encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// ErrNotImplemented marks formats that are declared but not yet rendered
var ErrNotImplemented = errors.New("export format not implemented")

// Export renders a report in the requested format
func Export(r *Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(r)
	case FormatCSV:
		return ExportCSV(r)
	case FormatMarkdown:
		return ExportMarkdown(r)
	case FormatHTML:
		return ExportHTML(r)
	case FormatPDF:
		return nil, fmt.Errorf("pdf: %w", ErrNotImplemented)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// =============================================================================
// JSON
// =============================================================================

// ExportJSON renders the full report structure
func ExportJSON(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return data, nil
}

// =============================================================================
// CSV
// =============================================================================

// ExportCSV renders the asset table; the other sections do not flatten
// usefully to rows
func ExportCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"asset_id", "asset_name", "asset_type", "asset_category",
		"environment", "criticality", "owner", "location",
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for i := range r.Assets {
		asset := &r.Assets[i]
		location := ""
		if asset.Location != nil {
			location = *asset.Location
		}
		record := []string{
			asset.AssetID, asset.AssetName, string(asset.AssetType),
			string(asset.AssetCategory), string(asset.Environment),
			string(asset.Criticality), asset.Owner, location,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// MARKDOWN
// =============================================================================

// ExportMarkdown renders a human-readable summary
func ExportMarkdown(r *Report) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Ingestion Report\n\n")
	fmt.Fprintf(&b, "- **Report ID:** %s\n", r.ReportID)
	fmt.Fprintf(&b, "- **Version:** %s\n", r.Version)
	fmt.Fprintf(&b, "- **Generated:** %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Source:** %s\n", r.SourcePath)
	fmt.Fprintf(&b, "- **Document Type:** %s\n", r.DocumentType)
	if r.Partial {
		fmt.Fprintf(&b, "- **Partial report**; omitted sections: %s\n",
			strings.Join(r.OmittedSections, ", "))
	}
	b.WriteString("\n")

	if r.Detection != nil {
		fmt.Fprintf(&b, "## Template Detection\n\n")
		fmt.Fprintf(&b, "Detected template `%s` with confidence %.2f.\n\n",
			r.Detection.TemplateType, r.Detection.Confidence)
		if len(r.Detection.MatchedWorksheets) > 0 {
			fmt.Fprintf(&b, "Matched worksheets: %s\n\n",
				strings.Join(r.Detection.MatchedWorksheets, ", "))
		}
	}

	if r.Validation != nil {
		fmt.Fprintf(&b, "## Validation\n\n")
		fmt.Fprintf(&b, "%s\n\n", r.Validation.Summary)
		fmt.Fprintf(&b, "Grade %s, risk %s, overall score %.2f.\n\n",
			r.Validation.Metrics.QualityGrade, r.Validation.Metrics.RiskLevel,
			r.Validation.Metrics.OverallScore)
	}

	if len(r.Assets) > 0 {
		fmt.Fprintf(&b, "## Assets (%d)\n\n", len(r.Assets))
		b.WriteString("| ID | Name | Type | Category | Criticality |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for i := range r.Assets {
			asset := &r.Assets[i]
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				asset.AssetID, asset.AssetName, asset.AssetType,
				asset.AssetCategory, asset.Criticality)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d relationships discovered.\n\n", len(r.Relationships))
	}

	if r.Quality != nil {
		fmt.Fprintf(&b, "## POA&M Quality\n\n")
		fmt.Fprintf(&b, "Overall score %.2f (completeness %.2f, accuracy %.2f, consistency %.2f, compliance %.2f).\n\n",
			r.Quality.OverallScore, r.Quality.CompletenessScore, r.Quality.AccuracyScore,
			r.Quality.ConsistencyScore, r.Quality.ComplianceScore)
		if len(r.Quality.Findings) > 0 {
			fmt.Fprintf(&b, "### Findings (%d)\n\n", len(r.Quality.Findings))
			for _, finding := range r.Quality.Findings {
				fmt.Fprintf(&b, "- **%s / %s**: %s\n",
					finding.Severity, finding.Category, finding.Description)
			}
			b.WriteString("\n")
		}
	}

	return []byte(b.String()), nil
}

// =============================================================================
// HTML
// =============================================================================

// ExportHTML renders the Markdown form through goldmark
func ExportHTML(r *Report) ([]byte, error) {
	md, err := ExportMarkdown(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head><title>Ingestion Report</title></head>\n<body>\n")
	if err := htmlRenderer.Convert(md, &buf); err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}
