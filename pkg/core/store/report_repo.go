package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ReportRepo persists generated ingestion reports.
type ReportRepo struct{}

// NewReportRepo creates a new repository instance.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{}
}

// Save upserts a report keyed by source path. The full report is stored as
// a single JSONB blob; the indexed columns cover the lookup patterns we
// actually have.
func (r *ReportRepo) Save(ctx context.Context, reportID, sourcePath, documentType string, report any) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO ingestion_reports (source_path, report_id, document_type, report_json, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_path)
		DO UPDATE SET
			report_id = EXCLUDED.report_id,
			document_type = EXCLUDED.document_type,
			report_json = EXCLUDED.report_json,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := pool.Exec(ctx, query, sourcePath, reportID, documentType, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves the stored report blob for a source path.
func (r *ReportRepo) Load(ctx context.Context, sourcePath string) (json.RawMessage, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var data []byte
	query := `SELECT report_json FROM ingestion_reports WHERE source_path = $1;`
	if err := pool.QueryRow(ctx, query, sourcePath).Scan(&data); err != nil {
		return nil, fmt.Errorf("failed to load report for %s: %w", sourcePath, err)
	}
	return data, nil
}
