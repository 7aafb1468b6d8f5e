// Package ingest - HTTP surface for the ingestion pipeline
package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"compliance_ingest/pkg/core/config"
	"compliance_ingest/pkg/core/confidence"
	"compliance_ingest/pkg/core/override"
	"compliance_ingest/pkg/core/report"
	"compliance_ingest/pkg/core/store"
	"compliance_ingest/pkg/core/workbook"
)

var processingConfig config.ProcessingConfig
var overrideEngine *override.Engine
var mappingScorer *confidence.Scorer

// InitHandler wires the handler's shared state. Call once at startup. A
// nil scorer falls back to the default in-memory one.
func InitHandler(cfg config.ProcessingConfig, engine *override.Engine, scorer *confidence.Scorer) {
	processingConfig = cfg
	overrideEngine = engine
	mappingScorer = scorer
}

// ParseRequest carries an inline workbook plus its logical filename; the
// extension on Filename selects the decoder.
type ParseRequest struct {
	Filename string          `json:"filename"`
	Workbook json.RawMessage `json:"workbook"`
	Format   string          `json:"format,omitempty"`
}

// HandleParse runs the full pipeline over an uploaded workbook and writes
// the report in the requested format (JSON by default).
func HandleParse(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Filename == "" || len(req.Workbook) == 0 {
		http.Error(w, "filename and workbook are required", http.StatusBadRequest)
		return
	}
	log.Printf("[INGEST] Parse request: %s (%d bytes)", req.Filename, len(req.Workbook))

	parseConfig := workbook.DefaultParseConfig()
	if mappingScorer != nil {
		parseConfig.Scorer = mappingScorer
	}
	doc, err := workbook.Parse(req.Workbook, req.Filename, parseConfig)
	if err != nil {
		http.Error(w, fmt.Sprintf("parse failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	result := report.Assemble(doc, processingConfig)
	log.Printf("[INGEST] %s: type=%s assets=%d quality=%.2f partial=%v",
		req.Filename, result.DocumentType, len(result.Assets), doc.QualityScore, result.Partial)

	if store.GetPool() != nil {
		repo := store.NewReportRepo()
		if err := repo.Save(r.Context(), result.ReportID, result.SourcePath, result.DocumentType, result); err != nil {
			log.Printf("[INGEST] Report persistence failed: %v", err)
		}
	}

	format := report.Format(req.Format)
	if format == "" {
		format = report.FormatJSON
	}
	payload, err := report.Export(result, format)
	if err != nil {
		http.Error(w, fmt.Sprintf("export failed: %v", err), http.StatusBadRequest)
		return
	}

	switch format {
	case report.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case report.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case report.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write(payload)
}

// OverrideRuleRequest wraps a raw override rule document; tolerant JSON
// repair happens inside the engine importer.
type OverrideRuleRequest struct {
	Rules json.RawMessage `json:"rules"`
}

// HandleImportOverrides loads override rules into the shared engine
func HandleImportOverrides(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if overrideEngine == nil {
		http.Error(w, "override engine not initialized", http.StatusServiceUnavailable)
		return
	}

	var req OverrideRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	imported, err := overrideEngine.ImportJSON(req.Rules)
	if err != nil {
		http.Error(w, fmt.Sprintf("import failed: %v", err), http.StatusBadRequest)
		return
	}
	log.Printf("[INGEST] Imported %d override rules", imported)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"imported": imported})
}

// HandleMetrics reports the override engine's resolution metrics
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if overrideEngine == nil {
		http.Error(w, "override engine not initialized", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(overrideEngine.Metrics())
}
