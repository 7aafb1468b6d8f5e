// Package confidence - Multi-factor mapping confidence scoring
// Scores proposed column-to-field mappings with a weighted factor model
// and a full per-factor explanation.
package confidence

import (
	"context"
	"fmt"
	"sync"

	"compliance_ingest/pkg/core/store"
)

// =============================================================================
// HISTORICAL MAPPING STORE
// =============================================================================

type historyKey struct {
	mapping      string // "source:target"
	documentType string
}

type historyCounts struct {
	Success int64
	Total   int64
}

// HistoryStore tracks how often a source->target mapping was ultimately
// accepted, per document type. Read-mostly; safe for concurrent use.
type HistoryStore struct {
	mu      sync.RWMutex
	entries map[historyKey]*historyCounts
}

// NewHistoryStore creates an empty in-memory store
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{entries: make(map[historyKey]*historyCounts)}
}

// Record registers one mapping outcome
func (h *HistoryStore) Record(source, target, documentType string, success bool) {
	key := historyKey{mapping: source + ":" + target, documentType: documentType}
	h.mu.Lock()
	defer h.mu.Unlock()
	counts, ok := h.entries[key]
	if !ok {
		counts = &historyCounts{}
		h.entries[key] = counts
	}
	counts.Total++
	if success {
		counts.Success++
	}
}

// SuccessRate returns the historical success rate for a mapping within the
// given document type. The boolean is false when no history exists; the
// scorer substitutes the neutral 0.5 in that case.
func (h *HistoryStore) SuccessRate(source, target, documentType string) (float64, bool) {
	key := historyKey{mapping: source + ":" + target, documentType: documentType}
	h.mu.RLock()
	defer h.mu.RUnlock()
	counts, ok := h.entries[key]
	if !ok || counts.Total == 0 {
		return 0, false
	}
	return float64(counts.Success) / float64(counts.Total), true
}

// Len reports the number of distinct (mapping, document type) entries
func (h *HistoryStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// =============================================================================
// OPTIONAL POSTGRES PERSISTENCE
// =============================================================================

// LoadFromDB replaces the in-memory contents with the persisted history.
// Requires store.InitDB to have been called.
func (h *HistoryStore) LoadFromDB(ctx context.Context) error {
	pool := store.GetPool()
	if pool == nil {
		return fmt.Errorf("history load: database pool not initialized")
	}
	rows, err := pool.Query(ctx,
		`SELECT source_column, target_field, document_type, success_count, total_count FROM mapping_history`)
	if err != nil {
		return fmt.Errorf("history load: %w", err)
	}
	defer rows.Close()

	loaded := make(map[historyKey]*historyCounts)
	for rows.Next() {
		var source, target, docType string
		var success, total int64
		if err := rows.Scan(&source, &target, &docType, &success, &total); err != nil {
			return fmt.Errorf("history load scan: %w", err)
		}
		loaded[historyKey{mapping: source + ":" + target, documentType: docType}] = &historyCounts{
			Success: success,
			Total:   total,
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("history load rows: %w", err)
	}

	h.mu.Lock()
	h.entries = loaded
	h.mu.Unlock()
	return nil
}

// SaveToDB upserts the in-memory history into Postgres
func (h *HistoryStore) SaveToDB(ctx context.Context) error {
	pool := store.GetPool()
	if pool == nil {
		return fmt.Errorf("history save: database pool not initialized")
	}

	h.mu.RLock()
	snapshot := make(map[historyKey]historyCounts, len(h.entries))
	for k, v := range h.entries {
		snapshot[k] = *v
	}
	h.mu.RUnlock()

	for key, counts := range snapshot {
		source, target, ok := splitMappingKey(key.mapping)
		if !ok {
			continue
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO mapping_history (source_column, target_field, document_type, success_count, total_count)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (source_column, target_field, document_type)
			DO UPDATE SET success_count = EXCLUDED.success_count, total_count = EXCLUDED.total_count`,
			source, target, key.documentType, counts.Success, counts.Total)
		if err != nil {
			return fmt.Errorf("history save %s: %w", key.mapping, err)
		}
	}
	return nil
}

func splitMappingKey(key string) (source, target string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}
