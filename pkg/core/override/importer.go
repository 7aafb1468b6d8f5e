package override

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// =============================================================================
// RULE FILE IMPORT / EXPORT
// =============================================================================

// ImportJSON registers rules from a JSON document. Override files are
// hand-edited, so the payload is run through a repair pass first (trailing
// commas, missing quotes); each repaired rule still goes through the full
// AddOverride validation.
func (e *Engine) ImportJSON(data []byte) (int, error) {
	repaired, err := jsonrepair.RepairJSON(string(data))
	if err != nil {
		return 0, fmt.Errorf("repair override file: %w", err)
	}

	var rules []MappingOverride
	if err := json.Unmarshal([]byte(repaired), &rules); err != nil {
		return 0, fmt.Errorf("parse override file: %w", err)
	}

	imported := 0
	for i := range rules {
		if err := e.AddOverride(rules[i]); err != nil {
			return imported, fmt.Errorf("rule %d (%q): %w", i, rules[i].Name, err)
		}
		imported++
	}
	return imported, nil
}

// ExportJSON serializes the registered rules in priority order
func (e *Engine) ExportJSON() ([]byte, error) {
	rules := e.Overrides()
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export overrides: %w", err)
	}
	return data, nil
}
