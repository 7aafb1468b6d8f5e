package template

import "strings"

// =============================================================================
// HEADER -> STANDARD FIELD MAPPING
// =============================================================================

// headerRule maps a header containing every keyword to a canonical field.
// Checked in order; the first rule whose keywords are all present wins.
var headerRules = []struct {
	keywords []string
	field    string
}{
	{[]string{"asset", "id"}, "asset_id"},
	{[]string{"asset", "name"}, "asset_name"},
	{[]string{"asset", "type"}, "asset_type"},
	{[]string{"software", "name"}, "software_name"},
	{[]string{"device", "name"}, "asset_name"},
	{[]string{"host", "name"}, "hostname"},
	{[]string{"ip", "address"}, "ip_address"},
	{[]string{"mac", "address"}, "mac_address"},
	{[]string{"operating", "system"}, "operating_system"},
	{[]string{"serial", "number"}, "serial_number"},
	{[]string{"network", "segment"}, "network_segment"},
	{[]string{"responsible"}, "owner"},
	{[]string{"owner"}, "owner"},
	{[]string{"location"}, "location"},
	{[]string{"environment"}, "environment"},
	{[]string{"critical"}, "criticality"},
	{[]string{"description"}, "description"},
	{[]string{"vendor"}, "vendor"},
	{[]string{"manufacturer"}, "vendor"},
	{[]string{"version"}, "version"},
	{[]string{"vlan"}, "network_segment"},
	{[]string{"subnet"}, "network_segment"},
	{[]string{"tags"}, "tags"},
	{[]string{"name"}, "asset_name"},
	{[]string{"type"}, "asset_type"},
	{[]string{"os"}, "operating_system"},
}

// MapHeaderToStandardField converts an observed column header to its
// canonical snake_case field name. Unrecognized headers fall back to a
// lowercased, underscore-joined form of the header itself.
func MapHeaderToStandardField(header string) string {
	lower := strings.ToLower(strings.TrimSpace(header))
	words := tokenize(lower)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	for _, rule := range headerRules {
		matched := true
		for _, kw := range rule.keywords {
			// Substring matching only for longer keywords; "id" or "os"
			// inside another word is noise.
			ok := wordSet[kw] || (len(kw) >= 4 && strings.Contains(lower, kw))
			if !ok {
				matched = false
				break
			}
		}
		if matched {
			return rule.field
		}
	}
	return strings.Join(words, "_")
}
