// Package dates - Prioritized date parsing chain with per-parser confidence
// Handles the heterogeneous date formats found in human-entered spreadsheets:
// ISO-8601, spreadsheet serial numbers, locale-dependent slash formats and
// natural-language phrases.
package dates

import (
	"errors"
	"time"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

var (
	ErrInvalidFormat = errors.New("invalid date format")
	ErrAmbiguousDate = errors.New("ambiguous date")
	ErrOutOfRange    = errors.New("date out of range")
	ErrTimezoneError = errors.New("timezone error")
)

// =============================================================================
// PARSER CONTRACT
// =============================================================================

// DateParser is one link in the fallback chain. CanParse is a cheap
// structural check; Parse may still fail (e.g. "15" as a month), in which
// case the chain moves on to the next parser.
type DateParser interface {
	Name() string
	CanParse(input string) bool
	Parse(input string) (time.Time, error)
	Confidence(input string) float64
}

// ParseResult is what the chain returns for one input string. Value is nil
// when no parser succeeded; ambiguity is reported through Confidence and
// Warnings, never as an error.
type ParseResult struct {
	Value      *time.Time `json:"value,omitempty"`
	Confidence float64    `json:"confidence"`
	Parser     string     `json:"parser"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// =============================================================================
// FORMAT PREFERENCES
// =============================================================================

// FormatPreferences selects slash-format locale ordering and how 2-digit
// years are expanded. Two-digit years >= CenturyCutoff land in the 1900s,
// below it in the 2000s.
type FormatPreferences struct {
	PreferMDY     bool `yaml:"prefer_mdy"`
	CenturyCutoff int  `yaml:"century_cutoff"`
}

// DefaultFormatPreferences returns US-style month-first with cutoff 50
func DefaultFormatPreferences() FormatPreferences {
	return FormatPreferences{PreferMDY: true, CenturyCutoff: 50}
}

func (p FormatPreferences) expandYear(yy int) int {
	if yy >= p.CenturyCutoff {
		return 1900 + yy
	}
	return 2000 + yy
}
