package dates

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PARSER CHAIN
// =============================================================================

// Converter runs the ordered parser chain. The first parser that both
// claims an input and parses it successfully wins; later parsers are never
// consulted even if they would disagree.
type Converter struct {
	parsers     []DateParser
	prefs       FormatPreferences
	constraints []DateConstraint
}

// NewConverter builds the default chain for the given locale preferences:
// optimized fast path, ISO-8601, spreadsheet serial, the preferred slash
// ordering before the other, natural language last.
func NewConverter(prefs FormatPreferences) *Converter {
	us := NewUSSlashParser(prefs)
	eu := NewEuropeanSlashParser(prefs)
	slash := []DateParser{us, eu}
	if !prefs.PreferMDY {
		slash = []DateParser{eu, us}
	}

	parsers := []DateParser{
		NewOptimizedParser(),
		&ISO8601Parser{},
		&SerialParser{},
	}
	parsers = append(parsers, slash...)
	parsers = append(parsers, NewNaturalParser())

	return &Converter{parsers: parsers, prefs: prefs}
}

// NewDefaultConverter uses US month-first preferences
func NewDefaultConverter() *Converter {
	return NewConverter(DefaultFormatPreferences())
}

// ParseDate resolves one input string through the chain. Empty input yields
// a nil value at zero confidence; a failed chain yields the same plus a
// warning. Ambiguity never surfaces as an error.
func (c *Converter) ParseDate(input string) ParseResult {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ParseResult{Value: nil, Confidence: 0.0, Parser: "empty"}
	}

	for _, parser := range c.parsers {
		if !parser.CanParse(trimmed) {
			continue
		}
		value, err := parser.Parse(trimmed)
		if err != nil {
			continue
		}
		result := ParseResult{
			Value:      &value,
			Confidence: parser.Confidence(trimmed),
			Parser:     parser.Name(),
		}
		if result.Confidence < 0.8 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("low confidence (%.2f) parsing %q with %s", result.Confidence, trimmed, parser.Name()))
		}
		return result
	}

	return ParseResult{
		Value:      nil,
		Confidence: 0.0,
		Parser:     "unknown",
		Warnings:   []string{fmt.Sprintf("no parser recognized %q", trimmed)},
	}
}

// ToISO8601 parses the input and renders it as an RFC-3339 UTC string.
// Unlike ParseDate this is an error when nothing parses, since the caller
// asked for a concrete serialization.
func (c *Converter) ToISO8601(input string) (string, error) {
	result := c.ParseDate(input)
	if result.Value == nil {
		return "", fmt.Errorf("%w: cannot convert %q to ISO-8601", ErrInvalidFormat, input)
	}
	return result.Value.UTC().Format(time.RFC3339), nil
}

// Preferences returns the locale preferences the chain was built with
func (c *Converter) Preferences() FormatPreferences {
	return c.prefs
}
