package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ISO-8601
// =============================================================================

var (
	isoFullTZRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})$`)
	isoFullRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?(\.\d+)?$`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ISO8601Parser handles RFC-3339 timestamps and plain ISO dates
type ISO8601Parser struct{}

func (p *ISO8601Parser) Name() string { return "iso8601" }

func (p *ISO8601Parser) CanParse(input string) bool {
	return isoFullTZRe.MatchString(input) || isoFullRe.MatchString(input) || isoDateRe.MatchString(input)
}

func (p *ISO8601Parser) Parse(input string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not ISO-8601", ErrInvalidFormat, input)
}

// Confidence: full timestamp with timezone 0.95, timestamp without
// timezone 0.9, date-only 0.85
func (p *ISO8601Parser) Confidence(input string) float64 {
	switch {
	case isoFullTZRe.MatchString(input):
		return 0.95
	case isoFullRe.MatchString(input):
		return 0.9
	default:
		return 0.85
	}
}

// =============================================================================
// SPREADSHEET SERIAL
// =============================================================================

// serialEpoch is 1899-12-30: day 1 is 1900-01-01 under the convention that
// also absorbs the historical 1900 leap-year bug.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FromSerial converts a spreadsheet serial day number to a UTC date
func FromSerial(serial int64) time.Time {
	return serialEpoch.AddDate(0, 0, int(serial))
}

// ToSerial converts a date back to its spreadsheet serial day number
func ToSerial(t time.Time) int64 {
	days := t.UTC().Truncate(24*time.Hour).Sub(serialEpoch) / (24 * time.Hour)
	return int64(days)
}

// SerialParser handles integer spreadsheet day numbers
type SerialParser struct{}

func (p *SerialParser) Name() string { return "excel_serial" }

func (p *SerialParser) CanParse(input string) bool {
	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 100000
}

func (p *SerialParser) Parse(input string) (time.Time, error) {
	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a serial number", ErrInvalidFormat, input)
	}
	if n < 1 || n > 100000 {
		return time.Time{}, fmt.Errorf("%w: serial %d outside supported range", ErrOutOfRange, n)
	}
	return FromSerial(n), nil
}

// Confidence: serials landing in 2000-2030 are very likely real dates
// (0.8); the broader plausible band scores 0.6; anything else 0.3.
func (p *SerialParser) Confidence(input string) float64 {
	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return 0.0
	}
	switch {
	case n >= 36526 && n <= 47482: // 2000-01-01 .. 2030-01-01
		return 0.8
	case n >= 1 && n <= 50000:
		return 0.6
	default:
		return 0.3
	}
}

// =============================================================================
// SLASH FORMATS (US / EUROPEAN)
// =============================================================================

var slashRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)

// SlashParser parses M/D/Y or D/M/Y depending on monthFirst. Two parsers
// are registered, ordered by the configured locale preference, so the
// preferred interpretation always gets the first try.
type SlashParser struct {
	monthFirst bool
	prefs      FormatPreferences
}

func NewUSSlashParser(prefs FormatPreferences) *SlashParser {
	return &SlashParser{monthFirst: true, prefs: prefs}
}

func NewEuropeanSlashParser(prefs FormatPreferences) *SlashParser {
	return &SlashParser{monthFirst: false, prefs: prefs}
}

func (p *SlashParser) Name() string {
	if p.monthFirst {
		return "us_slash"
	}
	return "european_slash"
}

func (p *SlashParser) CanParse(input string) bool {
	return slashRe.MatchString(input)
}

func (p *SlashParser) Parse(input string) (time.Time, error) {
	m := slashRe.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a slash date", ErrInvalidFormat, input)
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year = p.prefs.expandYear(year)
	}

	month, day := first, second
	if !p.monthFirst {
		month, day = second, first
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d in %q", ErrInvalidFormat, month, input)
	}
	if day < 1 || day > daysInMonth(year, time.Month(month)) {
		return time.Time{}, fmt.Errorf("%w: day %d in %q", ErrInvalidFormat, day, input)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// Confidence is higher when this ordering matches the configured locale
// preference; 2-digit years cost extra because the century is inferred.
func (p *SlashParser) Confidence(input string) float64 {
	m := slashRe.FindStringSubmatch(input)
	fourDigit := m != nil && len(m[3]) == 4
	preferred := p.monthFirst == p.prefs.PreferMDY
	switch {
	case fourDigit && preferred:
		return 0.85
	case fourDigit:
		return 0.7
	case preferred:
		return 0.75
	default:
		return 0.6
	}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// OPTIMIZED FAST PATH
// =============================================================================

var (
	compactRe   = regexp.MustCompile(`^\d{8}$`)
	ymdSlashRe  = regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}$`)
	dottedYMDRe = regexp.MustCompile(`^\d{4}\.\d{1,2}\.\d{1,2}$`)
)

// OptimizedParser sniffs compact and year-first formats the general parsers
// do not claim (YYYYMMDD, YYYY/MM/DD, YYYY.MM.DD) and remembers which
// layout parsed each shape so repeated columns skip the sniffing.
type OptimizedParser struct {
	mu          sync.Mutex
	formatCache map[string]string // shape key -> layout
}

func NewOptimizedParser() *OptimizedParser {
	return &OptimizedParser{formatCache: make(map[string]string)}
}

func (p *OptimizedParser) Name() string { return "optimized" }

func (p *OptimizedParser) CanParse(input string) bool {
	if len(input) < 6 || len(input) > 30 {
		return false
	}
	return compactRe.MatchString(input) || ymdSlashRe.MatchString(input) || dottedYMDRe.MatchString(input)
}

func (p *OptimizedParser) Parse(input string) (time.Time, error) {
	shape := shapeKey(input)
	p.mu.Lock()
	layout, cached := p.formatCache[shape]
	p.mu.Unlock()
	if cached {
		if t, err := time.Parse(layout, input); err == nil {
			return t.UTC(), nil
		}
	}

	layouts := []string{"20060102", "2006/1/2", "2006.1.2"}
	for _, l := range layouts {
		t, err := time.Parse(l, input)
		if err != nil {
			continue
		}
		p.mu.Lock()
		p.formatCache[shape] = l
		p.mu.Unlock()
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: no fast-path layout for %q", ErrInvalidFormat, input)
}

// Confidence: 0.9 when the shape is one of the sniffed layouts, 0.5 when
// we only have a cached guess for it
func (p *OptimizedParser) Confidence(input string) float64 {
	if compactRe.MatchString(input) || ymdSlashRe.MatchString(input) || dottedYMDRe.MatchString(input) {
		return 0.9
	}
	return 0.5
}

func shapeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte('d')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// NATURAL LANGUAGE
// =============================================================================

var naturalKeywords = []string{
	"today", "tomorrow", "yesterday", "next ", "last ",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"jan ", "feb ", "mar ", "apr ", "jun ", "jul ", "aug ", "sep ", "oct ", "nov ", "dec ",
}

// NaturalParser handles relative phrases and month-name formats. Always the
// last resort; its results carry a fixed low confidence.
type NaturalParser struct {
	now func() time.Time
}

func NewNaturalParser() *NaturalParser {
	return &NaturalParser{now: time.Now}
}

func (p *NaturalParser) Name() string { return "natural_language" }

func (p *NaturalParser) CanParse(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range naturalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (p *NaturalParser) Parse(input string) (time.Time, error) {
	lower := strings.ToLower(strings.TrimSpace(input))
	today := p.now().UTC().Truncate(24 * time.Hour)

	switch lower {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if wd, ok := weekdayByName(strings.TrimPrefix(lower, "next ")); ok && strings.HasPrefix(lower, "next ") {
		return nextWeekday(today, wd, 1), nil
	}
	if wd, ok := weekdayByName(strings.TrimPrefix(lower, "last ")); ok && strings.HasPrefix(lower, "last ") {
		return nextWeekday(today, wd, -1), nil
	}
	if wd, ok := weekdayByName(lower); ok {
		return nextWeekday(today, wd, 1), nil
	}

	layouts := []string{
		"January 2, 2006",
		"January 2 2006",
		"2 January 2006",
		"Jan 2, 2006",
		"Jan 2 2006",
		"2 Jan 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot interpret %q", ErrInvalidFormat, input)
}

func (p *NaturalParser) Confidence(string) float64 { return 0.4 }

func weekdayByName(name string) (time.Weekday, bool) {
	switch strings.TrimSpace(name) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return 0, false
}

func nextWeekday(from time.Time, wd time.Weekday, direction int) time.Time {
	for i := 1; i <= 7; i++ {
		candidate := from.AddDate(0, 0, i*direction)
		if candidate.Weekday() == wd {
			return candidate
		}
	}
	return from
}
