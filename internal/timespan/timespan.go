// Package timespan normalizes the date expressions accepted by tool and CLI
// parameters: ISO 8601 instants, bare dates, and natural-language phrases like
// "yesterday" or "last monday". Single dates expand to the full calendar day,
// and ranges render as the start/end timeperiod strings the query API expects.
package timespan

import (
	"fmt"
	"strings"
	"time"

	naturaldate "github.com/tj/go-naturaldate"
)

// ParseError reports date text that matched no ISO layout and was rejected by
// the natural-language engine.
type ParseError struct {
	Input string
	cause error
}

func (e *ParseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("could not parse date %q: %v", e.Input, e.cause)
	}
	return fmt.Sprintf("could not parse date %q", e.Input)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.cause
}

// Range is a resolved start/end instant pair.
type Range struct {
	Start time.Time
	End   time.Time
}

// StartISO renders the range start in canonical ISO form.
func (r Range) StartISO() string {
	return FormatISO(r.Start)
}

// EndISO renders the range end in canonical ISO form.
func (r Range) EndISO() string {
	return FormatISO(r.End)
}

// Timeperiod renders the range as the "start/end" string the query API expects.
func (r Range) Timeperiod() string {
	return r.StartISO() + "/" + r.EndISO()
}

// isoLayouts is the ordered layout chain tried before the natural-language
// engine. Layouts without an offset are interpreted in the local zone.
var isoLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02", true},
}

// ParseInstant resolves a single date expression to an instant.
// ISO forms win over the natural-language engine; the first successful parse
// is returned. Fails with *ParseError, including on an empty string.
func ParseInstant(text string) (time.Time, error) {
	return parseInstantAt(text, time.Now())
}

func parseInstantAt(text string, ref time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, &ParseError{Input: text}
	}

	for _, l := range isoLayouts {
		if l.local {
			if t, err := time.ParseInLocation(l.layout, trimmed, ref.Location()); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.Parse(l.layout, trimmed); err == nil {
			return t, nil
		}
	}

	return parseNatural(trimmed, ref)
}

// parseNatural delegates to the natural-language engine. Kept as a thin
// adapter so the engine can be swapped without touching range expansion.
func parseNatural(text string, ref time.Time) (time.Time, error) {
	t, err := naturaldate.Parse(text, ref, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, &ParseError{Input: text, cause: err}
	}
	return t, nil
}

// FormatISO renders an instant in UTC with a T separator and Z suffix at
// second precision. Round-trips through ParseInstant within one second.
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseRange resolves a start/end expression pair.
// start is required. When end is omitted the range covers the entire calendar
// day containing start: 00:00:00 through 23:59:59 in the local zone, so
// end > start always holds for single-date input.
func ParseRange(start, end string) (Range, error) {
	return parseRangeAt(start, end, time.Now())
}

func parseRangeAt(start, end string, ref time.Time) (Range, error) {
	if strings.TrimSpace(start) == "" {
		return Range{}, &ParseError{Input: start}
	}

	startT, err := parseInstantAt(start, ref)
	if err != nil {
		return Range{}, err
	}

	if strings.TrimSpace(end) == "" {
		dayStart := time.Date(startT.Year(), startT.Month(), startT.Day(), 0, 0, 0, 0, startT.Location())
		dayEnd := dayStart.Add(24*time.Hour - time.Second)
		return Range{Start: dayStart, End: dayEnd}, nil
	}

	endT, err := parseInstantAt(end, ref)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: startT, End: endT}, nil
}

// ParseTimePeriod normalizes a timeperiod expression into "start/end" form.
// Text already containing one / has each side re-parsed and re-rendered;
// more than one / is rejected. Text without a / is treated as a single date
// expression and expanded to its full day.
func ParseTimePeriod(text string) (string, error) {
	return parseTimePeriodAt(text, time.Now())
}

func parseTimePeriodAt(text string, ref time.Time) (string, error) {
	switch strings.Count(text, "/") {
	case 0:
		r, err := parseRangeAt(text, "", ref)
		if err != nil {
			return "", err
		}
		return r.Timeperiod(), nil
	case 1:
		parts := strings.SplitN(text, "/", 2)
		startT, err := parseInstantAt(parts[0], ref)
		if err != nil {
			return "", err
		}
		endT, err := parseInstantAt(parts[1], ref)
		if err != nil {
			return "", err
		}
		return Range{Start: startT, End: endT}.Timeperiod(), nil
	default:
		return "", &ParseError{Input: text, cause: fmt.Errorf("more than one / separator")}
	}
}
