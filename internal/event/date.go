package event

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnparseableDate is returned when the raw text matches no known shape.
	ErrUnparseableDate = errors.New("unparseable date")
	// ErrEmptyRange is returned when a range ends before it starts.
	ErrEmptyRange = errors.New("range ends before it starts")
	// ErrDayOutOfMonth is returned when a day does not exist in its month.
	// Compact ranges such as "2835 févr. 2025" hit this instead of rolling
	// over into the following month.
	ErrDayOutOfMonth = errors.New("day out of month")
)

// DateKind selects how a RawDate is interpreted.
type DateKind int

const (
	// KindTimestampRange is a pair of machine-readable timestamps.
	KindTimestampRange DateKind = iota + 1
	// KindTimestamp is a single machine-readable timestamp.
	KindTimestamp
	// KindLocalized is free text like "18 janv. 2025".
	KindLocalized
	// KindCompactRange is free text like "0618 janv. 2025", days 6 to 18.
	KindCompactRange
)

func (k DateKind) String() string {
	switch k {
	case KindTimestampRange:
		return "timestamp_range"
	case KindTimestamp:
		return "timestamp"
	case KindLocalized:
		return "localized"
	case KindCompactRange:
		return "compact_range"
	}
	return "unknown"
}

// RawDate is a site's date as scraped, tagged with its shape.
type RawDate struct {
	Kind  DateKind `json:"kind"`
	Start string   `json:"start,omitempty"`
	End   string   `json:"end,omitempty"`
	Text  string   `json:"text,omitempty"`
}

// TimestampRange tags a start/end pair of timestamps.
func TimestampRange(start, end string) RawDate {
	return RawDate{Kind: KindTimestampRange, Start: start, End: end}
}

// Timestamp tags a single timestamp.
func Timestamp(ts string) RawDate {
	return RawDate{Kind: KindTimestamp, Start: ts}
}

// Localized tags free text holding a single date.
func Localized(text string) RawDate {
	return RawDate{Kind: KindLocalized, Text: text}
}

// CompactRange tags free text holding a concatenated day range.
func CompactRange(text string) RawDate {
	return RawDate{Kind: KindCompactRange, Text: text}
}

var (
	joinedDaysPattern = regexp.MustCompile(`^\d{4}\s`)
	splitDaysPattern  = regexp.MustCompile(`^\d{2}\s+\d{2}\s`)
)

// LocalizedText tags free text as a compact range when it starts with two
// two-digit day tokens ("0618 janv. 2025" or "06 18 janv. 2025") and as a
// single localized date otherwise.
func LocalizedText(text string) RawDate {
	text = strings.TrimSpace(text)
	if joinedDaysPattern.MatchString(text) || splitDaysPattern.MatchString(text) {
		return CompactRange(text)
	}
	return Localized(text)
}

// IsEmpty reports whether no date text was scraped at all.
func (r RawDate) IsEmpty() bool {
	return strings.TrimSpace(r.Start) == "" && strings.TrimSpace(r.End) == "" && strings.TrimSpace(r.Text) == ""
}

func (r RawDate) String() string {
	switch r.Kind {
	case KindTimestampRange:
		return r.Start + " / " + r.End
	case KindTimestamp:
		return r.Start
	}
	return r.Text
}

// Span is an ordered sequence of calendar days, each at midnight UTC.
// An empty span means the raw date could not be used.
type Span []time.Time

// Parser expands RawDate values into spans using one locale's month names.
type Parser struct {
	locale *Locale
}

// NewParser creates a Parser reading month names from loc.
func NewParser(loc *Locale) *Parser {
	return &Parser{locale: loc}
}

// Locale returns the parser's locale.
func (p *Parser) Locale() *Locale {
	return p.locale
}

// Parse returns the span for raw, or an empty span if it cannot be parsed.
func (p *Parser) Parse(raw RawDate) Span {
	span, err := p.ParseSpan(raw)
	if err != nil {
		return Span{}
	}
	return span
}

// ParseSpan is Parse with the reason for failure.
func (p *Parser) ParseSpan(raw RawDate) (Span, error) {
	switch raw.Kind {
	case KindTimestampRange:
		start, err := parseTimestamp(raw.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseTimestamp(raw.End)
		if err != nil {
			return nil, err
		}
		return daysBetween(start, end)

	case KindTimestamp:
		day, err := parseTimestamp(raw.Start)
		if err != nil {
			return nil, err
		}
		return Span{day}, nil

	case KindLocalized:
		fields := strings.Fields(raw.Text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrUnparseableDate, raw.Text)
		}
		day, err := p.localDate(fields[0], fields[1], fields[2])
		if err != nil {
			return nil, err
		}
		return Span{day}, nil

	case KindCompactRange:
		return p.parseCompact(raw.Text)
	}

	return nil, fmt.Errorf("%w: unsupported kind %d", ErrUnparseableDate, raw.Kind)
}

// parseCompact reads "DDDD month year" or "DD DD month year". Month and year
// are fixed, so the range never crosses a month boundary.
func (p *Parser) parseCompact(text string) (Span, error) {
	fields := strings.Fields(text)

	var startTok, endTok string
	switch {
	case len(fields) == 3 && len(fields[0]) == 4:
		startTok, endTok = fields[0][:2], fields[0][2:]
		fields = fields[1:]
	case len(fields) == 4 && len(fields[0]) == 2 && len(fields[1]) == 2:
		startTok, endTok = fields[0], fields[1]
		fields = fields[2:]
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnparseableDate, text)
	}

	first, err := p.localDate(startTok, fields[0], fields[1])
	if err != nil {
		return nil, err
	}
	last, err := p.localDate(endTok, fields[0], fields[1])
	if err != nil {
		return nil, err
	}
	return daysBetween(first, last)
}

// localDate builds a date from day, month-name and year tokens.
func (p *Parser) localDate(dayTok, monthTok, yearTok string) (time.Time, error) {
	day, err := strconv.Atoi(dayTok)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q", ErrUnparseableDate, dayTok)
	}
	year, err := strconv.Atoi(yearTok)
	if err != nil || len(yearTok) != 4 {
		return time.Time{}, fmt.Errorf("%w: year %q", ErrUnparseableDate, yearTok)
	}
	month, err := p.locale.Month(monthTok)
	if err != nil {
		return time.Time{}, err
	}
	if day < 1 || day > daysIn(month, year) {
		return time.Time{}, fmt.Errorf("%w: %d %s %d", ErrDayOutOfMonth, day, p.locale.MonthName(month), year)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp keeps the calendar day as written, ignoring any offset.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrUnparseableDate, s)
}

// MaxSpanDays bounds how many days a single range may cover.
const MaxSpanDays = 400

// daysBetween lists every day from start through end inclusive.
func daysBetween(start, end time.Time) (Span, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s > %s", ErrEmptyRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > MaxSpanDays {
		return nil, fmt.Errorf("%w: range of %d days exceeds %d", ErrUnparseableDate, days, MaxSpanDays)
	}
	span := make(Span, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		span = append(span, d)
	}
	return span, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
