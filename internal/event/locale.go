package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownMonth is returned when a month token is not in the locale table
// or is an ambiguous prefix.
var ErrUnknownMonth = errors.New("unknown month")

// Locale holds the month names used to read and render dates for one language.
// It replaces any reliance on process-wide locale settings.
type Locale struct {
	Name   string
	months [12]string
	abbrev [12]string
	lookup map[string]time.Month
}

// NewLocale builds a Locale from full and abbreviated month names, January first.
func NewLocale(name string, months, abbrev [12]string) *Locale {
	l := &Locale{
		Name:   name,
		months: months,
		abbrev: abbrev,
		lookup: make(map[string]time.Month, 24),
	}
	for i := 0; i < 12; i++ {
		m := time.Month(i + 1)
		l.lookup[foldMonth(months[i])] = m
		l.lookup[foldMonth(abbrev[i])] = m
	}
	return l
}

// French is the locale of all currently scraped sites.
var French = NewLocale("fr",
	[12]string{"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	[12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin",
		"juil.", "août", "sept.", "oct.", "nov.", "déc."},
)

// English locale, mostly useful for tests and English-language sites.
var English = NewLocale("en",
	[12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	[12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
)

// Month resolves a month token. Matching ignores case, accents and trailing
// dots. A token of three or more letters that prefixes exactly one month is
// accepted, so "jan" and "déc" resolve but French "jui" does not.
func (l *Locale) Month(token string) (time.Month, error) {
	key := foldMonth(token)
	if m, ok := l.lookup[key]; ok {
		return m, nil
	}

	if len([]rune(key)) >= 3 {
		var found time.Month
		for i := 0; i < 12; i++ {
			full := foldMonth(l.months[i])
			short := foldMonth(l.abbrev[i])
			if strings.HasPrefix(full, key) || strings.HasPrefix(short, key) {
				if found != 0 && found != time.Month(i+1) {
					return 0, fmt.Errorf("%w: %q is ambiguous in %s", ErrUnknownMonth, token, l.Name)
				}
				found = time.Month(i + 1)
			}
		}
		if found != 0 {
			return found, nil
		}
	}

	return 0, fmt.Errorf("%w: %q in %s", ErrUnknownMonth, token, l.Name)
}

// MonthName returns the full month name
func (l *Locale) MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return l.months[m-1]
}

// FormatLong renders a day as "6 janvier 2025".
func (l *Locale) FormatLong(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), l.MonthName(t.Month()), t.Year())
}

// foldMonth lowercases, strips diacritics and trailing dots.
func foldMonth(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".")
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = stripped
	}
	return cases.Fold().String(s)
}
