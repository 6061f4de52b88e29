// Package format renders record fields for display in the reader's locale.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// InvalidDate is shown for dates that cannot be parsed.
const InvalidDate = "Invalid Date"

type locale struct {
	tag        language.Tag
	dateLayout string
}

var locales = []locale{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/2006"},
	{language.Italian, "2/1/2006"},
	{language.Portuguese, "02/01/2006"},
	{language.Dutch, "2-1-2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
	{language.Korean, "2006. 1. 2."},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// Locale is a resolved display locale.
type Locale struct {
	idx     int
	printer *message.Printer
}

// Default is en-US.
var Default = newLocale(0)

func newLocale(idx int) Locale {
	return Locale{idx: idx, printer: message.NewPrinter(locales[idx].tag)}
}

// FromAcceptLanguage picks the best supported locale for an Accept-Language
// header value, falling back to Default.
func FromAcceptLanguage(header string) Locale {
	if strings.TrimSpace(header) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return newLocale(idx)
}

// Tag is the BCP 47 tag of the locale.
func (l Locale) Tag() language.Tag {
	return locales[l.idx].tag
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts the timestamp shapes the collection job writes.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date formats a date string for the locale, or returns InvalidDate.
func (l Locale) Date(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return InvalidDate
	}
	return t.UTC().Format(locales[l.idx].dateLayout)
}

// Count formats a numeric field with the locale's digit grouping. Values
// that are not numbers are returned unchanged.
func (l Locale) Count(s string) string {
	trimmed := strings.TrimSpace(s)
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return l.printer.Sprintf("%d", n)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return l.printer.Sprintf("%d", int64(f))
		}
		return l.printer.Sprintf("%.2f", f)
	}
	return s
}
