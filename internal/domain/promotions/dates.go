package promotions

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
)

// DateLayout is the calendar-date format shown in the form and the table.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a value cannot be read as a point in time.
var ErrInvalidDate = errors.New("invalid date")

// maxEpochMillis bounds numeric timestamps to the range a JavaScript Date accepts.
const maxEpochMillis = 8.64e15

// Layouts tried in order before falling back to natural-language parsing.
// Values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	DateLayout,
	time.RFC1123Z,
	time.ANSIC,
}

// RFC 1123 and RFC 850 layouts without their trailing zone abbreviation.
// Only the RFC 822 zones are accepted after them.
var abbreviatedZoneLayouts = []string{
	strings.TrimSuffix(time.RFC1123, " MST"),
	strings.TrimSuffix(time.RFC850, " MST"),
}

// rfc822Zones maps the zone names of RFC 822 section 5 to their UTC offset in hours.
var rfc822Zones = map[string]int{
	"UT": 0, "UTC": 0, "GMT": 0, "Z": 0,
	"EST": -5, "EDT": -4,
	"CST": -6, "CDT": -5,
	"MST": -7, "MDT": -6,
	"PST": -8, "PDT": -7,
}

var (
	isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	fourDigitYear = regexp.MustCompile(`(^|\D)\d{4}(\D|$)`)
)

// The fallback only reads absolute dates with day, month and year all
// present, so the result never depends on the current time.
var (
	fallbackParser       = &dateparser.Parser{ParserTypes: []dateparser.ParserType{dateparser.AbsoluteTime}}
	fallbackParserConfig = &dateparser.Configuration{
		DefaultTimezone: time.UTC,
		StrictParsing:   true,
	}
)

// NormalizeDate converts a date value received from the service into a
// YYYY-MM-DD string built from its UTC year, month and day.
//
// Strings may be ISO 8601/RFC 3339, HTTP dates (RFC 1123) or free-form text;
// numbers are Unix epoch milliseconds.
func NormalizeDate(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", fmt.Errorf("%w: no value", ErrInvalidDate)
	case WireDate:
		return NormalizeDate(v.Value())
	case *WireDate:
		if v == nil {
			return "", fmt.Errorf("%w: no value", ErrInvalidDate)
		}
		return NormalizeDate(v.Value())
	case time.Time:
		if v.IsZero() {
			return "", fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		return formatUTC(v), nil
	case string:
		return normalizeDateString(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, v.String())
		}
		return normalizeEpochMillis(f)
	case float64:
		return normalizeEpochMillis(v)
	case float32:
		return normalizeEpochMillis(float64(v))
	case int:
		return normalizeEpochMillis(float64(v))
	case int64:
		return normalizeEpochMillis(float64(v))
	case int32:
		return normalizeEpochMillis(float64(v))
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, raw)
	}
}

// DisplayDate returns the normalized date for d. When d cannot be normalized
// the raw text is returned together with the parse error.
func DisplayDate(d WireDate) (string, error) {
	normalized, err := NormalizeDate(d)
	if err != nil {
		return d.String(), err
	}
	return normalized, nil
}

func normalizeDateString(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: empty string", ErrInvalidDate)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return formatUTC(t), nil
		}
	}
	if i := strings.LastIndexByte(value, ' '); i > 0 {
		for _, layout := range abbreviatedZoneLayouts {
			if wall, err := time.Parse(layout, value[:i]); err == nil {
				return normalizeZoneAbbreviation(wall, value[i+1:], value)
			}
		}
	}

	// A leading calendar date that time.Parse rejected (2024-02-30) is not
	// handed to the fallback, which would move it to a neighbouring day.
	if prefix := isoDatePrefix.FindString(value); prefix != "" {
		if _, err := time.Parse(DateLayout, prefix); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
		}
	}
	if !fourDigitYear.MatchString(value) {
		return "", fmt.Errorf("%w: %q has no year", ErrInvalidDate, value)
	}

	parsed, err := fallbackParser.Parse(fallbackParserConfig, value)
	if err != nil || parsed.Time.IsZero() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return formatUTC(parsed.Time), nil
}

// normalizeZoneAbbreviation places the wall clock in the named RFC 822 zone.
// time.Parse would give an unknown abbreviation a zero offset instead.
func normalizeZoneAbbreviation(wall time.Time, name, value string) (string, error) {
	hours, ok := rfc822Zones[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown time zone %q in %q", ErrInvalidDate, name, value)
	}
	zone := time.FixedZone(name, hours*3600)
	t := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), zone)
	return formatUTC(t), nil
}

func normalizeEpochMillis(ms float64) (string, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return "", fmt.Errorf("%w: timestamp %v out of range", ErrInvalidDate, ms)
	}
	return formatUTC(time.UnixMilli(int64(math.Trunc(ms)))), nil
}

func formatUTC(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
