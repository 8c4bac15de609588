package cleaner

// normalize.go converts raw spreadsheet cells into canonical values.
//
// Every function here is total: malformed input degrades to an invalid
// (NULL) pgtype value instead of an error, so callers can clean thousands of
// rows without per-row error handling and audit data quality afterwards by
// querying NULL columns.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	yearRangeRegex  = regexp.MustCompile(`^(\d{4})\s*-\s*(\d{2,4})$`)
	singleYearRegex = regexp.MustCompile(`^\d{4}$`)

	// numericPrefixRegex finds the leading number of a cell once currency
	// symbols and thousands separators are stripped. Trailing text is
	// ignored, so "100 kits" and "5000/-" keep their value.
	numericPrefixRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// dateLayouts are tried in order and the first strict match wins.
// Day-first layouts precede month-first ones, so "01/02/2020" is 1 Feb 2020.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
	"2/1/2006",
	"1/2/2006",
	"02.01.2006",
	"2006/01/02",
	"2-1-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// lenientDateLayouts is the last resort for strings none of the strict
// layouts accept: timestamps, RFC forms and textual dates without commas.
var lenientDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	time.UnixDate,
	"Mon Jan 2 2006",
	"Mon, Jan 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 January 2006",
	"2 January, 2006",
	"Jan 2006",
	"January 2006",
	"2006-1-2",
	"2006/1/2",
	"2006.01.02",
	"2-Jan-2006",
	"02-Jan-2006",
	"2006",
}

// twoDigitYearLayouts carry a two-digit year, the way spreadsheet software
// renders short dates ("5/15/16", "15-May-16").
var twoDigitYearLayouts = []string{
	"1/2/06",
	"1-2-06",
	"2-Jan-06",
}

// serialEpoch is day 2 of spreadsheet serial dates. Serial 60 is the
// fictitious 29 Feb 1900, so days after it land on the right calendar date.
var serialEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxSerialDays bounds serial dates to what a calendar date can represent.
const maxSerialDays = 100_000_000

const isoDate = "2006-01-02"

// YearRange is a parsed financial or calendar year.
// Label echoes the trimmed input when it could not be parsed.
type YearRange struct {
	Start pgtype.Int4 `json:"year_start"`
	End   pgtype.Int4 `json:"year_end"`
	Label pgtype.Text `json:"year_label"`
}

// Canonicalize trims, collapses whitespace and title-cases each
// space-delimited token. Non-text and blank input returns NULL.
//
// Tokens are reset independently: "McDONALD" becomes "Mcdonald".
func Canonicalize(v any) pgtype.Text {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case pgtype.Text:
		if !t.Valid {
			return pgtype.Text{}
		}
		s = t.String
	default:
		return pgtype.Text{}
	}

	words := strings.FieldsFunc(s, isSpace)
	if len(words) == 0 {
		return pgtype.Text{}
	}

	for i, w := range words {
		w = strings.ToLower(w)
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}

	return pgtype.Text{String: strings.Join(words, " "), Valid: true}
}

// ParseYear parses "2016-17", "2016-2017" and "2019" style year cells.
func ParseYear(v any) YearRange {
	if isBlank(v) {
		return YearRange{}
	}

	s := trim(textOf(v).String)

	if m := yearRangeRegex.FindStringSubmatch(s); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])

		if end < 100 {
			century := (start / 100) * 100
			end += century
			if end < start {
				end += 100
			}
		}

		return YearRange{
			Start: pgtype.Int4{Int32: int32(start), Valid: true},
			End:   pgtype.Int4{Int32: int32(end), Valid: true},
			Label: pgtype.Text{String: fmt.Sprintf("%d-%d", start, end), Valid: true},
		}
	}

	if singleYearRegex.MatchString(s) {
		year, _ := strconv.Atoi(s)
		return YearRange{
			Start: pgtype.Int4{Int32: int32(year), Valid: true},
			End:   pgtype.Int4{Int32: int32(year), Valid: true},
			Label: pgtype.Text{String: s, Valid: true},
		}
	}

	return YearRange{Label: pgtype.Text{String: s, Valid: true}}
}

// ParseDate converts a date cell to a YYYY-MM-DD string.
//
// Accepted inputs are time.Time values, spreadsheet serial numbers and
// strings in any of the known layouts. Anything else returns NULL.
func ParseDate(v any) pgtype.Text {
	if isBlank(v) {
		return pgtype.Text{}
	}

	switch t := v.(type) {
	case time.Time:
		return isoText(t)
	case *time.Time:
		if t == nil {
			return pgtype.Text{}
		}
		return isoText(*t)
	}

	if f, ok := asFloat(v); ok {
		return serialDate(f)
	}

	s := trim(textOf(v).String)
	if s == "" {
		return pgtype.Text{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return isoText(t)
		}
	}

	return lenientDate(s)
}

// ParseNumeric parses quantity, beneficiary and amount cells.
//
// "Multiple", "NA" and "N/A" are spreadsheet conventions for "not a fixed
// number" and return NULL exactly like unparseable input does.
func ParseNumeric(v any) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{}
	}

	if f, ok := asFloat(v); ok {
		return finite(f)
	}

	t := textOf(v)
	if !t.Valid || t.String == "" {
		return pgtype.Float8{}
	}

	s := strings.ToLower(trim(t.String))
	switch s {
	case "multiple", "na", "n/a":
		return pgtype.Float8{}
	}

	s = strings.NewReplacer(",", "", "₹", "", "$", "").Replace(s)
	s = trim(s)

	num := numericPrefixRegex.FindString(s)
	if num == "" {
		return pgtype.Float8{}
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return pgtype.Float8{}
	}
	return finite(f)
}

func serialDate(serial float64) pgtype.Text {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return pgtype.Text{}
	}

	days := serial - 2
	whole := math.Floor(days)
	if math.Abs(whole) > maxSerialDays {
		return pgtype.Text{}
	}

	frac := time.Duration((days - whole) * float64(24*time.Hour))
	return isoText(serialEpoch.AddDate(0, 0, int(whole)).Add(frac))
}

func lenientDate(s string) pgtype.Text {
	for _, layout := range lenientDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return isoText(t)
		}
	}

	// Two-digit years 50-99 belong to the 1900s.
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() >= 2050 {
				t = t.AddDate(-100, 0, 0)
			}
			return isoText(t)
		}
	}

	return pgtype.Text{}
}

func isoText(t time.Time) pgtype.Text {
	if t.IsZero() {
		return pgtype.Text{}
	}
	return pgtype.Text{String: t.Format(isoDate), Valid: true}
}

func finite(f float64) pgtype.Float8 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// isBlank reports whether a cell counts as empty: absent, an empty string,
// a NULL text value, zero or false.
func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case pgtype.Text:
		return !t.Valid || t.String == ""
	case bool:
		return !t
	}
	if f, ok := asFloat(v); ok {
		return f == 0 || math.IsNaN(f)
	}
	return false
}

// asFloat returns the value of numeric cells. Strings are not numbers here.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case pgtype.Float8:
		return n.Float64, n.Valid
	case pgtype.Int4:
		return float64(n.Int32), n.Valid
	}
	return 0, false
}

// textOf coerces a cell to text. Strings pass through byte-for-byte.
func textOf(v any) pgtype.Text {
	var s string
	switch t := v.(type) {
	case nil:
		return pgtype.Text{}
	case pgtype.Text:
		return t
	case string:
		s = t
	case []byte:
		s = string(t)
	case bool:
		s = strconv.FormatBool(t)
	case time.Time:
		s = t.Format(time.RFC3339)
	case float64:
		s = formatFloat(t)
	case float32:
		s = formatFloat(float64(t))
	case pgtype.Float8:
		if !t.Valid {
			return pgtype.Text{}
		}
		s = formatFloat(t.Float64)
	case fmt.Stringer:
		s = t.String()
	default:
		if f, ok := asFloat(v); ok {
			s = formatFloat(f)
		} else {
			s = fmt.Sprint(v)
		}
	}
	return pgtype.Text{String: s, Valid: true}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	if f == 0 {
		return "0"
	}

	// Plain notation from 1e-6 up to 1e21, exponent notation with an
	// unpadded exponent outside it: 1e+21, 1.5e-7.
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// isSpace matches unicode whitespace plus the byte order mark, which
// spreadsheet exports leave in the first cell.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
