package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stwalsh4118/estatedesk/internal/models"
)

// MaxBedrooms is the largest bedroom count accepted from a sheet.
const MaxBedrooms = 10

var (
	studioPattern    = regexp.MustCompile(`studio|\bstu\b|\bbachelor\b|\b1\s*rk\b|\brk\b`)
	spelledPattern   = regexp.MustCompile(`(?:^|[^a-z])(one|two|three|four|five|six|seven|eight|nine|ten)\s*-?\s*(?:bed|br\b|bhk|b/r)`)
	digitBedPattern  = regexp.MustCompile(`(\d+)(?:\.\d+)?\s*-?\s*(?:bhk|bed|br\b|bd\b|b/r)`)
	compactPattern   = regexp.MustCompile(`^(\d{1,2})\s*b(?:[^a-z]|$)`)
	plainIntPattern  = regexp.MustCompile(`^(\d{1,2})(?:\.0+)?$`)
	digitRunPattern  = regexp.MustCompile(`\d+`)
	numberPattern    = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
	numericOnlyRegex = regexp.MustCompile(`^[\d.,\s]+$`)
)

var spelledNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// NormalizeBedrooms extracts a bedroom count in [0,MaxBedrooms] from free text.
// It returns nil when nothing bedroom-like is recognized, so callers can tell
// "unknown" apart from a studio. An explicit count wins over a studio mention,
// so "1 Bedroom + Studio" is one bedroom.
func NormalizeBedrooms(text string) *int {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return nil
	}

	if m := spelledPattern.FindStringSubmatch(s); m != nil {
		return bedrooms(spelledNumbers[m[1]])
	}
	if m := digitBedPattern.FindStringSubmatch(s); m != nil {
		return parseBedrooms(m[1])
	}
	if m := compactPattern.FindStringSubmatch(s); m != nil {
		return parseBedrooms(m[1])
	}
	if m := plainIntPattern.FindStringSubmatch(s); m != nil {
		return parseBedrooms(m[1])
	}
	if studioPattern.MatchString(s) {
		return bedrooms(0)
	}
	return nil
}

func parseBedrooms(digits string) *int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return bedrooms(n)
}

func bedrooms(n int) *int {
	if n < 0 || n > MaxBedrooms {
		return nil
	}
	return &n
}

// NormalizeStatus maps free-text availability onto a UnitStatus.
// Empty or unrecognized input is UnitStatusUnknown.
func NormalizeStatus(text string) models.UnitStatus {
	s := strings.ToLower(strings.TrimSpace(text))
	switch {
	case s == "":
		return models.UnitStatusUnknown
	case strings.Contains(s, "unavail") || strings.Contains(s, "not avail"):
		return models.UnitStatusBlocked
	case strings.Contains(s, "avail") || strings.Contains(s, "vacant"):
		return models.UnitStatusAvailable
	case strings.Contains(s, "sold") || strings.Contains(s, "sale"):
		return models.UnitStatusSold
	case strings.Contains(s, "reserv") || strings.Contains(s, "book"):
		return models.UnitStatusReserved
	case strings.Contains(s, "block") || strings.Contains(s, "hold"):
		return models.UnitStatusBlocked
	}
	return models.UnitStatusUnknown
}

// NormalizeFloor returns numeric input as an int and otherwise the first run
// of digits in the value's text. It defaults to 0.
func NormalizeFloor(value interface{}) int {
	switch v := value.(type) {
	case nil:
		return 0
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return floatToInt(f)
		}
		return 0
	}

	m := digitRunPattern.FindString(cellString(value))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// NormalizeNumber parses an area or price. Thousands separators and
// whitespace are stripped; unparseable, empty or negative input yields 0.
func NormalizeNumber(value interface{}) float64 {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		text := cellString(value)
		s := strings.Map(func(r rune) rune {
			if r == ',' || r == ' ' || r == '\u00a0' || r == '\t' || r == '_' {
				return -1
			}
			return r
		}, text)
		m := numberPattern.FindString(s)
		if m == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		f = parsed
		if loc := numberPattern.FindStringIndex(text); loc != nil && signedAt(text, loc[0]) {
			f = -f
		}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// signedAt reports whether the number starting at index start of s carries a
// minus sign. A dash glued to a word ("Price-1000") is not a sign.
func signedAt(s string, start int) bool {
	prefix := strings.TrimRight(s[:start], " \t\u00a0")
	dash, size := utf8.DecodeLastRuneInString(prefix)
	if dash != '-' && dash != '\u2212' {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(prefix[:len(prefix)-size])
	return before == utf8.RuneError || !(unicode.IsLetter(before) || unicode.IsDigit(before))
}

// cellString renders a cell value as trimmed text. Whole floats lose their
// decimal point so 101.0 reads as "101".
func cellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}
	return strings.TrimSpace(fmt.Sprintf("%v", value))
}

func isNumericText(s string) bool {
	return numericOnlyRegex.MatchString(s)
}
