// Package matching implements the specification-matching engine: it
// normalizes free-form attribute values, compares them under per-kind
// tolerance rules, scores requirement/candidate specification sets, and
// ranks catalog candidates per requirement. Pure computation, no I/O.
package matching

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags a normalized value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
)

// Value is the canonical form of a specification attribute value: a number,
// a lowercased trimmed string, or absent. The normalization is intentionally
// lossy — units are discarded, so "95 sqmm", "95sqmm" and 95 all converge on
// the numeric core. Attribute identity is trusted, not verified.
type Value struct {
	Kind Kind
	Num  float64
	Text string
}

// Normalize converts a raw specification value into its canonical form.
// It is total: no input causes an error. Anything that cannot be read as a
// number degrades to the text branch.
func Normalize(raw interface{}) Value {
	if raw == nil {
		return Value{Kind: KindAbsent}
	}

	switch v := raw.(type) {
	case float64:
		return Value{Kind: KindNumber, Num: v}
	case float32:
		return Value{Kind: KindNumber, Num: float64(v)}
	case int:
		return Value{Kind: KindNumber, Num: float64(v)}
	case int64:
		return Value{Kind: KindNumber, Num: float64(v)}
	case string:
		return normalizeString(v)
	default:
		return normalizeString(fmt.Sprint(raw))
	}
}

func normalizeString(s string) Value {
	s = strings.TrimSpace(s)

	if strings.ContainsAny(s, "0123456789") {
		if num, ok := parseNumericCore(s); ok {
			return Value{Kind: KindNumber, Num: num}
		}
	}

	return Value{Kind: KindText, Text: strings.ToLower(s)}
}

// parseNumericCore strips every rune that is not a digit, '.' or '-' and
// parses what remains. "95sqmm" -> 95, "1.1kV" -> 1.1. Range strings like
// "0-10" keep the interior '-' and fail the parse, falling back to text.
func parseNumericCore(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	num, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return num, true
}
