// Package normalize coerces loosely typed source values into typed values with
// fallbacks. Every function is total: it always returns a value.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// String renders v as trimmed text. Missing or empty values return fallback.
func String(v any, fallback string) string {
	var text string
	switch x := v.(type) {
	case nil:
		return fallback
	case string:
		text = x
	case json.Number:
		text = x.String()
	case float64:
		text = formatFloat(x)
	case float32:
		text = formatFloat(float64(x))
	case int:
		text = strconv.Itoa(x)
	case int64:
		text = strconv.FormatInt(x, 10)
	case bool:
		text = strconv.FormatBool(x)
	default:
		text = fmt.Sprint(x)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}

// Number coerces v to a finite number. Values that are missing, blank or not
// numeric return fallback.
func Number(v any, fallback float64) float64 {
	n, ok := number(v)
	if !ok {
		return fallback
	}
	return n
}

// FirstNumber returns the first of vs that coerces to a finite number, or
// fallback when none does.
func FirstNumber(fallback float64, vs ...any) float64 {
	for _, v := range vs {
		if n, ok := number(v); ok {
			return n
		}
	}
	return fallback
}

func number(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		text := String(v, "")
		if text == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true, "y": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true, "n": true}
)

// Bool accepts true/1/yes/y and false/0/no/n case-insensitively. Anything else
// returns fallback.
func Bool(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	token := strings.ToLower(String(v, ""))
	switch {
	case truthy[token]:
		return true
	case falsy[token]:
		return false
	}
	return fallback
}

// Slug lowercases and trims s, turns whitespace into hyphens, keeps only ASCII
// word characters, hyphens and the Arabic block, and collapses repeated hyphens.
func Slug(s string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
			}
			lastHyphen = true
		case isWordRune(r) || isArabic(r):
			b.WriteRune(r)
			lastHyphen = false
		}
	}
	return b.String()
}

// Tags splits a | or , separated list, trimming entries and dropping empties.
func Tags(v any) []string {
	parts := strings.FieldsFunc(String(v, ""), func(r rune) bool {
		return r == '|' || r == ','
	})
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isArabic(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
