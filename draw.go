package megasena

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// RawDraw is a single draw payload as returned by the upstream API.
// The API is inconsistent about field names across versions, so raw
// payloads stay untyped until normalization.
type RawDraw map[string]any

// DrawRecord is a canonical draw produced by normalization
type DrawRecord struct {
	Data           string `json:"data"`
	NumeroConcurso string `json:"numero_concurso"`
	Numeros        []int  `json:"numeros"`
}

// Estimate holds the most frequent numbers grouped by bet size
type Estimate struct {
	Data   string `json:"data"`
	Quadra []int  `json:"quadra"`
	Quina  []int  `json:"quina"`
	Sorte  []int  `json:"sorte"`
}

// FrequencyTable maps every number 1..60 to its occurrence count
type FrequencyTable map[int]int

// Number returns the draw identifier, trying the known field aliases.
// Returns fallback when no alias is present or parseable.
func (d RawDraw) Number(fallback int) int {
	for _, key := range []string{"numero", "numeroConcurso", "concurso"} {
		if v, ok := d[key]; ok {
			if n, ok := intValue(v); ok {
				return n
			}
		}
	}
	return fallback
}

// DateString returns the draw date string, trying the known field aliases
func (d RawDraw) DateString() string {
	for _, key := range []string{"dataApuracao", "data", "dataApuracaoStr"} {
		if v, ok := d[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// ParseDrawDate parses a draw date trying the localized layout first,
// then the ISO layout.
func ParseDrawDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormatBR, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(DateFormatISO, s)
}

// intValue coerces a decoded JSON value to an int
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// stringValue coerces a decoded JSON value to its string form.
// Integral floats render without a fractional part, matching the way
// the upstream serializes draw identifiers.
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}
