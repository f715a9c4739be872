package loader

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
)

// The pipeline serializes missing floats as bare NaN, which is not JSON.
var nonFinite = regexp.MustCompile(`([:\[,]\s*)-?(?:NaN|Infinity)(\s*[,\]}])`)

func sanitize(data []byte) []byte {
	// adjacent matches share a delimiter, so a second pass catches them
	for i := 0; i < 2; i++ {
		data = nonFinite.ReplaceAll(data, []byte("${1}null${2}"))
	}
	return data
}

// object is a decoded JSON object with lenient accessors
type object map[string]any

func decodeObject(data []byte) (object, error) {
	var v any
	if err := json.Unmarshal(sanitize(data), &v); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding JSON: expected object, got %T", v)
	}
	return object(m), nil
}

// number returns a finite numeric field. Numeric strings are accepted.
func (o object) number(key string) (float64, bool) {
	var f float64
	switch v := o[key].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (o object) numberOr(key string, fallback float64) float64 {
	if f, ok := o.number(key); ok {
		return f
	}
	return fallback
}

// str returns a string field, formatting numbers without a fraction as integers
func (o object) str(key string) string {
	switch v := o[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (o object) strOr(key, fallback string) string {
	if s := strings.TrimSpace(o.str(key)); s != "" {
		return s
	}
	return fallback
}

func (o object) object(key string) object {
	m, _ := o[key].(map[string]any)
	return object(m)
}

// list returns the objects of an array field, skipping non-object entries
func (o object) list(key string) []object {
	arr, _ := o[key].([]any)
	out := make([]object, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, object(m))
		}
	}
	return out
}
