// Package fields resolves values out of loosely shaped JSON objects using
// ordered alias lists. Objects are expected to come from DecodeObject, so
// numbers arrive as json.Number.
package fields

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var errNotObject = errors.New("json value is not an object")

// DecodeObject decodes data into a generic object, keeping numbers as
// json.Number so identifiers and amounts survive re-encoding unchanged.
func DecodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// Text reports the textual form of a scalar value and whether it counts as
// set. Empty strings, zero numbers, false and null are unset. Objects and
// arrays never resolve to text.
func Text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		f, err := t.Float64()
		if err == nil && f == 0 {
			return "", false
		}
		return t.String(), true
	case float64:
		if t == 0 || t != t {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), t != 0
	case int64:
		return strconv.FormatInt(t, 10), t != 0
	case bool:
		if !t {
			return "", false
		}
		return "true", true
	default:
		return "", false
	}
}

// First returns the text of the first alias in keys that holds a set value,
// or "" when none does.
func First(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := Text(m[k]); ok {
			return s
		}
	}
	return ""
}

// FirstOr is First with a fallback for the unresolved case.
func FirstOr(m map[string]any, fallback string, keys ...string) string {
	if s := First(m, keys...); s != "" {
		return s
	}
	return fallback
}

// Object returns the first alias in keys that holds a JSON object.
func Object(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if obj, ok := m[k].(map[string]any); ok {
			return obj, true
		}
	}
	return nil, false
}

// Present returns the first alias in keys whose value is present and not
// null, regardless of whether it is empty or zero.
func Present(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// DigitsOnly drops every rune that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
