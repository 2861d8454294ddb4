// Package plancache maps a normalized description of a plan request to a
// previously generated meal plan so repeat requests skip the LLM.
package plancache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
	"unicode/utf8"

	"meal-planner/internal/meal"
)

// ErrInvalidInput is wrapped by every key derivation failure.
var ErrInvalidInput = errors.New("invalid input")

// WeekStartLayout is the format week start dates are given in.
const WeekStartLayout = "2006-01-02"

// DeriveKey returns the lowercase hex SHA-256 digest identifying a plan
// request for the given preferences, week start (a Monday, YYYY-MM-DD) and
// serving count.
func DeriveKey(prefs meal.UserPreferences, weekStart string, servings int) (string, error) {
	return DeriveKeyFromValue(prefs, weekStart, servings)
}

// DeriveKeyFromValue is DeriveKey for any JSON-serializable preferences
// object. Object keys are sorted at every depth before hashing, so two values
// that differ only in field order produce the same key.
func DeriveKeyFromValue(prefs any, weekStart string, servings int) (string, error) {
	canonical, err := canonicalJSON(prefs)
	if err != nil {
		return "", err
	}

	if err := validateWeekStart(weekStart); err != nil {
		return "", err
	}

	if servings <= 0 {
		return "", fmt.Errorf("%w: servings must be a positive integer, got %d", ErrInvalidInput, servings)
	}

	var buf bytes.Buffer
	buf.Write(canonical)
	buf.WriteString(weekStart)
	buf.WriteString(strconv.Itoa(servings))

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON round-trips v through a generic value: encoding/json writes
// map keys in sorted order, which gives a field-order independent encoding.
// Numbers decode to float64, so 2000 and 2000.0 render alike.
func canonicalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: preferences are nil", ErrInvalidInput)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: preferences are not serializable: %v", ErrInvalidInput, err)
	}
	// Marshal replaces invalid UTF-8 in Go strings with U+FFFD and passes
	// raw JSON through untouched; both would let distinct values collide.
	if !utf8.Valid(raw) || !validUTF8(reflect.ValueOf(v)) {
		return nil, fmt.Errorf("%w: preferences contain invalid UTF-8", ErrInvalidInput)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: failed to normalize preferences: %v", ErrInvalidInput, err)
	}

	if _, ok := generic.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: preferences must be an object", ErrInvalidInput)
	}

	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode preferences: %v", ErrInvalidInput, err)
	}
	return out, nil
}

// validUTF8 reports whether every string reachable from v, map keys
// included, is valid UTF-8. Byte slices are skipped: JSON encodes them as
// base64. It runs after a successful Marshal, so v has no cycles.
func validUTF8(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return utf8.ValidString(v.String())
	case reflect.Pointer, reflect.Interface:
		return v.IsNil() || validUTF8(v.Elem())
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if f := t.Field(i); (f.IsExported() || f.Anonymous) && !validUTF8(v.Field(i)) {
				return false
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !validUTF8(iter.Key()) || !validUTF8(iter.Value()) {
				return false
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return true
		}
		for i := 0; i < v.Len(); i++ {
			if !validUTF8(v.Index(i)) {
				return false
			}
		}
	}
	return true
}

func validateWeekStart(weekStart string) error {
	day, err := time.Parse(WeekStartLayout, weekStart)
	if err != nil {
		return fmt.Errorf("%w: week start %q is not a YYYY-MM-DD date", ErrInvalidInput, weekStart)
	}
	if day.Weekday() != time.Monday {
		return fmt.Errorf("%w: week start %s is a %s, not a Monday", ErrInvalidInput, weekStart, day.Weekday())
	}
	return nil
}
