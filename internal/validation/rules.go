package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// isoMillis matches the ISO-8601 rendering used in date bound messages.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// value is the field under inspection. Type rules decode into it so that
// later rules in the same chain can read the typed form.
type value struct {
	raw  json.RawMessage
	str  string
	date time.Time
	obj  *object
}

// rule returns the violation text for v, or "" when v passes.
type rule func(v *value) string

// field is one key of a schema. Rules run in order and stop at the first
// violation. An absent optional field skips its rules and runs fallback.
type field struct {
	key      string
	required bool
	rules    []rule
	nested   schema
	assign   func(v *value)
	fallback func()
}

type schema struct {
	fields       []field
	allowUnknown bool
}

func (s schema) known(key string) bool {
	for _, f := range s.fields {
		if f.key == key {
			return true
		}
	}
	return false
}

// validate walks the schema against obj and returns the first violation.
// Declared fields are checked before unknown keys.
func (s schema) validate(path string, obj *object) error {
	for _, f := range s.fields {
		fieldPath := joinPath(path, f.key)
		raw, present := obj.get(f.key)
		if !present {
			if f.required {
				return violation(fieldPath, "is required")
			}
			if f.fallback != nil {
				f.fallback()
			}
			continue
		}

		v := &value{raw: raw}
		for _, r := range f.rules {
			if msg := r(v); msg != "" {
				return violation(fieldPath, msg)
			}
		}
		if v.obj != nil && len(f.nested.fields) > 0 {
			if err := f.nested.validate(fieldPath, v.obj); err != nil {
				return err
			}
		}
		if f.assign != nil {
			f.assign(v)
		}
	}

	if s.allowUnknown {
		return nil
	}
	for _, m := range obj.members {
		if !s.known(m.key) {
			return violation(joinPath(path, m.key), "is not allowed")
		}
	}
	return nil
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func violation(path, msg string) error {
	return errorutil.NewValidationError(fmt.Sprintf("%q %s", path, msg))
}

func isObject(v *value) string {
	obj, err := parseObject(v.raw)
	if err != nil {
		return "must be of type object"
	}
	v.obj = obj
	return ""
}

func isString(v *value) string {
	if kindOf(v.raw) != kindString || json.Unmarshal(v.raw, &v.str) != nil {
		return "must be a string"
	}
	return ""
}

func notEmpty(v *value) string {
	if v.str == "" {
		return "is not allowed to be empty"
	}
	return ""
}

func minLength(validate *validator.Validate, n int) rule {
	tag := "min=" + strconv.Itoa(n)
	return func(v *value) string {
		if validate.Var(v.str, tag) != nil {
			return fmt.Sprintf("length must be at least %d characters long", n)
		}
		return ""
	}
}

func maxLength(validate *validator.Validate, n int) rule {
	tag := "max=" + strconv.Itoa(n)
	return func(v *value) string {
		if validate.Var(v.str, tag) != nil {
			return fmt.Sprintf("length must be less than or equal to %d characters long", n)
		}
		return ""
	}
}

// oneOf accepts only strings from allowed. Values of any other type get the
// same message.
func oneOf(validate *validator.Validate, allowed ...string) rule {
	tag := "oneof=" + strings.Join(allowed, " ")
	msg := "must be one of [" + strings.Join(allowed, ", ") + "]"
	return func(v *value) string {
		if kindOf(v.raw) != kindString || json.Unmarshal(v.raw, &v.str) != nil {
			return msg
		}
		if validate.Var(v.str, tag) != nil {
			return msg
		}
		return ""
	}
}

func isDate(v *value) string {
	t, ok := parseDate(v.raw)
	if !ok {
		return "must be a valid date"
	}
	v.date = t
	return ""
}

func greater(bound time.Time) rule {
	return func(v *value) string {
		if !v.date.After(bound) {
			return fmt.Sprintf("must be greater than %q", bound.UTC().Format(isoMillis))
		}
		return ""
	}
}

func less(bound time.Time) rule {
	return func(v *value) string {
		if !v.date.Before(bound) {
			return fmt.Sprintf("must be less than %q", bound.UTC().Format(isoMillis))
		}
		return ""
	}
}

// maxEpochMillis is the largest distance from the epoch a date may have.
const maxEpochMillis = 8.64e15

// parseDate accepts date strings in the common textual forms, all-digit
// strings and JSON numbers as epoch milliseconds. Strings without a zone are
// read as UTC.
func parseDate(raw json.RawMessage) (time.Time, bool) {
	switch kindOf(raw) {
	case kindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false
		}
		s = strings.TrimSpace(s)
		if isDigits(s) {
			return fromEpochMillis(s)
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case kindNumber:
		return fromEpochMillis(string(raw))
	default:
		return time.Time{}, false
	}
}

func fromEpochMillis(s string) (time.Time, bool) {
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
