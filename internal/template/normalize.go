package template

import (
	"fmt"
	"strconv"
)

// NormalizeFields fills the stored defaults for each field: type text,
// validation none, options []. Unknown type and validation tokens are kept as
// given. The result is never nil.
func NormalizeFields(in []Field) []Field {
	out := make([]Field, 0, len(in))
	for _, f := range in {
		if f.Type == "" {
			f.Type = FieldText
		}
		if f.Validation == "" {
			f.Validation = ValidationNone
		}
		if f.Options == nil {
			f.Options = []string{}
		}
		out = append(out, f)
	}
	return out
}

// Normalize prepares a template for first persistence: all groups present
// and every field carrying its defaults.
func Normalize(t *Template) {
	t.ObjectFields = NormalizeFields(t.ObjectFields)
	t.ContactFields = NormalizeFields(t.ContactFields)
	t.LineItemFields = NormalizeFields(t.LineItemFields)
}

// Warning is an advisory lint finding. It never blocks a write.
type Warning struct {
	Group   Group  `json:"group"`
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s[%d] %q: %s", w.Group, w.Index, w.Field, w.Message)
}

// Lint reports soft-invariant violations: empty or duplicate names, options on
// non-select fields, select fields without options, unknown tokens, and
// defaults not representable as the field type.
func Lint(t *Template) []Warning {
	var out []Warning
	for _, g := range Groups {
		seen := make(map[string]bool)
		for i, f := range t.Fields(g) {
			warn := func(msg string) {
				out = append(out, Warning{Group: g, Index: i, Field: f.Name, Message: msg})
			}
			if f.Name == "" {
				warn("name is empty")
			} else if seen[f.Name] {
				warn("duplicate name in group")
			}
			seen[f.Name] = true

			if f.Type != "" && !f.Type.Known() {
				warn(fmt.Sprintf("unknown type %q, treated as text", f.Type))
			}
			if f.Validation != "" && !f.Validation.Known() {
				warn(fmt.Sprintf("unknown validation %q, ignored", f.Validation))
			}
			if f.Type == FieldSelect && len(f.Options) == 0 {
				warn("select field has no options")
			}
			if f.Type != FieldSelect && len(f.Options) > 0 {
				warn("options are only used by select fields")
			}
			if f.DefaultValue != nil && !Representable(f.Type, f.DefaultValue) {
				warn(fmt.Sprintf("default value %v is not representable as %s", f.DefaultValue, ExternalType(f.Type)))
			}
		}
	}
	return out
}

// Representable reports whether v can stand as a value of a field of type t.
// Numeric strings are accepted for number fields and "true"/"false" for
// checkboxes, matching what form inputs submit.
func Representable(t FieldType, v interface{}) bool {
	switch ExternalType(t) {
	case "number":
		switch x := v.(type) {
		case float64, float32, int, int32, int64:
			return true
		case string:
			if x == "" {
				return true
			}
			_, err := strconv.ParseFloat(x, 64)
			return err == nil
		}
		return false
	case "boolean":
		switch x := v.(type) {
		case bool:
			return true
		case string:
			_, err := strconv.ParseBool(x)
			return x == "" || err == nil
		}
		return false
	default:
		switch v.(type) {
		case string, float64, float32, int, int32, int64, bool:
			return true
		}
		return false
	}
}
