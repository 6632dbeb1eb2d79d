package schema

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/docschema/docschema/internal/apperr"
)

// NormalizeScalar converts a decoded variable value into the canonical scalar
// set (string, float64, bool). Numbers of any Go width become float64; ok is
// false for nil, maps, slices and other non-scalars.
func NormalizeScalar(v interface{}) (interface{}, bool) {
	switch x := v.(type) {
	case string, bool, float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return nil, false
}

// Coerce returns a copy of vars with absent fields filled from their schema
// default, numeric strings turned into numbers for number fields, and
// "true"/"false" turned into booleans for boolean fields. Values that cannot
// be coerced are left for Check to report.
func (o *Object) Coerce(vars map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	for _, name := range o.names() {
		p := o.Properties[name]
		v, ok := out[name]
		if !ok || v == nil {
			if p.Default == nil {
				continue
			}
			v = p.Default
		}
		if n, ok := NormalizeScalar(v); ok {
			v = n
		}
		if s, isString := v.(string); isString {
			switch p.Type {
			case "number":
				if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
					v = f
				}
			case "boolean":
				if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
					v = b
				}
			}
		}
		out[name] = v
	}
	return out
}

// Check validates vars against the group schema. path prefixes every issue,
// e.g. "objectVariables" or "lineItemVariables[2]". Empty strings in optional
// fields count as absent.
func (o *Object) Check(vars map[string]interface{}, path string) []apperr.Issue {
	var issues []apperr.Issue
	requiredSet := make(map[string]bool, len(o.Required))
	for _, name := range o.Required {
		requiredSet[name] = true
	}

	value := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		if _, declared := o.Properties[k]; !declared {
			issues = append(issues, apperr.Issue{Path: join(path, k), Message: "is not declared by the template"})
			continue
		}
		if s, ok := v.(string); ok && s == "" && !requiredSet[k] {
			continue
		}
		if n, ok := NormalizeScalar(v); ok {
			v = n
		}
		value[k] = v
	}

	if err := o.openAPI(requiredSet).VisitJSON(value, openapi3.MultiErrors()); err != nil {
		issues = append(issues, issuesFrom(err, path)...)
	}

	for k, v := range value {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		if msg := checkFormat(o.Properties[k].Format, s); msg != "" {
			issues = append(issues, apperr.Issue{Path: join(path, k), Message: msg})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues
}

func (o *Object) openAPI(required map[string]bool) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Title = o.Title
	s.Required = append([]string(nil), o.Required...)
	for name, p := range o.Properties {
		ps := &openapi3.Schema{Type: &openapi3.Types{p.Type}, Title: p.Title}
		for _, e := range p.Enum {
			ps.Enum = append(ps.Enum, e)
		}
		if p.Type == "string" && required[name] {
			ps.MinLength = 1
		}
		s.Properties[name] = openapi3.NewSchemaRef("", ps)
	}
	return s
}

func issuesFrom(err error, path string) []apperr.Issue {
	var me openapi3.MultiError
	if errors.As(err, &me) {
		var out []apperr.Issue
		for _, e := range me {
			out = append(out, issuesFrom(e, path)...)
		}
		return out
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return []apperr.Issue{{Path: join(path, se.JSONPointer()...), Message: se.Reason}}
	}
	return []apperr.Issue{{Path: path, Message: err.Error()}}
}

func join(path string, keys ...string) string {
	for _, k := range keys {
		if path == "" {
			path = k
			continue
		}
		path += "." + k
	}
	return path
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-.]{4,19}$`)

// checkFormat returns a message when s does not satisfy format, "" otherwise.
// Unknown formats always pass.
func checkFormat(format, s string) string {
	switch format {
	case "email":
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return "must be an email address"
		}
	case "uri":
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
			return "must be an absolute URI"
		}
	case "date-time":
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return ""
		}
		// date inputs submit plain calendar dates
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return ""
		}
		return "must be an RFC 3339 date-time or YYYY-MM-DD date"
	case "phone":
		if !phonePattern.MatchString(s) {
			return "must be a phone number"
		}
	}
	return ""
}

// Validate checks a full variable payload against the compiled document and
// returns coerced copies of the three variable groups. The error, when not
// nil, is an *apperr.ValidationError.
func (d *Document) Validate(object, contact map[string]interface{}, lineItems []map[string]interface{}) (map[string]interface{}, map[string]interface{}, []map[string]interface{}, error) {
	ve := &apperr.ValidationError{}

	object = d.Properties.ObjectFields.Coerce(object)
	for _, is := range d.Properties.ObjectFields.Check(object, "objectVariables") {
		ve.Add(is)
	}
	contact = d.Properties.ContactFields.Coerce(contact)
	for _, is := range d.Properties.ContactFields.Check(contact, "contactVariables") {
		ve.Add(is)
	}
	items := make([]map[string]interface{}, len(lineItems))
	for i, li := range lineItems {
		items[i] = d.Properties.LineItemFields.Coerce(li)
		for _, is := range d.Properties.LineItemFields.Check(items[i], fmt.Sprintf("lineItemVariables[%d]", i)) {
			ve.Add(is)
		}
	}
	return object, contact, items, ve.OrNil()
}
