package schema

import (
	"encoding/json"
	"sort"

	"github.com/docschema/docschema/internal/template"
)

const Draft07 = "http://json-schema.org/draft-07/schema#"

// Document is the compiled external schema of a template.
type Document struct {
	Schema      string         `json:"$schema"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Properties  RootProperties `json:"properties"`
	Required    []string       `json:"required"`
}

// RootProperties keeps the three groups in contract order when marshalled.
type RootProperties struct {
	ObjectFields   *Object `json:"objectFields"`
	ContactFields  *Object `json:"contactFields"`
	LineItemFields *Object `json:"lineItemFields"`
}

// Object is the schema of one field group.
type Object struct {
	Type       string               `json:"type"`
	Title      string               `json:"title"`
	Properties map[string]*Property `json:"properties"`
	Required   []string             `json:"required"`

	// declaration order of property names, first occurrence wins
	order []string
}

// Property is the schema of one field.
type Property struct {
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Format      string      `json:"format,omitempty"`
	MinLength   *int        `json:"minLength,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// Group returns the compiled schema for g, or nil for an unknown group.
func (d *Document) Group(g template.Group) *Object {
	switch g {
	case template.GroupObject:
		return d.Properties.ObjectFields
	case template.GroupContact:
		return d.Properties.ContactFields
	case template.GroupLineItem:
		return d.Properties.LineItemFields
	}
	return nil
}

// Bytes marshals the document. Property maps marshal with sorted keys, so the
// same template always yields the same bytes.
func (d *Document) Bytes() ([]byte, error) {
	return json.Marshal(d)
}

// Names returns the property names in field declaration order.
func (o *Object) Names() []string {
	return append([]string(nil), o.names()...)
}

// names falls back to sorted keys for objects that were decoded rather than compiled.
func (o *Object) names() []string {
	if len(o.order) > 0 || len(o.Properties) == 0 {
		return o.order
	}
	keys := make([]string, 0, len(o.Properties))
	for k := range o.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type options struct {
	legacyMinLength bool
}

// Option tunes compilation.
type Option func(*options)

// WithLegacyMinLength adds minLength: 1 to every required field, reproducing
// the historical external schema where that constraint doubled as the
// required marker.
func WithLegacyMinLength() Option {
	return func(o *options) { o.legacyMinLength = true }
}

// Variant names the option set, for cache keys and metrics.
func Variant(opts ...Option) string {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.legacyMinLength {
		return "legacy"
	}
	return "default"
}

// Compile turns a template into its external schema. It is pure: malformed
// fields degrade through the type mapping table instead of failing.
func Compile(t *template.Template, opts ...Option) *Document {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	doc := &Document{
		Schema:      Draft07,
		Type:        "object",
		Title:       t.Name,
		Description: t.Description,
		Required:    make([]string, 0, len(template.Groups)),
	}
	for _, g := range template.Groups {
		doc.Required = append(doc.Required, string(g))
	}
	doc.Properties = RootProperties{
		ObjectFields:   compileGroup(template.GroupObject, t.ObjectFields, o),
		ContactFields:  compileGroup(template.GroupContact, t.ContactFields, o),
		LineItemFields: compileGroup(template.GroupLineItem, t.LineItemFields, o),
	}
	return doc
}

func compileGroup(g template.Group, fields []template.Field, o options) *Object {
	obj := &Object{
		Type:       "object",
		Title:      g.Title(),
		Properties: make(map[string]*Property, len(fields)),
		Required:   []string{},
	}
	required := make(map[string]bool)
	for _, f := range fields {
		if _, dup := obj.Properties[f.Name]; !dup {
			obj.order = append(obj.order, f.Name)
		}
		obj.Properties[f.Name] = compileField(f, o)
		if f.Required && !required[f.Name] {
			required[f.Name] = true
			obj.Required = append(obj.Required, f.Name)
		}
	}
	return obj
}

func compileField(f template.Field, o options) *Property {
	p := &Property{
		Type:        template.ExternalType(f.Type),
		Title:       f.Name,
		Description: f.Description,
		Format:      template.ExternalFormat(f.Validation),
		Default:     f.DefaultValue,
	}
	if f.Type == template.FieldSelect && len(f.Options) > 0 {
		p.Enum = append([]string(nil), f.Options...)
	}
	if f.Required && o.legacyMinLength {
		one := 1
		p.MinLength = &one
	}
	return p
}
