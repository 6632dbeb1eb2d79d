package template

import "time"

// FieldType is the declared input type of a template field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldTextarea FieldType = "textarea"
)

// FieldTypes lists the declared field types in display order.
var FieldTypes = []FieldType{FieldText, FieldNumber, FieldDate, FieldSelect, FieldCheckbox, FieldTextarea}

// Known reports whether t is one of the declared field types.
func (t FieldType) Known() bool {
	for _, k := range FieldTypes {
		if k == t {
			return true
		}
	}
	return false
}

// ValidationKind is a semantic format hint, independent of FieldType.
type ValidationKind string

const (
	ValidationNone   ValidationKind = "none"
	ValidationEmail  ValidationKind = "email"
	ValidationPhone  ValidationKind = "phone"
	ValidationDate   ValidationKind = "date"
	ValidationNumber ValidationKind = "number"
	ValidationURL    ValidationKind = "url"
)

var ValidationKinds = []ValidationKind{ValidationNone, ValidationEmail, ValidationPhone, ValidationDate, ValidationNumber, ValidationURL}

func (v ValidationKind) Known() bool {
	for _, k := range ValidationKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Field is one typed field inside a template group.
type Field struct {
	Name     string    `json:"name" bson:"name" yaml:"name"`
	Type     FieldType `json:"type" bson:"type" yaml:"type"`
	Required bool      `json:"required" bson:"required" yaml:"required"`
	Options  []string  `json:"options" bson:"options" yaml:"options"`
	// DefaultValue is nil when not provided; an empty string is a real default.
	DefaultValue interface{}    `json:"defaultValue,omitempty" bson:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Validation   ValidationKind `json:"validation" bson:"validation" yaml:"validation"`
	Placeholder  string         `json:"placeholder,omitempty" bson:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description  string         `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
}

// Group names one of the three field groups. The order of Groups is part of
// the external contract (root schema required list, enumeration order).
type Group string

const (
	GroupObject   Group = "objectFields"
	GroupContact  Group = "contactFields"
	GroupLineItem Group = "lineItemFields"
)

var Groups = []Group{GroupObject, GroupContact, GroupLineItem}

// Title is the human-readable group title used in compiled schemas.
func (g Group) Title() string {
	switch g {
	case GroupObject:
		return "Object Fields"
	case GroupContact:
		return "Contact Fields"
	case GroupLineItem:
		return "Line Item Fields"
	}
	return string(g)
}

// Template is a tenant-owned, named collection of three field groups.
type Template struct {
	ID             string    `json:"id" bson:"_id,omitempty" yaml:"id,omitempty"`
	Name           string    `json:"name" bson:"name" yaml:"name"`
	Description    string    `json:"description" bson:"description" yaml:"description,omitempty"`
	ConnectionID   string    `json:"connectionId,omitempty" bson:"connectionId,omitempty" yaml:"connectionId,omitempty"`
	ObjectFields   []Field   `json:"objectFields" bson:"objectFields" yaml:"objectFields"`
	ContactFields  []Field   `json:"contactFields" bson:"contactFields" yaml:"contactFields"`
	LineItemFields []Field   `json:"lineItemFields" bson:"lineItemFields" yaml:"lineItemFields"`
	CustomerID     string    `json:"customerId" bson:"customerId" yaml:"-"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Fields returns the fields of group g.
func (t *Template) Fields(g Group) []Field {
	switch g {
	case GroupObject:
		return t.ObjectFields
	case GroupContact:
		return t.ContactFields
	case GroupLineItem:
		return t.LineItemFields
	}
	return nil
}

// Patch is a partial template update. Nil pointers and nil slices leave the
// stored value untouched; a non-nil slice (even empty) replaces the group.
type Patch struct {
	Name           *string `json:"name,omitempty" yaml:"name,omitempty"`
	Description    *string `json:"description,omitempty" yaml:"description,omitempty"`
	ConnectionID   *string `json:"connectionId,omitempty" yaml:"connectionId,omitempty"`
	ObjectFields   []Field `json:"objectFields,omitempty" yaml:"objectFields,omitempty"`
	ContactFields  []Field `json:"contactFields,omitempty" yaml:"contactFields,omitempty"`
	LineItemFields []Field `json:"lineItemFields,omitempty" yaml:"lineItemFields,omitempty"`
}

// Apply merges p into t and normalizes any replaced group. It does not touch
// timestamps or ownership.
func (p Patch) Apply(t *Template) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ConnectionID != nil {
		t.ConnectionID = *p.ConnectionID
	}
	if p.ObjectFields != nil {
		t.ObjectFields = NormalizeFields(p.ObjectFields)
	}
	if p.ContactFields != nil {
		t.ContactFields = NormalizeFields(p.ContactFields)
	}
	if p.LineItemFields != nil {
		t.LineItemFields = NormalizeFields(p.LineItemFields)
	}
}

// Clone returns a deep copy of t; repositories hand out clones so callers
// cannot mutate stored state.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	c := *t
	c.ObjectFields = cloneFields(t.ObjectFields)
	c.ContactFields = cloneFields(t.ContactFields)
	c.LineItemFields = cloneFields(t.LineItemFields)
	return &c
}

func cloneFields(in []Field) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, len(in))
	for i, f := range in {
		f.Options = append([]string(nil), f.Options...)
		if f.Options == nil {
			f.Options = []string{}
		}
		out[i] = f
	}
	return out
}
