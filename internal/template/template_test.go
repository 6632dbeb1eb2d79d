package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalTypeTotality(t *testing.T) {
	want := map[FieldType]string{
		FieldText:     "string",
		FieldTextarea: "string",
		FieldDate:     "string",
		FieldSelect:   "string",
		FieldNumber:   "number",
		FieldCheckbox: "boolean",
	}
	for ft, typ := range want {
		assert.Equal(t, typ, ExternalType(ft), "type %s", ft)
	}
	for _, unknown := range []FieldType{"", "currency", "TEXT", "multi-select"} {
		assert.Equal(t, "string", ExternalType(unknown), "unknown token %q", unknown)
	}
}

func TestExternalFormat(t *testing.T) {
	assert.Equal(t, "date-time", ExternalFormat(ValidationDate))
	assert.Equal(t, "email", ExternalFormat(ValidationEmail))
	assert.Equal(t, "phone", ExternalFormat(ValidationPhone))
	assert.Equal(t, "uri", ExternalFormat(ValidationURL))
	assert.Equal(t, "", ExternalFormat(ValidationNone))
	assert.Equal(t, "", ExternalFormat(ValidationNumber))
	assert.Equal(t, "", ExternalFormat("iban"))
}

func TestNormalizeFieldsDefaults(t *testing.T) {
	got := NormalizeFields([]Field{{Name: "a"}, {Name: "b", Type: "weird", Validation: "email", Options: []string{"x"}}})
	require.Len(t, got, 2)
	assert.Equal(t, FieldText, got[0].Type)
	assert.Equal(t, ValidationNone, got[0].Validation)
	assert.NotNil(t, got[0].Options)
	assert.Nil(t, got[0].DefaultValue, "absent default must stay absent")
	assert.Equal(t, FieldType("weird"), got[1].Type)
	assert.Equal(t, ValidationEmail, got[1].Validation)

	assert.NotNil(t, NormalizeFields(nil))
	assert.Len(t, NormalizeFields(nil), 0)
}

func TestPatchApply(t *testing.T) {
	tpl := &Template{
		Name:          "Invoice",
		Description:   "keep me",
		ObjectFields:  []Field{{Name: "amount", Type: FieldNumber}},
		ContactFields: []Field{{Name: "email", Type: FieldText}},
	}
	name := "Invoice v2"
	Patch{Name: &name, ContactFields: []Field{}, LineItemFields: []Field{{Name: "sku"}}}.Apply(tpl)

	assert.Equal(t, "Invoice v2", tpl.Name)
	assert.Equal(t, "keep me", tpl.Description)
	assert.Len(t, tpl.ObjectFields, 1, "absent group is untouched")
	assert.NotNil(t, tpl.ContactFields)
	assert.Len(t, tpl.ContactFields, 0, "explicit empty group replaces")
	require.Len(t, tpl.LineItemFields, 1)
	assert.Equal(t, FieldText, tpl.LineItemFields[0].Type, "replaced group is normalized")
}

func TestLint(t *testing.T) {
	tpl := &Template{
		ObjectFields: []Field{
			{Name: "status", Type: FieldSelect},
			{Name: "status", Type: FieldText, Options: []string{"a"}},
			{Name: "", Type: FieldNumber, DefaultValue: "abc"},
		},
		ContactFields: []Field{{Name: "status", Type: FieldCheckbox, DefaultValue: true, Validation: "iban"}},
	}
	warnings := Lint(tpl)
	msgs := make([]string, 0, len(warnings))
	for _, w := range warnings {
		msgs = append(msgs, w.String())
	}
	assert.Contains(t, msgs, `objectFields[0] "status": select field has no options`)
	assert.Contains(t, msgs, `objectFields[1] "status": duplicate name in group`)
	assert.Contains(t, msgs, `objectFields[1] "status": options are only used by select fields`)
	assert.Contains(t, msgs, `objectFields[2] "": name is empty`)
	assert.Contains(t, msgs, `objectFields[2] "": default value abc is not representable as number`)
	assert.Contains(t, msgs, `contactFields[0] "status": unknown validation "iban", ignored`)
	for _, m := range msgs {
		assert.NotContains(t, m, "contactFields[0] \"status\": duplicate", "name scopes are per group")
	}
}

func TestRepresentable(t *testing.T) {
	assert.True(t, Representable(FieldNumber, 3.5))
	assert.True(t, Representable(FieldNumber, "42"))
	assert.False(t, Representable(FieldNumber, true))
	assert.True(t, Representable(FieldCheckbox, false))
	assert.True(t, Representable(FieldCheckbox, "true"))
	assert.False(t, Representable(FieldCheckbox, 1.0))
	assert.True(t, Representable(FieldText, "x"))
	assert.False(t, Representable(FieldText, []string{"x"}))
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Template{ObjectFields: []Field{{Name: "s", Options: []string{"a"}}}}
	c := orig.Clone()
	c.ObjectFields[0].Options[0] = "changed"
	c.ObjectFields[0].Name = "t"
	assert.Equal(t, "a", orig.ObjectFields[0].Options[0])
	assert.Equal(t, "s", orig.ObjectFields[0].Name)
}
