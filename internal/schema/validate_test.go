package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/template"
)

func strictTemplate() *template.Template {
	return &template.Template{
		Name: "Order",
		ObjectFields: []template.Field{
			{Name: "amount", Type: template.FieldNumber, Required: true},
			{Name: "status", Type: template.FieldSelect, Options: []string{"draft", "sent"}},
			{Name: "paid", Type: template.FieldCheckbox, DefaultValue: false},
			{Name: "due", Type: template.FieldDate, Validation: template.ValidationDate},
		},
		ContactFields: []template.Field{
			{Name: "email", Validation: template.ValidationEmail, Required: true},
			{Name: "phone", Validation: template.ValidationPhone},
			{Name: "site", Validation: template.ValidationURL},
		},
		LineItemFields: []template.Field{
			{Name: "sku", Required: true},
			{Name: "qty", Type: template.FieldNumber, DefaultValue: 1.0},
		},
	}
}

func paths(err error) []string {
	ve, ok := apperr.AsValidation(err)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(ve.Issues))
	for _, is := range ve.Issues {
		out = append(out, is.Path)
	}
	return out
}

func TestValidate_AcceptsAndCoerces(t *testing.T) {
	doc := Compile(strictTemplate())
	obj, contact, items, err := doc.Validate(
		map[string]interface{}{"amount": "12.50", "status": "sent", "due": "2024-05-01"},
		map[string]interface{}{"email": "a@b.co", "phone": "+1 (555) 010-2030", "site": "https://example.com", "": ""},
		[]map[string]interface{}{{"sku": "A-1"}, {"sku": "B-2", "qty": int32(3)}},
	)
	// the empty key is undeclared
	require.Error(t, err)
	assert.Equal(t, []string{"contactVariables."}, paths(err))

	obj, contact, items, err = doc.Validate(
		map[string]interface{}{"amount": "12.50", "status": "sent", "due": "2024-05-01T10:00:00Z"},
		map[string]interface{}{"email": "a@b.co", "phone": "", "site": "https://example.com"},
		[]map[string]interface{}{{"sku": "A-1"}, {"sku": "B-2", "qty": int32(3)}},
	)
	require.NoError(t, err)
	assert.Equal(t, 12.5, obj["amount"])
	assert.Equal(t, false, obj["paid"], "absent field takes its default")
	assert.Equal(t, "", contact["phone"], "empty optional values are kept as sent")
	require.Len(t, items, 2)
	assert.Equal(t, 1.0, items[0]["qty"])
	assert.Equal(t, 3.0, items[1]["qty"])
}

func TestValidate_ReportsIssuesWithPaths(t *testing.T) {
	doc := Compile(strictTemplate())
	_, _, _, err := doc.Validate(
		map[string]interface{}{"status": "archived", "paid": "maybe", "extra": 1},
		map[string]interface{}{"email": "not-an-email", "site": "example"},
		[]map[string]interface{}{{"qty": 2}, {"sku": ""}},
	)
	require.Error(t, err)
	got := paths(err)
	for _, want := range []string{
		"objectVariables.amount",
		"objectVariables.status",
		"objectVariables.paid",
		"objectVariables.extra",
		"contactVariables.email",
		"contactVariables.site",
		"lineItemVariables[0].sku",
		"lineItemVariables[1].sku",
	} {
		assert.Contains(t, got, want)
	}
}

func TestCheckFormat(t *testing.T) {
	assert.Empty(t, checkFormat("email", "x@y.io"))
	assert.NotEmpty(t, checkFormat("email", "Name <x@y.io>"))
	assert.Empty(t, checkFormat("uri", "mailto:x@y.io"))
	assert.NotEmpty(t, checkFormat("uri", "/relative/path"))
	assert.Empty(t, checkFormat("date-time", "2024-01-02"))
	assert.NotEmpty(t, checkFormat("date-time", "02/01/2024"))
	assert.Empty(t, checkFormat("phone", "+44 20 7946 0958"))
	assert.NotEmpty(t, checkFormat("phone", "call me"))
	assert.Empty(t, checkFormat("something-else", "anything"))
}

func TestNormalizeScalar(t *testing.T) {
	for _, v := range []interface{}{int32(2), int64(2), 2, float32(2), uint(2)} {
		got, ok := NormalizeScalar(v)
		require.True(t, ok)
		assert.Equal(t, 2.0, got)
	}
	_, ok := NormalizeScalar(map[string]interface{}{})
	assert.False(t, ok)
	_, ok = NormalizeScalar(nil)
	assert.False(t, ok)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeLenient, "lenient": ModeLenient, " STRICT ": ModeStrict} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("paranoid")
	assert.Error(t, err)
}
