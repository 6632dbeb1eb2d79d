package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/document"
	"github.com/docschema/docschema/internal/schema"
	"github.com/docschema/docschema/internal/template"
	"github.com/docschema/docschema/pkg/metrics"
)

// Input is a candidate document payload as received from a caller.
type Input struct {
	Name              string                   `json:"name"`
	TemplateID        string                   `json:"templateId"`
	ObjectVariables   map[string]interface{}   `json:"objectVariables"`
	ContactVariables  map[string]interface{}   `json:"contactVariables"`
	LineItemVariables []map[string]interface{} `json:"lineItemVariables"`
}

// Validator turns a candidate payload into a document ready to persist.
type Validator struct {
	Mode schema.Mode
}

// Prepare runs the lenient write-path checks. It is Validator{Mode: ModeLenient}.Prepare.
func Prepare(t *template.Template, in Input) (*document.Document, error) {
	return Validator{Mode: schema.ModeLenient}.Prepare(t, in)
}

// Prepare fills absent variable groups, normalizes scalar values and checks
// the mandatory top-level fields. In strict mode the variables are also
// validated against the compiled schema of t; t may be nil only in lenient
// mode. The returned document has no id, owner or timestamps.
func (v Validator) Prepare(t *template.Template, in Input) (*document.Document, error) {
	ve := &apperr.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		ve.Add(apperr.Issue{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(in.TemplateID) == "" {
		ve.Add(apperr.Issue{Field: "templateId", Message: "is required"})
	}

	d := &document.Document{
		Name:              in.Name,
		TemplateID:        in.TemplateID,
		ObjectVariables:   scalars(in.ObjectVariables, "objectVariables", ve),
		ContactVariables:  scalars(in.ContactVariables, "contactVariables", ve),
		LineItemVariables: make([]document.Variables, 0, len(in.LineItemVariables)),
	}
	for i, li := range in.LineItemVariables {
		d.LineItemVariables = append(d.LineItemVariables, scalars(li, fmt.Sprintf("lineItemVariables[%d]", i), ve))
	}

	if v.Mode == schema.ModeStrict && len(ve.Issues) == 0 {
		if t == nil {
			ve.Add(apperr.Issue{Field: "templateId", Message: "does not reference an existing template"})
		} else {
			v.strict(t, d, ve)
		}
	}

	if err := ve.OrNil(); err != nil {
		metrics.ValidationFailures.WithLabelValues(string(v.mode())).Inc()
		return nil, err
	}
	return d, nil
}

func (v Validator) mode() schema.Mode {
	if v.Mode == "" {
		return schema.ModeLenient
	}
	return v.Mode
}

// strict validates d against t's compiled schema and replaces the variables
// with their coerced, default-filled form.
func (v Validator) strict(t *template.Template, d *document.Document, ve *apperr.ValidationError) {
	items := make([]map[string]interface{}, len(d.LineItemVariables))
	for i, li := range d.LineItemVariables {
		items[i] = li
	}
	obj, contact, coerced, err := schema.Compile(t).Validate(d.ObjectVariables, d.ContactVariables, items)
	if err != nil {
		if sve, ok := apperr.AsValidation(err); ok {
			ve.Issues = append(ve.Issues, sve.Issues...)
			return
		}
		ve.Add(apperr.Issue{Message: err.Error()})
		return
	}
	d.ObjectVariables = obj
	d.ContactVariables = contact
	for i, li := range coerced {
		d.LineItemVariables[i] = li
	}
}

// scalars copies in, normalizing numbers to float64 and reporting non-scalar
// values. A nil map yields an empty one.
func scalars(in map[string]interface{}, path string, ve *apperr.ValidationError) document.Variables {
	out := make(document.Variables, len(in))
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n, ok := schema.NormalizeScalar(in[k])
		if !ok {
			ve.Add(apperr.Issue{Path: path + "." + k, Message: "must be a string, number or boolean"})
			continue
		}
		out[k] = n
	}
	return out
}
