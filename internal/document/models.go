package document

import "time"

// Variables maps a field name to a scalar value (string, float64 or bool).
type Variables map[string]interface{}

// Document is a tenant-owned record of variable values created against one
// template. TemplateID is a lookup key, not an ownership link: the template may
// be deleted while documents still reference it.
type Document struct {
	ID                string      `json:"id" bson:"_id,omitempty"`
	Name              string      `json:"name" bson:"name"`
	TemplateID        string      `json:"templateId" bson:"templateId"`
	ObjectVariables   Variables   `json:"objectVariables" bson:"objectVariables"`
	ContactVariables  Variables   `json:"contactVariables" bson:"contactVariables"`
	LineItemVariables []Variables `json:"lineItemVariables" bson:"lineItemVariables"`
	CustomerID        string      `json:"customerId" bson:"customerId"`
	CreatedAt         time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// Patch is a partial document update; nil members are left untouched.
type Patch struct {
	Name              *string     `json:"name,omitempty"`
	TemplateID        *string     `json:"templateId,omitempty"`
	ObjectVariables   Variables   `json:"objectVariables,omitempty"`
	ContactVariables  Variables   `json:"contactVariables,omitempty"`
	LineItemVariables []Variables `json:"lineItemVariables,omitempty"`
}

// Apply merges p into d. Variable groups are replaced, not merged key by key.
func (p Patch) Apply(d *Document) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.TemplateID != nil {
		d.TemplateID = *p.TemplateID
	}
	if p.ObjectVariables != nil {
		d.ObjectVariables = p.ObjectVariables
	}
	if p.ContactVariables != nil {
		d.ContactVariables = p.ContactVariables
	}
	if p.LineItemVariables != nil {
		d.LineItemVariables = p.LineItemVariables
	}
}

// Clone returns a copy that shares no maps or slices with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.ObjectVariables = d.ObjectVariables.clone()
	c.ContactVariables = d.ContactVariables.clone()
	if d.LineItemVariables != nil {
		c.LineItemVariables = make([]Variables, len(d.LineItemVariables))
		for i, li := range d.LineItemVariables {
			c.LineItemVariables[i] = li.clone()
		}
	}
	return &c
}

func (v Variables) clone() Variables {
	if v == nil {
		return nil
	}
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
