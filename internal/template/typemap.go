package template

// ExternalType maps a field type onto a JSON Schema primitive. Unknown tokens
// map to "string"; the function never fails.
func ExternalType(t FieldType) string {
	switch t {
	case FieldNumber:
		return "number"
	case FieldCheckbox:
		return "boolean"
	case FieldText, FieldTextarea, FieldDate, FieldSelect:
		return "string"
	default:
		return "string"
	}
}

// ExternalFormat maps a validation kind onto a JSON Schema format token, or ""
// when the kind carries no format (none, number, unknown).
//
// The result is independent of the field type: a number field with date
// validation still yields "date-time".
func ExternalFormat(v ValidationKind) string {
	switch v {
	case ValidationDate:
		return "date-time"
	case ValidationEmail:
		return "email"
	case ValidationPhone:
		return "phone"
	case ValidationURL:
		return "uri"
	default:
		return ""
	}
}
