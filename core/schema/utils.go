package schema

// BoolPtr returns a pointer to b, for the optional flags of a FieldDefinition.
func BoolPtr(b bool) *bool {
	return &b
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
