package entities

// ValidationResult is the outcome of validating a dispatch document.
type ValidationResult struct {
	Errors []ValidationError
	Valid  bool
}

// ValidationError describes one offending field.
type ValidationError struct {
	Field   string
	Message string
}

// Add records a failure and marks the result invalid.
func (r *ValidationResult) Add(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
	r.Valid = false
}
