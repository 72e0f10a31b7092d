package hostfuncs

import (
	"encoding/json"

	"github.com/reglet-dev/sensecore/domain/entities"
)

// ErrorResponse is the JSON error a host function returns instead of
// trapping the guest.
type ErrorResponse struct {
	// Error is a machine readable kind such as "VALIDATION_ERROR".
	Error string `json:"error"`

	Message string `json:"message"`

	// Code is an HTTP-like class: 400, 404 or 500. Status errors carry
	// the negative status value instead.
	Code int `json:"code"`
}

// ToJSON renders e. It returns nil only if encoding fails.
func (e ErrorResponse) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// NewValidationError reports a request the handler could not decode.
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{Error: "VALIDATION_ERROR", Message: message, Code: 400}
}

// NewNotFoundError reports an unknown host function.
func NewNotFoundError(name string) ErrorResponse {
	return ErrorResponse{Error: "NOT_FOUND", Message: "unknown host function: " + name, Code: 404}
}

// NewInternalError reports an unexpected failure.
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{Error: "INTERNAL_ERROR", Message: message, Code: 500}
}

// NewStatusError reports a failed operation by its status code.
func NewStatusError(s entities.Status) ErrorResponse {
	return ErrorResponse{Error: "STATUS_ERROR", Message: s.String(), Code: int(s)}
}

// NewPanicError reports a recovered panic.
func NewPanicError(panicValue any) ErrorResponse {
	msg := "panic recovered"
	switch v := panicValue.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	}
	return NewInternalError("panic: " + msg)
}
