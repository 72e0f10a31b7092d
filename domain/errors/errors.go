// Package errors provides the typed errors of the loader and object model.
// All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/reglet-dev/sensecore/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Sentinel failures of a single load attempt.
var (
	ErrEntryPointMissing = stdErrors.New("entry point not exported")
	ErrNilRoot           = stdErrors.New("entry point returned no root")
	ErrNoOpener          = stdErrors.New("no module opener accepts the path")
)

// DetailedError is an interface for error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// StatusError carries a negative status returned by an operation.
type StatusError struct {
	Op     string
	Status entities.Status
}

// FromStatus returns a *StatusError for error statuses and nil for success
// and warnings.
func FromStatus(op string, s entities.Status) error {
	if !s.IsError() {
		return nil
	}
	return &StatusError{Op: op, Status: s}
}

func (e *StatusError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: status %s (%d)", e.Op, e.Status, int32(e.Status))
	}
	return fmt.Sprintf("status %s (%d)", e.Status, int32(e.Status))
}

// Is matches another *StatusError carrying the same status.
func (e *StatusError) Is(target error) bool {
	var t *StatusError
	if !stdErrors.As(target, &t) {
		return false
	}
	return t.Status == e.Status
}

// ToErrorDetail implements DetailedError.
func (e *StatusError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "status", Code: e.Status.String(), Status: e.Status}
	switch e.Status {
	case entities.StatusExecTimeout:
		detail.IsTimeout = true
	case entities.StatusItemUnavailable, entities.StatusDataUnavailable:
		detail.IsNotFound = true
	}
	return detail
}

// StatusOf extracts the status carried by err. nil maps to StatusNoError;
// errors without a status map to StatusInitFailed.
func StatusOf(err error) entities.Status {
	if err == nil {
		return entities.StatusNoError
	}
	var se *StatusError
	if stdErrors.As(err, &se) {
		return se.Status
	}
	var ve *VersionError
	if stdErrors.As(err, &ve) {
		return entities.StatusParamUnsupported
	}
	var te *TimeoutError
	if stdErrors.As(err, &te) {
		return entities.StatusExecTimeout
	}
	return entities.StatusInitFailed
}

// LoadStage names the step of a load attempt that failed.
type LoadStage string

const (
	StageOpen    LoadStage = "open"
	StageResolve LoadStage = "resolve"
	StageCreate  LoadStage = "create"
)

// LoadError represents the failure of one discovery candidate.
type LoadError struct {
	Err    error
	Path   string
	Stage  LoadStage
	Status entities.Status
}

func (e *LoadError) Error() string {
	if e.Status.IsError() {
		return fmt.Sprintf("load %s failed at %s (%s): %v", e.Path, e.Stage, e.Status, e.Err)
	}
	return fmt.Sprintf("load %s failed at %s: %v", e.Path, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LoadError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "load", Code: string(e.Stage)}
	if e.Err != nil {
		detail.Wrapped = ToErrorDetail(e.Err)
	}
	return detail
}

// DiscoveryError is returned when every discovery step failed.
type DiscoveryError struct {
	Attempts []entities.DiscoveryAttempt
	Errs     []error
}

func (e *DiscoveryError) Error() string {
	if len(e.Attempts) == 0 {
		return "no core module found: no discovery step produced a candidate"
	}
	paths := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		paths = append(paths, fmt.Sprintf("%s=%s", a.Candidate.Step, a.Candidate.Path))
	}
	return fmt.Sprintf("no core module found after %d attempts (%s)", len(e.Attempts), strings.Join(paths, ", "))
}

// Unwrap exposes the per-attempt errors to errors.Is and errors.As.
func (e *DiscoveryError) Unwrap() []error {
	return e.Errs
}

// ToErrorDetail implements DetailedError.
func (e *DiscoveryError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "discovery", Code: "exhausted", IsNotFound: true}
	if len(e.Errs) > 0 {
		detail.Wrapped = ToErrorDetail(e.Errs[len(e.Errs)-1])
	}
	return detail
}

// VersionError reports an interface version the module cannot serve.
type VersionError struct {
	Requested entities.Version
	Provided  entities.Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("interface version %s requested, module provides %s", e.Requested, e.Provided)
}

// ToErrorDetail implements DetailedError.
func (e *VersionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "version",
		Code:    entities.StatusParamUnsupported.String(),
		Details: map[string]any{
			"requested": e.Requested.String(),
			"provided":  e.Provided.String(),
		},
	}
}

// CompositionError reports an invalid set of constituents.
type CompositionError struct {
	Reason string
	IDs    []entities.CUID
}

func (e *CompositionError) Error() string {
	ids := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("invalid composition [%s]: %s", strings.Join(ids, " "), e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *CompositionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "composition", Code: e.Reason}
}

// TimeoutError represents a timeout during an operation. Err, when set,
// is the underlying cause such as context.DeadlineExceeded.
type TimeoutError struct {
	Err       error
	Operation string
	Target    string
	Duration  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s timeout after %v (target: %s)", e.Operation, e.Duration, e.Target)
	}
	return fmt.Sprintf("%s timeout after %v", e.Operation, e.Duration)
}

func (e *TimeoutError) Timeout() bool {
	return true
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *TimeoutError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "timeout", Code: e.Operation, IsTimeout: true}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// SchemaError represents a schema generation or validation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "schema"}
}

// WireFormatError represents a failure to decode data crossing the module boundary.
type WireFormatError struct {
	Err       error
	Operation string
	Type      string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Operation, e.Type, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "internal", Code: "wire_format"}
}
