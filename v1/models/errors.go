package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for expected, recoverable outcomes. Services wrap these
// with fmt.Errorf("%w: ...") so handlers can classify results with
// errors.Is while keeping the underlying detail.
var (
	ErrFieldNotFound        = errors.New("field definition not found")
	ErrTypeNotFound         = errors.New("user type not found")
	ErrRequestNotFound      = errors.New("request not found")
	ErrDuplicateName        = errors.New("name is already in use")
	ErrNameRequired         = errors.New("name must not be empty")
	ErrInvalidKind          = errors.New("unrecognized field kind")
	ErrInvalidFieldName     = errors.New("field name must contain only letters, digits and underscores")
	ErrOptionsRequired      = errors.New("dropdown fields require a non-empty options list")
	ErrFieldNameImmutable   = errors.New("field name cannot change while referenced by a user type")
	ErrFieldInUse           = errors.New("field definition is referenced by a user type")
	ErrEmptyFieldSet        = errors.New("user type requires at least one field")
	ErrDuplicateOrder       = errors.New("field order values must be unique within a user type")
	ErrInvalidOrder         = errors.New("field order values must be positive")
	ErrUnknownField         = errors.New("referenced field definition does not exist")
	ErrLastActiveType       = errors.New("operation would leave no active user type")
	ErrConfirmationRequired = errors.New("deletion requires explicit confirmation")
	ErrTypeInactive         = errors.New("user type is not active")
	ErrValidationFailed     = errors.New("submission failed validation")
	ErrAlreadyProcessed     = errors.New("request has already been processed")
	ErrInvalidStatus        = errors.New("status must be approved or rejected")
	ErrNotesTooLong         = errors.New("admin notes must be at most 1000 characters")
)

// ErrorCode identifies an error category on the wire.
type ErrorCode string

const (
	ErrorCodeFieldNotFound        ErrorCode = "FIELD_NOT_FOUND"
	ErrorCodeTypeNotFound         ErrorCode = "TYPE_NOT_FOUND"
	ErrorCodeRequestNotFound      ErrorCode = "REQUEST_NOT_FOUND"
	ErrorCodeDuplicateName        ErrorCode = "DUPLICATE_NAME"
	ErrorCodeInvalidKind          ErrorCode = "INVALID_KIND"
	ErrorCodeOptionsRequired      ErrorCode = "OPTIONS_REQUIRED"
	ErrorCodeFieldNameImmutable   ErrorCode = "FIELD_NAME_IMMUTABLE"
	ErrorCodeFieldInUse           ErrorCode = "FIELD_IN_USE"
	ErrorCodeEmptyFieldSet        ErrorCode = "EMPTY_FIELD_SET"
	ErrorCodeDuplicateOrder       ErrorCode = "DUPLICATE_ORDER"
	ErrorCodeUnknownField         ErrorCode = "UNKNOWN_FIELD"
	ErrorCodeLastActiveType       ErrorCode = "LAST_ACTIVE_TYPE"
	ErrorCodeConfirmationRequired ErrorCode = "CONFIRMATION_REQUIRED"
	ErrorCodeTypeInactive         ErrorCode = "TYPE_INACTIVE"
	ErrorCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrorCodeAlreadyProcessed     ErrorCode = "ALREADY_PROCESSED"
	ErrorCodeBadRequest           ErrorCode = "BAD_REQUEST"
	ErrorCodeMethodNotAllowed     ErrorCode = "METHOD_NOT_ALLOWED"
	ErrorCodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

// ValidationError carries the complete per-field error set produced by
// validating a submission. All failing fields are reported together.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d field(s) invalid", ErrValidationFailed.Error(), len(e.Errors))
}

// Is classifies the error as ErrValidationFailed for errors.Is checks.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// FieldInUseError reports which user types still reference a field whose
// unforced deletion was blocked.
type FieldInUseError struct {
	UsedBy []string
}

func (e *FieldInUseError) Error() string {
	return fmt.Sprintf("%s: used by %s", ErrFieldInUse.Error(), strings.Join(e.UsedBy, ", "))
}

// Is classifies the error as ErrFieldInUse for errors.Is checks.
func (e *FieldInUseError) Is(target error) bool {
	return target == ErrFieldInUse
}

// AlreadyProcessedError reports the conflicting terminal state of a
// request whose transition was rejected.
type AlreadyProcessedError struct {
	CurrentStatus string
	ProcessedAt   *time.Time
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("%s: current status is %s", ErrAlreadyProcessed.Error(), e.CurrentStatus)
}

// Is classifies the error as ErrAlreadyProcessed for errors.Is checks.
func (e *AlreadyProcessedError) Is(target error) bool {
	return target == ErrAlreadyProcessed
}
