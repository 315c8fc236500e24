package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/regportal/registration-backend/v1/models"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the error payload: a stable code, a message, and optional
// structured details for specific error kinds.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Errors carries the per-field map for VALIDATION_FAILED
	Errors map[string]string `json:"errors,omitempty"`
	// UsedBy carries the referencing type names for FIELD_IN_USE
	UsedBy []string `json:"used_by,omitempty"`
	// CurrentStatus and ProcessedAt carry the conflict detail for ALREADY_PROCESSED
	CurrentStatus string     `json:"current_status,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

// respondWithJSON sends a JSON response with the given status code
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// If encoding fails, log it but don't try to send another response
		// as headers have already been written
		slog.Error("Failed to encode JSON response", "error", err, "statusCode", statusCode)
		return
	}
}

// respondWithError sends a JSON error response with the given status code
func respondWithError(w http.ResponseWriter, statusCode int, errorCode models.ErrorCode, message string) {
	respondWithJSON(w, statusCode, ErrorResponse{Error: ErrorBody{
		Code:    string(errorCode),
		Message: message,
	}})
}

// serviceErrorStatus maps every expected service error to its HTTP status
// and wire code. Unclassified errors are infrastructure failures.
func serviceErrorStatus(err error) (int, models.ErrorCode, bool) {
	switch {
	case errors.Is(err, models.ErrFieldNotFound):
		return http.StatusNotFound, models.ErrorCodeFieldNotFound, true
	case errors.Is(err, models.ErrTypeNotFound):
		return http.StatusNotFound, models.ErrorCodeTypeNotFound, true
	case errors.Is(err, models.ErrRequestNotFound):
		return http.StatusNotFound, models.ErrorCodeRequestNotFound, true
	case errors.Is(err, models.ErrDuplicateName):
		return http.StatusConflict, models.ErrorCodeDuplicateName, true
	case errors.Is(err, models.ErrInvalidKind):
		return http.StatusBadRequest, models.ErrorCodeInvalidKind, true
	case errors.Is(err, models.ErrInvalidFieldName), errors.Is(err, models.ErrNameRequired),
		errors.Is(err, models.ErrInvalidStatus), errors.Is(err, models.ErrNotesTooLong),
		errors.Is(err, models.ErrInvalidOrder):
		return http.StatusBadRequest, models.ErrorCodeBadRequest, true
	case errors.Is(err, models.ErrOptionsRequired):
		return http.StatusBadRequest, models.ErrorCodeOptionsRequired, true
	case errors.Is(err, models.ErrFieldNameImmutable):
		return http.StatusConflict, models.ErrorCodeFieldNameImmutable, true
	case errors.Is(err, models.ErrFieldInUse):
		return http.StatusConflict, models.ErrorCodeFieldInUse, true
	case errors.Is(err, models.ErrEmptyFieldSet):
		return http.StatusBadRequest, models.ErrorCodeEmptyFieldSet, true
	case errors.Is(err, models.ErrDuplicateOrder):
		return http.StatusBadRequest, models.ErrorCodeDuplicateOrder, true
	case errors.Is(err, models.ErrUnknownField):
		return http.StatusBadRequest, models.ErrorCodeUnknownField, true
	case errors.Is(err, models.ErrLastActiveType):
		return http.StatusConflict, models.ErrorCodeLastActiveType, true
	case errors.Is(err, models.ErrConfirmationRequired):
		return http.StatusBadRequest, models.ErrorCodeConfirmationRequired, true
	case errors.Is(err, models.ErrTypeInactive):
		return http.StatusConflict, models.ErrorCodeTypeInactive, true
	case errors.Is(err, models.ErrValidationFailed):
		return http.StatusUnprocessableEntity, models.ErrorCodeValidationFailed, true
	case errors.Is(err, models.ErrAlreadyProcessed):
		return http.StatusConflict, models.ErrorCodeAlreadyProcessed, true
	default:
		return 0, "", false
	}
}

// respondWithServiceError translates a service error into the HTTP
// response, attaching the structured detail of typed errors. Unexpected
// errors are logged with the operation name and reported as a generic
// internal failure.
func respondWithServiceError(w http.ResponseWriter, err error, operation string) {
	status, code, expected := serviceErrorStatus(err)
	if !expected {
		slog.Error("Unexpected service error", "operation", operation, "error", err)
		respondWithError(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "An unexpected error occurred")
		return
	}

	body := ErrorBody{Code: string(code), Message: err.Error()}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		body.Errors = validationErr.Errors
	}
	var inUseErr *models.FieldInUseError
	if errors.As(err, &inUseErr) {
		body.UsedBy = inUseErr.UsedBy
	}
	var processedErr *models.AlreadyProcessedError
	if errors.As(err, &processedErr) {
		body.CurrentStatus = processedErr.CurrentStatus
		body.ProcessedAt = processedErr.ProcessedAt
	}

	respondWithJSON(w, status, ErrorResponse{Error: body})
}

// decodeJSONBody decodes a request body into dst, rejecting malformed
// payloads with a BAD_REQUEST response. Returns false when decoding
// failed and a response was already written.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}
