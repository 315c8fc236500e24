package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldRequest defines the structure for creating or updating a field
// definition.
type FieldRequest struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Options []string `json:"options,omitempty"`
}

// TypeFieldInput is one field entry in a create/update user type request.
type TypeFieldInput struct {
	FieldID  uuid.UUID `json:"field_id"`
	Required bool      `json:"required"`
	Order    int       `json:"order"`
}

// TypeRequest defines the structure for creating or updating a user type.
type TypeRequest struct {
	Name   string           `json:"name"`
	Fields []TypeFieldInput `json:"fields"`
}

// SetActiveRequest defines the structure for activating or deactivating a
// user type.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// TypeSummary is the public listing entry for one active user type.
type TypeSummary struct {
	TypeID uuid.UUID `json:"type_id"`
	Name   string    `json:"name"`
}

// TypeFieldDescriptor is one entry of the ordered public form description
// for a user type.
type TypeFieldDescriptor struct {
	FieldID  uuid.UUID `json:"field_id"`
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     string    `json:"kind"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required"`
}

// DeletionImpact is the advisory report produced before deleting a user
// type. It makes no state change.
type DeletionImpact struct {
	TypeID          uuid.UUID `json:"type_id"`
	Name            string    `json:"name"`
	TotalRequests   int64     `json:"total_requests"`
	PendingRequests int64     `json:"pending_requests"`
	RecentRequests  int64     `json:"recent_requests"`
	LastActiveType  bool      `json:"last_active_type"`
}

// DeleteTypeResult reports how many historical requests reference a
// soft-deleted type. The requests themselves are untouched.
type DeleteTypeResult struct {
	TypeID           uuid.UUID `json:"type_id"`
	AffectedRequests int64     `json:"affected_requests"`
}

// SubmitRequest defines the structure for a public submission.
type SubmitRequest struct {
	TypeID  uuid.UUID `json:"type_id"`
	Payload Payload   `json:"payload"`
}

// SubmitResponse is returned for an accepted submission.
type SubmitResponse struct {
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
}

// TransitionRequest defines the structure for the admin approve/reject
// action.
type TransitionRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// RequestFilters narrows the admin request listing.
type RequestFilters struct {
	Status string
	TypeID *uuid.UUID
}

// RequestListItem is one row of the admin request listing.
type RequestListItem struct {
	RequestID   uuid.UUID  `json:"request_id"`
	TypeID      uuid.UUID  `json:"type_id"`
	TypeName    string     `json:"type_name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// RequestListResponse bundles the filtered rows with counts by status.
type RequestListResponse struct {
	Requests []RequestListItem `json:"requests"`
	Counts   map[string]int64  `json:"counts"`
}

// SubmittedValue is one payload entry of the admin request detail view,
// joined against the current schema where possible.
type SubmittedValue struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Kind  string `json:"kind,omitempty"`
	Value string `json:"value"`
}

// RequestDetail is the full admin view of one request.
type RequestDetail struct {
	RequestID   uuid.UUID        `json:"request_id"`
	TypeID      uuid.UUID        `json:"type_id"`
	TypeName    string           `json:"type_name"`
	Status      string           `json:"status"`
	AdminNotes  *string          `json:"admin_notes,omitempty"`
	Values      []SubmittedValue `json:"values"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
}

// FallbackTypeName is displayed for requests whose user type row no
// longer resolves.
const FallbackTypeName = "Unknown type"

// FallbackLabel derives a display label from a raw payload key, for
// values whose field name no longer exists in the current schema.
func FallbackLabel(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	return cases.Title(language.English).String(label)
}
