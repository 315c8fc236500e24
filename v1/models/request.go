package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a registration request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// IsTerminal reports whether the status permits no further transition.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsValidTransitionTarget reports whether s is a status an administrator
// may move a pending request to.
func IsValidTransitionTarget(s RequestStatus) bool {
	return s == StatusApproved || s == StatusRejected
}

// RegistrationRequest is one public submission. It is bound at creation
// time to the user type it was submitted against and keeps a fully-owned
// copy of the payload; it never re-reads the schema. TypeID is not a live
// foreign key: the referenced type may later be deactivated or soft
// deleted without touching this row.
type RegistrationRequest struct {
	// RequestID is the unique identifier for the request
	RequestID uuid.UUID `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	// TypeID identifies the user type the request was submitted against
	TypeID uuid.UUID `gorm:"column:type_id;type:uuid;not null;index:idx_registration_requests_type" json:"type_id"`
	// Payload is the submitted key/value document, keyed by field name
	Payload Payload `gorm:"column:payload;type:jsonb;serializer:json;not null" json:"payload"`
	// Status is the lifecycle state: pending, approved, rejected
	Status string `gorm:"column:status;type:varchar(20);not null;index:idx_registration_requests_status" json:"status"`
	// AdminNotes is the optional note recorded on the terminal transition
	AdminNotes *string `gorm:"column:admin_notes;type:varchar(1000)" json:"admin_notes,omitempty"`
	// CreatedAt is the timestamp when the request was submitted
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_registration_requests_created" json:"created_at"`
	// UpdatedAt is the timestamp when the request was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
	// ProcessedAt is set exactly once, on the pending to terminal transition
	ProcessedAt *time.Time `gorm:"column:processed_at" json:"processed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (*RegistrationRequest) TableName() string {
	return "registration_requests"
}

// ContactInfo is the best-effort contact data extracted from a request
// payload for notification delivery. Either channel may be nil.
type ContactInfo struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}
