package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldKind is the data type of a catalog field.
type FieldKind string

const (
	KindText      FieldKind = "text"
	KindEmail     FieldKind = "email"
	KindPhone     FieldKind = "phone"
	KindNumber    FieldKind = "number"
	KindDate      FieldKind = "date"
	KindDropdown  FieldKind = "dropdown"
	KindMultiline FieldKind = "multiline-text"
)

// ValidFieldKinds lists every recognized field kind.
var ValidFieldKinds = []FieldKind{
	KindText, KindEmail, KindPhone, KindNumber, KindDate, KindDropdown, KindMultiline,
}

// IsValidFieldKind reports whether kind is a recognized field kind.
func IsValidFieldKind(kind FieldKind) bool {
	for _, k := range ValidFieldKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// FieldDefinition is one reusable entry in the field catalog. User types
// compose these into submittable forms; the definition itself carries no
// required/order information.
type FieldDefinition struct {
	// FieldID is the unique identifier for the field definition
	FieldID uuid.UUID `gorm:"column:field_id;type:uuid;primaryKey" json:"field_id"`
	// Name is the machine key used in submission payloads (letters, digits, underscore)
	Name string `gorm:"column:name;type:varchar(100);not null;uniqueIndex:idx_field_definitions_name" json:"name"`
	// Label is the human-readable text shown on forms
	Label string `gorm:"column:label;type:varchar(255);not null" json:"label"`
	// Kind is the field data type: text, email, phone, number, date, dropdown, multiline-text
	Kind string `gorm:"column:kind;type:varchar(50);not null" json:"kind"`
	// Options holds the allowed values for dropdown fields; null for every other kind
	Options []string `gorm:"column:options;type:jsonb;serializer:json" json:"options,omitempty"`
	// CreatedAt is the timestamp when the field definition was created
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	// UpdatedAt is the timestamp when the field definition was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (*FieldDefinition) TableName() string {
	return "field_definitions"
}
