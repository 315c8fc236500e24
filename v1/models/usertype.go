package models

import (
	"time"

	"github.com/google/uuid"
)

// UserType is a named composition of catalog fields defining one
// submittable form. Its name is unique case-insensitively across all
// types, active or not.
type UserType struct {
	// TypeID is the unique identifier for the user type
	TypeID uuid.UUID `gorm:"column:type_id;type:uuid;primaryKey" json:"type_id"`
	// Name is the unique (case-insensitive) display name of the type
	Name string `gorm:"column:name;type:varchar(100);not null;uniqueIndex:idx_user_types_name" json:"name"`
	// Active controls whether the type accepts public submissions.
	// Soft deletion clears this flag instead of removing the row so
	// historical requests keep a resolvable type id.
	Active bool `gorm:"column:active;not null;default:true;index:idx_user_types_active" json:"active"`
	// Fields is the ordered set of catalog fields composed into this type
	Fields []UserTypeField `gorm:"foreignKey:TypeID;references:TypeID" json:"fields"`
	// CreatedAt is the timestamp when the user type was created
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	// UpdatedAt is the timestamp when the user type was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (*UserType) TableName() string {
	return "user_types"
}

// UserTypeField links a user type to one catalog field with the
// type-specific required flag and position. A type owns its rows
// exclusively; updates replace the whole set atomically.
type UserTypeField struct {
	ID uint `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// TypeID references the owning user type
	TypeID uuid.UUID `gorm:"column:type_id;type:uuid;not null;index:idx_user_type_fields_type;uniqueIndex:idx_user_type_fields_order,composite:type_order;uniqueIndex:idx_user_type_fields_field,composite:type_field" json:"type_id"`
	// FieldID references the catalog field definition
	FieldID uuid.UUID `gorm:"column:field_id;type:uuid;not null;index:idx_user_type_fields_fld;uniqueIndex:idx_user_type_fields_field,composite:type_field" json:"field_id"`
	// Required marks the field as mandatory on submission
	Required bool `gorm:"column:required;not null" json:"required"`
	// SortOrder is the position of the field within the form, unique per type
	SortOrder int `gorm:"column:sort_order;not null;uniqueIndex:idx_user_type_fields_order,composite:type_order" json:"sort_order"`

	// Field is the joined catalog definition
	Field FieldDefinition `gorm:"foreignKey:FieldID;references:FieldID" json:"field"`
}

// TableName specifies the table name for GORM
func (*UserTypeField) TableName() string {
	return "user_type_fields"
}
