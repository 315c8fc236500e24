package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/regportal/registration-backend/v1/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupSQLiteTestDB creates an in-memory SQLite database for testing
func SetupSQLiteTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to SQLite test database: %v", err)
	}

	// Each pooled connection to a ":memory:" DSN opens a separate empty
	// database, so concurrent queries would otherwise see no tables.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access SQLite test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.FieldDefinition{},
		&models.UserType{},
		&models.UserTypeField{},
		&models.RegistrationRequest{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// createTestField inserts a catalog field and returns it.
func createTestField(t *testing.T, db *gorm.DB, name string, kind models.FieldKind, options ...string) *models.FieldDefinition {
	t.Helper()

	svc := NewFieldService(db)
	field, err := svc.CreateField(context.Background(), models.FieldRequest{
		Name:    name,
		Label:   models.FallbackLabel(name),
		Kind:    string(kind),
		Options: options,
	})
	if err != nil {
		t.Fatalf("Failed to create test field %q: %v", name, err)
	}
	return field
}

// createTestType inserts a user type composed of the given fields, all
// required, ordered as given.
func createTestType(t *testing.T, db *gorm.DB, name string, fieldIDs ...uuid.UUID) *models.UserType {
	t.Helper()

	inputs := make([]models.TypeFieldInput, 0, len(fieldIDs))
	for i, id := range fieldIDs {
		inputs = append(inputs, models.TypeFieldInput{FieldID: id, Required: true, Order: i + 1})
	}
	svc := NewTypeService(db)
	userType, err := svc.CreateType(context.Background(), models.TypeRequest{Name: name, Fields: inputs})
	if err != nil {
		t.Fatalf("Failed to create test type %q: %v", name, err)
	}
	return userType
}
