package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/regportal/registration-backend/v1/models"
	"gorm.io/gorm"
)

// TypeService provides business logic for user types and their field
// composition. It is the single choke point for the last-active invariant:
// the system must always keep at least one active type.
type TypeService struct {
	db *gorm.DB
}

// NewTypeService creates a new type service.
func NewTypeService(db *gorm.DB) *TypeService {
	return &TypeService{db: db}
}

// ListActiveTypes returns the id and name of every active user type.
func (s *TypeService) ListActiveTypes(ctx context.Context) ([]models.TypeSummary, error) {
	var types []models.UserType
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list active user types: %w", err)
	}
	summaries := make([]models.TypeSummary, 0, len(types))
	for _, t := range types {
		summaries = append(summaries, models.TypeSummary{TypeID: t.TypeID, Name: t.Name})
	}
	return summaries, nil
}

// ListTypes returns every user type with its composed fields, for the
// admin surface.
func (s *TypeService) ListTypes(ctx context.Context) ([]models.UserType, error) {
	var types []models.UserType
	err := s.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Fields.Field").
		Order("name ASC").
		Find(&types).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user types: %w", err)
	}
	return types, nil
}

// GetType returns one user type with its fields, ordered by position.
func (s *TypeService) GetType(ctx context.Context, typeID uuid.UUID) (*models.UserType, error) {
	var userType models.UserType
	err := s.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Fields.Field").
		Where("type_id = ?", typeID).
		First(&userType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrTypeNotFound, typeID)
		}
		return nil, fmt.Errorf("failed to get user type: %w", err)
	}
	return &userType, nil
}

// GetTypeFields returns the ordered public form description for an active
// user type.
func (s *TypeService) GetTypeFields(ctx context.Context, typeID uuid.UUID) ([]models.TypeFieldDescriptor, error) {
	userType, err := s.GetType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if !userType.Active {
		return nil, fmt.Errorf("%w: %s", models.ErrTypeInactive, userType.Name)
	}
	descriptors := make([]models.TypeFieldDescriptor, 0, len(userType.Fields))
	for _, tf := range userType.Fields {
		descriptors = append(descriptors, models.TypeFieldDescriptor{
			FieldID:  tf.FieldID,
			Name:     tf.Field.Name,
			Label:    tf.Field.Label,
			Kind:     tf.Field.Kind,
			Options:  tf.Field.Options,
			Required: tf.Required,
		})
	}
	return descriptors, nil
}

// CreateType creates a user type and its field rows atomically. New types
// start active.
func (s *TypeService) CreateType(ctx context.Context, req models.TypeRequest) (*models.UserType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: user type name", models.ErrNameRequired)
	}
	if err := validateTypeFields(req.Fields); err != nil {
		return nil, err
	}

	typeID := uuid.New()
	now := time.Now().UTC()
	userType := models.UserType{
		TypeID:    typeID,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkNameUnique(tx, name, nil); err != nil {
			return err
		}
		if err := s.checkFieldsExist(tx, req.Fields); err != nil {
			return err
		}
		if err := tx.Create(&userType).Error; err != nil {
			return fmt.Errorf("failed to create user type: %w", err)
		}
		rows := buildTypeFieldRows(typeID, req.Fields)
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create type fields: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetType(ctx, typeID)
}

// UpdateType renames a user type and atomically replaces its entire field
// set. There is never a partial merge: the old rows are deleted and the
// new set inserted in one transaction.
func (s *TypeService) UpdateType(ctx context.Context, typeID uuid.UUID, req models.TypeRequest) (*models.UserType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: user type name", models.ErrNameRequired)
	}
	if err := validateTypeFields(req.Fields); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userType models.UserType
		if err := tx.Where("type_id = ?", typeID).First(&userType).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", models.ErrTypeNotFound, typeID)
			}
			return fmt.Errorf("failed to get user type: %w", err)
		}
		if err := s.checkNameUnique(tx, name, &typeID); err != nil {
			return err
		}
		if err := s.checkFieldsExist(tx, req.Fields); err != nil {
			return err
		}

		userType.Name = name
		userType.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&userType).Error; err != nil {
			return fmt.Errorf("failed to update user type: %w", err)
		}
		if err := tx.Where("type_id = ?", typeID).Delete(&models.UserTypeField{}).Error; err != nil {
			return fmt.Errorf("failed to replace type fields: %w", err)
		}
		rows := buildTypeFieldRows(typeID, req.Fields)
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create type fields: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetType(ctx, typeID)
}

// SetActive activates or deactivates a user type. Deactivation is refused
// when it would leave zero active types; activation is never guarded.
func (s *TypeService) SetActive(ctx context.Context, typeID uuid.UUID, active bool) (*models.UserType, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userType models.UserType
		if err := tx.Where("type_id = ?", typeID).First(&userType).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", models.ErrTypeNotFound, typeID)
			}
			return fmt.Errorf("failed to get user type: %w", err)
		}
		if !active && userType.Active {
			if err := s.checkNotLastActive(tx, typeID); err != nil {
				return err
			}
		}
		userType.Active = active
		userType.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&userType).Error; err != nil {
			return fmt.Errorf("failed to update user type: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetType(ctx, typeID)
}

// DeleteType soft deletes a user type: it is deactivated and its field
// rows removed, while every historical request referencing it is left
// untouched. The caller must pass confirmed; the returned count reports
// how many existing requests point at the type.
func (s *TypeService) DeleteType(ctx context.Context, typeID uuid.UUID, confirmed bool) (*models.DeleteTypeResult, error) {
	if !confirmed {
		return nil, models.ErrConfirmationRequired
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userType models.UserType
		if err := tx.Where("type_id = ?", typeID).First(&userType).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", models.ErrTypeNotFound, typeID)
			}
			return fmt.Errorf("failed to get user type: %w", err)
		}
		if userType.Active {
			if err := s.checkNotLastActive(tx, typeID); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.RegistrationRequest{}).
			Where("type_id = ?", typeID).Count(&affected).Error; err != nil {
			return fmt.Errorf("failed to count affected requests: %w", err)
		}

		userType.Active = false
		userType.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&userType).Error; err != nil {
			return fmt.Errorf("failed to deactivate user type: %w", err)
		}
		if err := tx.Where("type_id = ?", typeID).Delete(&models.UserTypeField{}).Error; err != nil {
			return fmt.Errorf("failed to remove type fields: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.DeleteTypeResult{TypeID: typeID, AffectedRequests: affected}, nil
}

// GetDeletionImpact reports how a type deletion would land: request counts
// against the type and whether it is the last active one. Read-only.
func (s *TypeService) GetDeletionImpact(ctx context.Context, typeID uuid.UUID) (*models.DeletionImpact, error) {
	var userType models.UserType
	if err := s.db.WithContext(ctx).Where("type_id = ?", typeID).First(&userType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrTypeNotFound, typeID)
		}
		return nil, fmt.Errorf("failed to get user type: %w", err)
	}

	impact := models.DeletionImpact{TypeID: userType.TypeID, Name: userType.Name}
	db := s.db.WithContext(ctx).Model(&models.RegistrationRequest{})
	if err := db.Where("type_id = ?", typeID).Count(&impact.TotalRequests).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.RegistrationRequest{}).
		Where("type_id = ? AND status = ?", typeID, string(models.StatusPending)).
		Count(&impact.PendingRequests).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	if err := s.db.WithContext(ctx).Model(&models.RegistrationRequest{}).
		Where("type_id = ? AND created_at >= ?", typeID, cutoff).
		Count(&impact.RecentRequests).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent requests: %w", err)
	}

	if userType.Active {
		var otherActive int64
		if err := s.db.WithContext(ctx).Model(&models.UserType{}).
			Where("active = ? AND type_id <> ?", true, typeID).
			Count(&otherActive).Error; err != nil {
			return nil, fmt.Errorf("failed to count active user types: %w", err)
		}
		impact.LastActiveType = otherActive == 0
	}
	return &impact, nil
}

// checkNameUnique enforces case-insensitive name uniqueness across all
// user types, active or not. excludeID skips the type being updated.
func (s *TypeService) checkNameUnique(tx *gorm.DB, name string, excludeID *uuid.UUID) error {
	query := tx.Model(&models.UserType{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		query = query.Where("type_id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check type name uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: type %q", models.ErrDuplicateName, name)
	}
	return nil
}

// checkFieldsExist verifies every referenced field id against the catalog.
func (s *TypeService) checkFieldsExist(tx *gorm.DB, fields []models.TypeFieldInput) error {
	ids := make([]uuid.UUID, 0, len(fields))
	for _, f := range fields {
		ids = append(ids, f.FieldID)
	}
	var existing []uuid.UUID
	if err := tx.Model(&models.FieldDefinition{}).
		Where("field_id IN ?", ids).
		Pluck("field_id", &existing).Error; err != nil {
		return fmt.Errorf("failed to verify field references: %w", err)
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	for _, f := range fields {
		if !known[f.FieldID] {
			return fmt.Errorf("%w: %s", models.ErrUnknownField, f.FieldID)
		}
	}
	return nil
}

// checkNotLastActive fails when no other active type would remain.
func (s *TypeService) checkNotLastActive(tx *gorm.DB, typeID uuid.UUID) error {
	var otherActive int64
	if err := tx.Model(&models.UserType{}).
		Where("active = ? AND type_id <> ?", true, typeID).
		Count(&otherActive).Error; err != nil {
		return fmt.Errorf("failed to count active user types: %w", err)
	}
	if otherActive == 0 {
		return models.ErrLastActiveType
	}
	return nil
}

// validateTypeFields checks the composition rules that need no database
// access: non-empty set, positive orders, no duplicate order, no duplicate
// field reference.
func validateTypeFields(fields []models.TypeFieldInput) error {
	if len(fields) == 0 {
		return models.ErrEmptyFieldSet
	}
	orders := make(map[int]bool, len(fields))
	seen := make(map[uuid.UUID]bool, len(fields))
	for _, f := range fields {
		if f.Order <= 0 {
			return fmt.Errorf("%w: got %d", models.ErrInvalidOrder, f.Order)
		}
		if orders[f.Order] {
			return fmt.Errorf("%w: order %d", models.ErrDuplicateOrder, f.Order)
		}
		orders[f.Order] = true
		if seen[f.FieldID] {
			return fmt.Errorf("%w: field %s listed twice", models.ErrDuplicateOrder, f.FieldID)
		}
		seen[f.FieldID] = true
	}
	return nil
}

// buildTypeFieldRows materializes association rows in order.
func buildTypeFieldRows(typeID uuid.UUID, fields []models.TypeFieldInput) []models.UserTypeField {
	sorted := make([]models.TypeFieldInput, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	rows := make([]models.UserTypeField, 0, len(sorted))
	for _, f := range sorted {
		rows = append(rows, models.UserTypeField{
			TypeID:    typeID,
			FieldID:   f.FieldID,
			Required:  f.Required,
			SortOrder: f.Order,
		})
	}
	return rows
}
