package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/regportal/registration-backend/v1/models"
	"gorm.io/gorm"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// FieldService provides business logic for the field catalog.
type FieldService struct {
	db *gorm.DB
}

// NewFieldService creates a new field service.
func NewFieldService(db *gorm.DB) *FieldService {
	return &FieldService{db: db}
}

// ListFields returns every field definition in the catalog, ordered by name.
func (s *FieldService) ListFields(ctx context.Context) ([]models.FieldDefinition, error) {
	var fields []models.FieldDefinition
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&fields).Error; err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}
	return fields, nil
}

// GetField returns one field definition by id.
func (s *FieldService) GetField(ctx context.Context, fieldID uuid.UUID) (*models.FieldDefinition, error) {
	var field models.FieldDefinition
	if err := s.db.WithContext(ctx).Where("field_id = ?", fieldID).First(&field).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrFieldNotFound, fieldID)
		}
		return nil, fmt.Errorf("failed to get field definition: %w", err)
	}
	return &field, nil
}

// CreateField adds a new definition to the catalog.
func (s *FieldService) CreateField(ctx context.Context, req models.FieldRequest) (*models.FieldDefinition, error) {
	normalized, err := normalizeFieldRequest(req)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.FieldDefinition{}).
		Where("name = ?", normalized.Name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check field name uniqueness: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: field %q", models.ErrDuplicateName, normalized.Name)
	}

	now := time.Now().UTC()
	field := models.FieldDefinition{
		FieldID:   uuid.New(),
		Name:      normalized.Name,
		Label:     normalized.Label,
		Kind:      normalized.Kind,
		Options:   normalized.Options,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&field).Error; err != nil {
		return nil, fmt.Errorf("failed to create field definition: %w", err)
	}
	return &field, nil
}

// UpdateField edits an existing definition. The machine name is immutable
// while any user type references the field, so stored payload keys keep
// their meaning.
func (s *FieldService) UpdateField(ctx context.Context, fieldID uuid.UUID, req models.FieldRequest) (*models.FieldDefinition, error) {
	normalized, err := normalizeFieldRequest(req)
	if err != nil {
		return nil, err
	}

	field, err := s.GetField(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.FieldDefinition{}).
		Where("name = ? AND field_id <> ?", normalized.Name, fieldID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check field name uniqueness: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: field %q", models.ErrDuplicateName, normalized.Name)
	}

	if normalized.Name != field.Name {
		usedBy, err := s.referencingTypeNames(s.db.WithContext(ctx), fieldID)
		if err != nil {
			return nil, err
		}
		if len(usedBy) > 0 {
			return nil, fmt.Errorf("%w: %q is referenced by %s", models.ErrFieldNameImmutable, field.Name, strings.Join(usedBy, ", "))
		}
	}

	field.Name = normalized.Name
	field.Label = normalized.Label
	field.Kind = normalized.Kind
	field.Options = normalized.Options
	field.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(field).Error; err != nil {
		return nil, fmt.Errorf("failed to update field definition: %w", err)
	}
	return field, nil
}

// DeleteField removes a definition from the catalog. While any user type
// references the field the deletion is blocked unless force is set, in
// which case the referencing rows are removed in the same transaction.
func (s *FieldService) DeleteField(ctx context.Context, fieldID uuid.UUID, force bool) error {
	if _, err := s.GetField(ctx, fieldID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		usedBy, err := s.referencingTypeNames(tx, fieldID)
		if err != nil {
			return err
		}
		if len(usedBy) > 0 {
			if !force {
				return &models.FieldInUseError{UsedBy: usedBy}
			}
			if err := tx.Where("field_id = ?", fieldID).Delete(&models.UserTypeField{}).Error; err != nil {
				return fmt.Errorf("failed to remove field references: %w", err)
			}
		}
		if err := tx.Where("field_id = ?", fieldID).Delete(&models.FieldDefinition{}).Error; err != nil {
			return fmt.Errorf("failed to delete field definition: %w", err)
		}
		return nil
	})
}

// referencingTypeNames returns the names of the user types that still
// compose the field, sorted for stable error reporting.
func (s *FieldService) referencingTypeNames(tx *gorm.DB, fieldID uuid.UUID) ([]string, error) {
	var names []string
	err := tx.Model(&models.UserTypeField{}).
		Joins("JOIN user_types ON user_types.type_id = user_type_fields.type_id").
		Where("user_type_fields.field_id = ?", fieldID).
		Order("user_types.name ASC").
		Pluck("user_types.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up field references: %w", err)
	}
	return names, nil
}

// normalizeFieldRequest validates a field request and clears options for
// non-dropdown kinds.
func normalizeFieldRequest(req models.FieldRequest) (models.FieldRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Label = strings.TrimSpace(req.Label)

	if !fieldNamePattern.MatchString(req.Name) {
		return req, fmt.Errorf("%w: %q", models.ErrInvalidFieldName, req.Name)
	}
	if !models.IsValidFieldKind(models.FieldKind(req.Kind)) {
		return req, fmt.Errorf("%w: %q", models.ErrInvalidKind, req.Kind)
	}

	if models.FieldKind(req.Kind) == models.KindDropdown {
		options := make([]string, 0, len(req.Options))
		for _, opt := range req.Options {
			if trimmed := strings.TrimSpace(opt); trimmed != "" {
				options = append(options, trimmed)
			}
		}
		if len(options) == 0 {
			return req, models.ErrOptionsRequired
		}
		req.Options = options
	} else {
		// Options only make sense for dropdowns; silently drop them elsewhere.
		req.Options = nil
	}
	return req, nil
}
