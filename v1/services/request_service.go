package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/regportal/registration-backend/v1/models"
	"github.com/regportal/registration-backend/v1/notify"
	"gorm.io/gorm"
)

// RequestService provides business logic for the request lifecycle:
// public submission into pending, and the single admin transition to a
// terminal state with best-effort notification afterwards.
type RequestService struct {
	db       *gorm.DB
	notifier notify.Notifier

	// dispatches tracks in-flight notification goroutines so shutdown
	// and tests can wait for them.
	dispatches sync.WaitGroup
}

// NewRequestService creates a new request service.
func NewRequestService(db *gorm.DB, notifier notify.Notifier) *RequestService {
	return &RequestService{db: db, notifier: notifier}
}

// Submit validates a public submission against the active schema of the
// chosen type and persists it as a pending request. Nothing is persisted
// on validation failure.
func (s *RequestService) Submit(ctx context.Context, typeID uuid.UUID, payload models.Payload) (*models.RegistrationRequest, error) {
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
	if errs := ValidateSubmission(descriptors, payload); errs != nil {
		return nil, &models.ValidationError{Errors: errs}
	}

	if payload == nil {
		payload = models.Payload{}
	}
	now := time.Now().UTC()
	request := models.RegistrationRequest{
		RequestID: uuid.New(),
		TypeID:    typeID,
		Payload:   payload,
		Status:    string(models.StatusPending),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return &request, nil
}

// Transition moves a pending request to approved or rejected, exactly
// once. The update is conditional on the row still being pending, so
// racing transitions on the same request resolve to one winner; the loser
// observes AlreadyProcessed. After the transition is committed a
// notification is dispatched asynchronously; its outcome never affects
// the returned result.
func (s *RequestService) Transition(ctx context.Context, requestID uuid.UUID, newStatus models.RequestStatus, notes *string) (*models.RegistrationRequest, error) {
	if !models.IsValidTransitionTarget(newStatus) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, newStatus)
	}
	if notes != nil && len(*notes) > 1000 {
		return nil, models.ErrNotesTooLong
	}

	var request models.RegistrationRequest
	if err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrRequestNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request.Status != string(models.StatusPending) {
		return nil, &models.AlreadyProcessedError{CurrentStatus: request.Status, ProcessedAt: request.ProcessedAt}
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&models.RegistrationRequest{}).
		Where("request_id = ? AND status = ?", requestID, string(models.StatusPending)).
		Updates(map[string]interface{}{
			"status":       string(newStatus),
			"admin_notes":  notes,
			"processed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to transition request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race: another transition committed first.
		if err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&request).Error; err != nil {
			return nil, fmt.Errorf("failed to re-read request: %w", err)
		}
		return nil, &models.AlreadyProcessedError{CurrentStatus: request.Status, ProcessedAt: request.ProcessedAt}
	}

	request.Status = string(newStatus)
	request.AdminNotes = notes
	request.ProcessedAt = &now
	request.UpdatedAt = now

	s.dispatchNotification(request)
	return &request, nil
}

// dispatchNotification hands the processed request to the notification
// sink on a background context, after the transition is durable. Failures
// are logged and never propagated.
func (s *RequestService) dispatchNotification(request models.RegistrationRequest) {
	s.dispatches.Add(1)
	go func() {
		defer s.dispatches.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		typeName, kinds := s.typeMetadata(ctx, request.TypeID)
		event := notify.Event{
			RequestID: request.RequestID,
			TypeName:  typeName,
			Status:    request.Status,
			Notes:     request.AdminNotes,
			Contact:   ExtractContact(request.Payload, kinds),
			Payload:   request.Payload,
		}
		if err := s.notifier.Notify(ctx, event); err != nil {
			slog.Error("Notification delivery failed",
				"operation", models.OpNotify,
				"requestId", request.RequestID,
				"status", request.Status,
				"error", err)
		}
	}()
}

// WaitForDispatches blocks until all in-flight notification goroutines
// finish. Used on shutdown.
func (s *RequestService) WaitForDispatches() {
	s.dispatches.Wait()
}

// typeMetadata resolves the display name and field-kind map of a type for
// notification purposes. The type may be soft deleted; both lookups
// degrade gracefully.
func (s *RequestService) typeMetadata(ctx context.Context, typeID uuid.UUID) (string, map[string]models.FieldKind) {
	var userType models.UserType
	err := s.db.WithContext(ctx).
		Preload("Fields.Field").
		Where("type_id = ?", typeID).
		First(&userType).Error
	if err != nil {
		return models.FallbackTypeName, nil
	}
	kinds := make(map[string]models.FieldKind, len(userType.Fields))
	for _, tf := range userType.Fields {
		kinds[tf.Field.Name] = models.FieldKind(tf.Field.Kind)
	}
	return userType.Name, kinds
}

// ListRequests returns requests matching the filters together with counts
// by status across the same type filter.
func (s *RequestService) ListRequests(ctx context.Context, filters models.RequestFilters) (*models.RequestListResponse, error) {
	query := s.db.WithContext(ctx).Model(&models.RegistrationRequest{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.TypeID != nil {
		query = query.Where("type_id = ?", *filters.TypeID)
	}

	var requests []models.RegistrationRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	typeNames, err := s.typeNameIndex(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.RequestListItem, 0, len(requests))
	for _, r := range requests {
		name, ok := typeNames[r.TypeID]
		if !ok {
			name = models.FallbackTypeName
		}
		items = append(items, models.RequestListItem{
			RequestID:   r.RequestID,
			TypeID:      r.TypeID,
			TypeName:    name,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt,
			ProcessedAt: r.ProcessedAt,
		})
	}

	counts, err := s.countsByStatus(ctx, filters.TypeID)
	if err != nil {
		return nil, err
	}
	return &models.RequestListResponse{Requests: items, Counts: counts}, nil
}

// GetRequest returns the full request view with submitted values joined
// against the current schema. Field names that no longer resolve fall
// back to a label derived from the raw key; a missing type row falls back
// to a placeholder name.
func (s *RequestService) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.RequestDetail, error) {
	var request models.RegistrationRequest
	if err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrRequestNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	detail := models.RequestDetail{
		RequestID:   request.RequestID,
		TypeID:      request.TypeID,
		TypeName:    models.FallbackTypeName,
		Status:      request.Status,
		AdminNotes:  request.AdminNotes,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
		ProcessedAt: request.ProcessedAt,
	}

	var userType models.UserType
	err := s.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Fields.Field").
		Where("type_id = ?", request.TypeID).
		First(&userType).Error
	if err == nil {
		detail.TypeName = userType.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get user type: %w", err)
	}

	detail.Values = joinSubmittedValues(request.Payload, userType.Fields)
	return &detail, nil
}

// joinSubmittedValues renders payload entries in schema order first, then
// any leftover keys the current schema no longer declares.
func joinSubmittedValues(payload models.Payload, fields []models.UserTypeField) []models.SubmittedValue {
	values := make([]models.SubmittedValue, 0, len(payload))
	consumed := make(map[string]bool, len(payload))

	for _, tf := range fields {
		value, ok := payload[tf.Field.Name]
		if !ok {
			continue
		}
		consumed[tf.Field.Name] = true
		values = append(values, models.SubmittedValue{
			Name:  tf.Field.Name,
			Label: tf.Field.Label,
			Kind:  tf.Field.Kind,
			Value: value.Display(),
		})
	}

	leftovers := make([]string, 0)
	for name := range payload {
		if !consumed[name] {
			leftovers = append(leftovers, name)
		}
	}
	sort.Strings(leftovers)
	for _, name := range leftovers {
		values = append(values, models.SubmittedValue{
			Name:  name,
			Label: models.FallbackLabel(name),
			Value: payload[name].Display(),
		})
	}
	return values
}

// countsByStatus aggregates request counts per status, optionally scoped
// to one type.
func (s *RequestService) countsByStatus(ctx context.Context, typeID *uuid.UUID) (map[string]int64, error) {
	query := s.db.WithContext(ctx).Model(&models.RegistrationRequest{})
	if typeID != nil {
		query = query.Where("type_id = ?", *typeID)
	}

	var rows []struct {
		Status string
		Total  int64
	}
	if err := query.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}

	counts := map[string]int64{
		string(models.StatusPending):  0,
		string(models.StatusApproved): 0,
		string(models.StatusRejected): 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// typeNameIndex loads all type names keyed by id for list rendering.
func (s *RequestService) typeNameIndex(ctx context.Context) (map[uuid.UUID]string, error) {
	var types []models.UserType
	if err := s.db.WithContext(ctx).Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list user types: %w", err)
	}
	index := make(map[uuid.UUID]string, len(types))
	for _, t := range types {
		index[t.TypeID] = t.Name
	}
	return index, nil
}
