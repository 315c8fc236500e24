package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/regportal/registration-backend/v1/models"
	"github.com/regportal/registration-backend/v1/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvent struct {
	event notify.Event
}

// captureNotifier records delivered events for assertions.
type captureNotifier struct {
	events chan capturedEvent
	err    error
}

func (n *captureNotifier) Notify(_ context.Context, event notify.Event) error {
	n.events <- capturedEvent{event: event}
	return n.err
}

func setupRequestTest(t *testing.T) (*RequestService, *TypeService, *captureNotifier, *models.UserType) {
	t.Helper()
	db := SetupSQLiteTestDB(t)

	email := createTestField(t, db, "email", models.KindEmail)
	name := createTestField(t, db, "full_name", models.KindText)
	userType := createTestType(t, db, "student", email.FieldID, name.FieldID)

	notifier := &captureNotifier{events: make(chan capturedEvent, 8)}
	return NewRequestService(db, notifier), NewTypeService(db), notifier, userType
}

func validPayload() models.Payload {
	return models.Payload{
		"email":     models.StringValue("sara@example.com"),
		"full_name": models.StringValue("Sara"),
	}
}

func TestSubmit(t *testing.T) {
	svc, typeSvc, _, userType := setupRequestTest(t)
	ctx := context.Background()

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.Submit(ctx, uuid.New(), validPayload())
		assert.ErrorIs(t, err, models.ErrTypeNotFound)
	})

	t.Run("validation failure persists nothing", func(t *testing.T) {
		_, err := svc.Submit(ctx, userType.TypeID, models.Payload{
			"email": models.StringValue("not-an-email"),
		})

		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "Invalid email format", validationErr.Errors["email"])
		assert.Equal(t, "Full Name is required", validationErr.Errors["full_name"])

		var count int64
		require.NoError(t, svc.db.Model(&models.RegistrationRequest{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("valid submission lands pending", func(t *testing.T) {
		request, err := svc.Submit(ctx, userType.TypeID, validPayload())
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, request.RequestID)
		assert.Equal(t, string(models.StatusPending), request.Status)
		assert.Nil(t, request.ProcessedAt)

		var stored models.RegistrationRequest
		require.NoError(t, svc.db.Where("request_id = ?", request.RequestID).First(&stored).Error)
		assert.Equal(t, "sara@example.com", stored.Payload["email"].Str)
	})

	t.Run("inactive type refuses submissions", func(t *testing.T) {
		email := createTestField(t, svc.db, "work_email", models.KindEmail)
		createTestType(t, svc.db, "agent", email.FieldID)
		_, err := typeSvc.SetActive(ctx, userType.TypeID, false)
		require.NoError(t, err)
		t.Cleanup(func() {
			_, err := typeSvc.SetActive(context.Background(), userType.TypeID, true)
			require.NoError(t, err)
		})

		_, err = svc.Submit(ctx, userType.TypeID, validPayload())
		assert.ErrorIs(t, err, models.ErrTypeInactive)
	})
}

func TestTransition(t *testing.T) {
	svc, _, notifier, userType := setupRequestTest(t)
	ctx := context.Background()

	submit := func(t *testing.T) *models.RegistrationRequest {
		t.Helper()
		request, err := svc.Submit(ctx, userType.TypeID, validPayload())
		require.NoError(t, err)
		return request
	}

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Transition(ctx, uuid.New(), models.StatusApproved, nil)
		assert.ErrorIs(t, err, models.ErrRequestNotFound)
	})

	t.Run("invalid target status", func(t *testing.T) {
		request := submit(t)
		_, err := svc.Transition(ctx, request.RequestID, models.StatusPending, nil)
		assert.ErrorIs(t, err, models.ErrInvalidStatus)

		_, err = svc.Transition(ctx, request.RequestID, models.RequestStatus("archived"), nil)
		assert.ErrorIs(t, err, models.ErrInvalidStatus)
	})

	t.Run("notes length cap", func(t *testing.T) {
		request := submit(t)
		long := string(make([]byte, 1001))
		_, err := svc.Transition(ctx, request.RequestID, models.StatusRejected, &long)
		assert.ErrorIs(t, err, models.ErrNotesTooLong)
	})

	t.Run("approve is terminal", func(t *testing.T) {
		request := submit(t)
		notes := "documents verified"

		approved, err := svc.Transition(ctx, request.RequestID, models.StatusApproved, &notes)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusApproved), approved.Status)
		require.NotNil(t, approved.ProcessedAt)
		require.NotNil(t, approved.AdminNotes)
		assert.Equal(t, "documents verified", *approved.AdminNotes)

		// A second decision, even a different one, is refused with the
		// current state attached.
		_, err = svc.Transition(ctx, request.RequestID, models.StatusRejected, nil)
		var processedErr *models.AlreadyProcessedError
		require.ErrorAs(t, err, &processedErr)
		assert.Equal(t, string(models.StatusApproved), processedErr.CurrentStatus)
		require.NotNil(t, processedErr.ProcessedAt)
		assert.ErrorIs(t, err, models.ErrAlreadyProcessed)

		// The stored row kept the first decision.
		stored, err := svc.GetRequest(ctx, request.RequestID)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusApproved), stored.Status)
		require.NotNil(t, stored.AdminNotes)
		assert.Equal(t, "documents verified", *stored.AdminNotes)
	})

	t.Run("reject without notes", func(t *testing.T) {
		request := submit(t)
		rejected, err := svc.Transition(ctx, request.RequestID, models.StatusRejected, nil)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusRejected), rejected.Status)
		assert.Nil(t, rejected.AdminNotes)
	})

	t.Run("notification fires after the transition", func(t *testing.T) {
		svc.WaitForDispatches()
		drainEvents(notifier)
		request := submit(t)
		notes := "missing attachment"
		_, err := svc.Transition(ctx, request.RequestID, models.StatusRejected, &notes)
		require.NoError(t, err)
		svc.WaitForDispatches()

		captured := <-notifier.events
		assert.Equal(t, request.RequestID, captured.event.RequestID)
		assert.Equal(t, "student", captured.event.TypeName)
		assert.Equal(t, string(models.StatusRejected), captured.event.Status)
		require.NotNil(t, captured.event.Notes)
		assert.Equal(t, "missing attachment", *captured.event.Notes)
		require.NotNil(t, captured.event.Contact.Email)
		assert.Equal(t, "sara@example.com", *captured.event.Contact.Email)
	})

	t.Run("notifier failure does not affect the transition", func(t *testing.T) {
		svc.WaitForDispatches()
		drainEvents(notifier)
		notifier.err = assert.AnError
		t.Cleanup(func() { notifier.err = nil })

		request := submit(t)
		approved, err := svc.Transition(ctx, request.RequestID, models.StatusApproved, nil)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusApproved), approved.Status)
		svc.WaitForDispatches()

		stored, err := svc.GetRequest(ctx, request.RequestID)
		require.NoError(t, err)
		assert.Equal(t, string(models.StatusApproved), stored.Status)
	})
}

func drainEvents(n *captureNotifier) {
	for {
		select {
		case <-n.events:
		default:
			return
		}
	}
}

func TestListRequests(t *testing.T) {
	svc, _, _, userType := setupRequestTest(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, userType.TypeID, validPayload())
	require.NoError(t, err)
	second, err := svc.Submit(ctx, userType.TypeID, validPayload())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, first.RequestID, models.StatusApproved, nil)
	require.NoError(t, err)
	svc.WaitForDispatches()

	t.Run("unfiltered with counts", func(t *testing.T) {
		resp, err := svc.ListRequests(ctx, models.RequestFilters{})
		require.NoError(t, err)
		assert.Len(t, resp.Requests, 2)
		assert.Equal(t, map[string]int64{
			"pending":  1,
			"approved": 1,
			"rejected": 0,
		}, resp.Counts)
		for _, item := range resp.Requests {
			assert.Equal(t, "student", item.TypeName)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		resp, err := svc.ListRequests(ctx, models.RequestFilters{Status: string(models.StatusPending)})
		require.NoError(t, err)
		require.Len(t, resp.Requests, 1)
		assert.Equal(t, second.RequestID, resp.Requests[0].RequestID)
	})

	t.Run("type filter excludes other types", func(t *testing.T) {
		other := uuid.New()
		resp, err := svc.ListRequests(ctx, models.RequestFilters{TypeID: &other})
		require.NoError(t, err)
		assert.Empty(t, resp.Requests)
		assert.Equal(t, int64(0), resp.Counts["pending"])
	})
}

func TestGetRequestDetail(t *testing.T) {
	svc, typeSvc, _, userType := setupRequestTest(t)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetRequest(ctx, uuid.New())
		assert.ErrorIs(t, err, models.ErrRequestNotFound)
	})

	t.Run("values follow schema order", func(t *testing.T) {
		request, err := svc.Submit(ctx, userType.TypeID, validPayload())
		require.NoError(t, err)

		detail, err := svc.GetRequest(ctx, request.RequestID)
		require.NoError(t, err)
		assert.Equal(t, "student", detail.TypeName)
		require.Len(t, detail.Values, 2)
		assert.Equal(t, "email", detail.Values[0].Name)
		assert.Equal(t, "Email", detail.Values[0].Label)
		assert.Equal(t, "sara@example.com", detail.Values[0].Value)
		assert.Equal(t, "full_name", detail.Values[1].Name)
	})

	t.Run("orphaned keys rendered with fallback labels", func(t *testing.T) {
		payload := validPayload()
		payload["старое_поле"] = models.StringValue("kept")
		payload["legacy_code"] = models.NumberValue(7)
		request, err := svc.Submit(ctx, userType.TypeID, payload)
		require.NoError(t, err)

		detail, err := svc.GetRequest(ctx, request.RequestID)
		require.NoError(t, err)
		require.Len(t, detail.Values, 4)
		// Schema-resolved values first, leftovers after in key order.
		assert.Equal(t, "legacy_code", detail.Values[2].Name)
		assert.Equal(t, "Legacy Code", detail.Values[2].Label)
		assert.Equal(t, "7", detail.Values[2].Value)
	})

	t.Run("deleted type falls back but keeps the payload", func(t *testing.T) {
		request, err := svc.Submit(ctx, userType.TypeID, validPayload())
		require.NoError(t, err)

		email := createTestField(t, svc.db, "agent_email", models.KindEmail)
		createTestType(t, svc.db, "agent", email.FieldID)
		_, err = typeSvc.DeleteType(ctx, userType.TypeID, true)
		require.NoError(t, err)

		detail, err := svc.GetRequest(ctx, request.RequestID)
		require.NoError(t, err)
		// The type row survives soft deletion, so its name still renders;
		// the field rows are gone, so values fall back to raw keys.
		assert.Equal(t, "student", detail.TypeName)
		require.Len(t, detail.Values, 2)
		assert.Equal(t, "Email", detail.Values[0].Label)
		assert.Equal(t, "Full Name", detail.Values[1].Label)
	})
}
