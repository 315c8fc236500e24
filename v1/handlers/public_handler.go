package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/regportal/registration-backend/v1/models"
	"github.com/regportal/registration-backend/v1/services"
)

// PublicHandler handles the unauthenticated submission API.
type PublicHandler struct {
	typeService    *services.TypeService
	requestService *services.RequestService
}

// NewPublicHandler creates a new public handler.
func NewPublicHandler(typeService *services.TypeService, requestService *services.RequestService) *PublicHandler {
	return &PublicHandler{
		typeService:    typeService,
		requestService: requestService,
	}
}

// HealthCheck handles GET /api/v1/health
func (h *PublicHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListActiveTypes handles GET /api/v1/types
func (h *PublicHandler) ListActiveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.typeService.ListActiveTypes(r.Context())
	if err != nil {
		respondWithServiceError(w, err, models.OpListTypes)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"types": types})
}

// GetTypeFields handles GET /api/v1/types/{typeId}/fields
func (h *PublicHandler) GetTypeFields(w http.ResponseWriter, r *http.Request) {
	typeID, ok := pathUUID(w, r, "typeId")
	if !ok {
		return
	}
	fields, err := h.typeService.GetTypeFields(r.Context(), typeID)
	if err != nil {
		respondWithServiceError(w, err, models.OpGetTypeFields)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"fields": fields})
}

// SubmitRequest handles POST /api/v1/requests
func (h *PublicHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.TypeID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "type_id is required")
		return
	}

	request, err := h.requestService.Submit(r.Context(), req.TypeID, req.Payload)
	if err != nil {
		respondWithServiceError(w, err, models.OpSubmitRequest)
		return
	}

	slog.Info("Request submitted",
		"operation", models.OpSubmitRequest,
		"requestId", request.RequestID,
		"typeId", request.TypeID)
	respondWithJSON(w, http.StatusCreated, models.SubmitResponse{
		RequestID: request.RequestID,
		Status:    request.Status,
	})
}

// pathUUID extracts and parses a UUID path parameter, writing a
// BAD_REQUEST response when it is missing or malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, name+" is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
