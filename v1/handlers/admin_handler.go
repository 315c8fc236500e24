package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/regportal/registration-backend/v1/models"
	"github.com/regportal/registration-backend/v1/services"
)

// AdminHandler handles the administrative API: field catalog and user
// type management plus request processing.
type AdminHandler struct {
	fieldService   *services.FieldService
	typeService    *services.TypeService
	requestService *services.RequestService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(fieldService *services.FieldService, typeService *services.TypeService, requestService *services.RequestService) *AdminHandler {
	return &AdminHandler{
		fieldService:   fieldService,
		typeService:    typeService,
		requestService: requestService,
	}
}

// ListFields handles GET /api/v1/admin/fields
func (h *AdminHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.fieldService.ListFields(r.Context())
	if err != nil {
		respondWithServiceError(w, err, models.OpListFields)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"fields": fields})
}

// CreateField handles POST /api/v1/admin/fields
func (h *AdminHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	var req models.FieldRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	field, err := h.fieldService.CreateField(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, models.OpCreateField)
		return
	}
	slog.Info("Field created", "operation", models.OpCreateField, "fieldId", field.FieldID, "name", field.Name)
	respondWithJSON(w, http.StatusCreated, field)
}

// UpdateField handles PUT /api/v1/admin/fields/{fieldId}
func (h *AdminHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	fieldID, ok := pathUUID(w, r, "fieldId")
	if !ok {
		return
	}
	var req models.FieldRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	field, err := h.fieldService.UpdateField(r.Context(), fieldID, req)
	if err != nil {
		respondWithServiceError(w, err, models.OpUpdateField)
		return
	}
	slog.Info("Field updated", "operation", models.OpUpdateField, "fieldId", field.FieldID, "name", field.Name)
	respondWithJSON(w, http.StatusOK, field)
}

// DeleteField handles DELETE /api/v1/admin/fields/{fieldId}?force=true
func (h *AdminHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	fieldID, ok := pathUUID(w, r, "fieldId")
	if !ok {
		return
	}
	force := r.URL.Query().Get("force") == "true"
	if err := h.fieldService.DeleteField(r.Context(), fieldID, force); err != nil {
		respondWithServiceError(w, err, models.OpDeleteField)
		return
	}
	slog.Info("Field deleted", "operation", models.OpDeleteField, "fieldId", fieldID, "force", force)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"deleted": fieldID})
}

// ListTypes handles GET /api/v1/admin/types
func (h *AdminHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.typeService.ListTypes(r.Context())
	if err != nil {
		respondWithServiceError(w, err, models.OpListTypes)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"types": types})
}

// CreateType handles POST /api/v1/admin/types
func (h *AdminHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req models.TypeRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	userType, err := h.typeService.CreateType(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, models.OpCreateType)
		return
	}
	slog.Info("User type created", "operation", models.OpCreateType, "typeId", userType.TypeID, "name", userType.Name)
	respondWithJSON(w, http.StatusCreated, userType)
}

// UpdateType handles PUT /api/v1/admin/types/{typeId}
func (h *AdminHandler) UpdateType(w http.ResponseWriter, r *http.Request) {
	typeID, ok := pathUUID(w, r, "typeId")
	if !ok {
		return
	}
	var req models.TypeRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	userType, err := h.typeService.UpdateType(r.Context(), typeID, req)
	if err != nil {
		respondWithServiceError(w, err, models.OpUpdateType)
		return
	}
	slog.Info("User type updated", "operation", models.OpUpdateType, "typeId", userType.TypeID, "name", userType.Name)
	respondWithJSON(w, http.StatusOK, userType)
}

// SetTypeActive handles PATCH /api/v1/admin/types/{typeId}/active
func (h *AdminHandler) SetTypeActive(w http.ResponseWriter, r *http.Request) {
	typeID, ok := pathUUID(w, r, "typeId")
	if !ok {
		return
	}
	var req models.SetActiveRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	userType, err := h.typeService.SetActive(r.Context(), typeID, req.Active)
	if err != nil {
		respondWithServiceError(w, err, models.OpSetTypeActive)
		return
	}
	slog.Info("User type active flag changed", "operation", models.OpSetTypeActive, "typeId", typeID, "active", req.Active)
	respondWithJSON(w, http.StatusOK, userType)
}

// DeleteType handles DELETE /api/v1/admin/types/{typeId}?confirmed=true
func (h *AdminHandler) DeleteType(w http.ResponseWriter, r *http.Request) {
	typeID, ok := pathUUID(w, r, "typeId")
	if !ok {
		return
	}
	confirmed := r.URL.Query().Get("confirmed") == "true"
	result, err := h.typeService.DeleteType(r.Context(), typeID, confirmed)
	if err != nil {
		respondWithServiceError(w, err, models.OpDeleteType)
		return
	}
	slog.Info("User type deleted", "operation", models.OpDeleteType, "typeId", typeID, "affectedRequests", result.AffectedRequests)
	respondWithJSON(w, http.StatusOK, result)
}

// GetTypeImpact handles GET /api/v1/admin/types/{typeId}/impact
func (h *AdminHandler) GetTypeImpact(w http.ResponseWriter, r *http.Request) {
	typeID, ok := pathUUID(w, r, "typeId")
	if !ok {
		return
	}
	impact, err := h.typeService.GetDeletionImpact(r.Context(), typeID)
	if err != nil {
		respondWithServiceError(w, err, models.OpGetTypeImpact)
		return
	}
	respondWithJSON(w, http.StatusOK, impact)
}

// ListRequests handles GET /api/v1/admin/requests?status=&typeId=
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filters := models.RequestFilters{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("typeId"); raw != "" {
		typeID, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "invalid typeId format")
			return
		}
		filters.TypeID = &typeID
	}
	response, err := h.requestService.ListRequests(r.Context(), filters)
	if err != nil {
		respondWithServiceError(w, err, models.OpListRequests)
		return
	}
	respondWithJSON(w, http.StatusOK, response)
}

// GetRequest handles GET /api/v1/admin/requests/{requestId}
func (h *AdminHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathUUID(w, r, "requestId")
	if !ok {
		return
	}
	detail, err := h.requestService.GetRequest(r.Context(), requestID)
	if err != nil {
		respondWithServiceError(w, err, models.OpGetRequest)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

// TransitionRequest handles PATCH /api/v1/admin/requests/{requestId}
func (h *AdminHandler) TransitionRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathUUID(w, r, "requestId")
	if !ok {
		return
	}
	var req models.TransitionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	request, err := h.requestService.Transition(r.Context(), requestID, models.RequestStatus(req.Status), req.Notes)
	if err != nil {
		respondWithServiceError(w, err, models.OpTransitionRequest)
		return
	}
	slog.Info("Request processed",
		"operation", models.OpTransitionRequest,
		"requestId", request.RequestID,
		"status", request.Status)
	respondWithJSON(w, http.StatusOK, request)
}
