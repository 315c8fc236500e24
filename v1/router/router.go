package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/regportal/registration-backend/v1/handlers"
	"github.com/regportal/registration-backend/v1/middleware"
)

// V1Router handles all V1 API route registration
type V1Router struct {
	publicHandler *handlers.PublicHandler
	adminHandler  *handlers.AdminHandler
}

// NewV1Router creates a new V1 router with all dependencies
func NewV1Router(publicHandler *handlers.PublicHandler, adminHandler *handlers.AdminHandler) *V1Router {
	return &V1Router{
		publicHandler: publicHandler,
		adminHandler:  adminHandler,
	}
}

// RegisterRoutes registers all V1 API routes to the provided mux
func (r *V1Router) RegisterRoutes(mux *http.ServeMux) {
	r.registerPublicRoutes(mux)
	r.registerAdminRoutes(mux)

	mux.Handle("GET /metrics", promhttp.Handler())
}

// registerPublicRoutes registers the unauthenticated submission routes
func (r *V1Router) registerPublicRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/v1/health",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.publicHandler.HealthCheck)))
	mux.Handle("GET /api/v1/types",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.publicHandler.ListActiveTypes)))
	mux.Handle("GET /api/v1/types/{typeId}/fields",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.publicHandler.GetTypeFields)))
	mux.Handle("POST /api/v1/requests",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.publicHandler.SubmitRequest)))
}

// registerAdminRoutes registers the administrative routes
func (r *V1Router) registerAdminRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/v1/admin/fields",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.ListFields)))
	mux.Handle("POST /api/v1/admin/fields",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.CreateField)))
	mux.Handle("PUT /api/v1/admin/fields/{fieldId}",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.UpdateField)))
	mux.Handle("DELETE /api/v1/admin/fields/{fieldId}",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.DeleteField)))

	mux.Handle("GET /api/v1/admin/types",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.ListTypes)))
	mux.Handle("POST /api/v1/admin/types",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.CreateType)))
	mux.Handle("PUT /api/v1/admin/types/{typeId}",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.UpdateType)))
	mux.Handle("PATCH /api/v1/admin/types/{typeId}/active",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.SetTypeActive)))
	mux.Handle("DELETE /api/v1/admin/types/{typeId}",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.DeleteType)))
	mux.Handle("GET /api/v1/admin/types/{typeId}/impact",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.GetTypeImpact)))

	mux.Handle("GET /api/v1/admin/requests",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.ListRequests)))
	mux.Handle("GET /api/v1/admin/requests/{requestId}",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.GetRequest)))
	mux.Handle("PATCH /api/v1/admin/requests/{requestId}",
		middleware.PanicRecoveryMiddleware(http.HandlerFunc(r.adminHandler.TransitionRequest)))
}
