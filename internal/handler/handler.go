package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/leadflowhq/leadflow/docs" // Import generated docs
	"github.com/leadflowhq/leadflow/internal/domain"
	"github.com/leadflowhq/leadflow/internal/handler/dto"
	"github.com/leadflowhq/leadflow/internal/middleware"
	"github.com/leadflowhq/leadflow/internal/repository"
	"github.com/leadflowhq/leadflow/internal/service"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool              *pgxpool.Pool
	leadService       *service.LeadService
	transitionService *service.TransitionService
	leadRepo          *repository.LeadRepository
	statusRepo        *repository.StatusRepository
	activityRepo      *repository.ActivityRepository
	statsRepo         *repository.StatsRepository
	authMiddleware    *middleware.AuthMiddleware
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool) *Handler {
	// Create repositories
	leadRepo := repository.NewLeadRepository(pool)
	statusRepo := repository.NewStatusRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	// Create services
	leadService := service.NewLeadService(leadRepo, activityRepo)
	transitionService := service.NewTransitionService(
		leadRepo, statusRepo, userRepo, activityRepo, nil,
	)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	return &Handler{
		pool:              pool,
		leadService:       leadService,
		transitionService: transitionService,
		leadRepo:          leadRepo,
		statusRepo:        statusRepo,
		activityRepo:      activityRepo,
		statsRepo:         statsRepo,
		authMiddleware:    authMiddleware,
	}
}

// TransitionService exposes the engine for the CLI and the sweeper.
func (h *Handler) TransitionService() *service.TransitionService {
	return h.transitionService
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Public partner form. No auth; CORS-wrapped so partner sites can
	// post from the browser. Registered without a method pattern so
	// the CORS preflight OPTIONS reaches the wrapper.
	publicCors := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	mux.Handle("/api/v1/public/leads", publicCors.Handler(http.HandlerFunc(h.handlePublicCreateLead)))

	auth := h.authMiddleware.Authenticate
	staffOnly := h.authMiddleware.RequireRole(
		domain.UserRoleAdmin, domain.UserRoleManager, domain.UserRoleOperations,
	)
	adminOnly := h.authMiddleware.RequireRole(domain.UserRoleAdmin, domain.UserRoleManager)

	// API v1 routes with authentication
	mux.Handle("GET /api/v1/leads", auth(staffOnly(http.HandlerFunc(h.handleListLeads))))
	mux.Handle("POST /api/v1/leads", auth(staffOnly(http.HandlerFunc(h.handleCreateLead))))
	mux.Handle("GET /api/v1/leads/attention", auth(staffOnly(http.HandlerFunc(h.handleAttention))))
	mux.Handle("GET /api/v1/leads/export", auth(adminOnly(http.HandlerFunc(h.handleExportLeads))))
	mux.Handle("GET /api/v1/leads/{id}", auth(staffOnly(http.HandlerFunc(h.handleGetLead))))
	mux.Handle("GET /api/v1/leads/{id}/transitions", auth(staffOnly(http.HandlerFunc(h.handleAvailableTransitions))))
	mux.Handle("POST /api/v1/leads/{id}/status", auth(staffOnly(http.HandlerFunc(h.handleChangeStatus))))
	mux.Handle("GET /api/v1/statuses", auth(staffOnly(http.HandlerFunc(h.handleListStatuses))))
	mux.Handle("POST /api/v1/sweep", auth(adminOnly(http.HandlerFunc(h.handleTriggerSweep))))
	mux.Handle("GET /api/v1/stats", auth(staffOnly(http.HandlerFunc(h.handleGetStats))))
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// extractLeadID extracts and validates the lead ID path parameter.
// Returns (leadID, true) if valid, ("", false) if invalid (error already sent to client).
func extractLeadID(w http.ResponseWriter, r *http.Request) (string, bool) {
	leadID := r.PathValue("id")
	if leadID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "lead id is required")
		return "", false
	}

	if _, err := uuid.Parse(leadID); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "lead id must be a valid UUID")
		return "", false
	}

	return leadID, true
}
