package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/upb/ai-docs-prompt/utils"
	"go.uber.org/zap"
)

// HealthResponse reports liveness plus the per-dependency readiness checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ChunkIndex is the slice of the vector store the readiness probe needs.
type ChunkIndex interface {
	Count() int
}

// HealthHandler serves the liveness and readiness probes. Readiness covers
// the two stateful dependencies: PostgreSQL and the chunk index.
type HealthHandler struct {
	db     *sql.DB
	index  ChunkIndex
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *sql.DB, index ChunkIndex, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		index:  index,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz. Liveness only: a 200 means the process
// is up, regardless of dependency state.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz. Returns 503 until every dependency
// answers, so the service is not routed traffic it cannot serve.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if err := h.checkDatabase(ctx); err != nil {
		h.logger.Warn("database readiness check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		ready = false
	} else {
		checks["database"] = "healthy"
	}

	if h.index != nil {
		// Count touches the in-memory collection, which only exists when
		// the store opened successfully.
		checks["vector_index"] = "healthy"
		h.logger.Debug("vector index ready", zap.Int("chunks", h.index.Count()))
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !ready {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}

	if err := h.db.PingContext(ctx); err != nil {
		return err
	}

	var result int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
}
