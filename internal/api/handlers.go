package api

import (
	"log/slog"

	"github.com/sales-visualizer/backend/internal/metrics"
	"github.com/sales-visualizer/backend/internal/store"
	"github.com/sales-visualizer/backend/internal/validate"
)

// StorePrefix is the URL prefix the stored-file directory is served under.
const StorePrefix = "/store"

// Handler handles API requests.
type Handler struct {
	repo      store.Repository
	validator *validate.Validator
	persister Persister
	generator ChartGenerator
	files     *store.FileStore
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewHandler creates a new API handler. Metrics may be nil.
func NewHandler(repo store.Repository, validator *validate.Validator, persister Persister, generator ChartGenerator, files *store.FileStore, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		repo:      repo,
		validator: validator,
		persister: persister,
		generator: generator,
		files:     files,
		metrics:   m,
		logger:    logger,
	}
}

// uploadResponse is the envelope returned by both upload endpoints.
type uploadResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}
