// Package store persists validated uploads: file bytes in a per-visualization
// content store and metadata rows in a DuckDB-backed repository. The
// coordinator ties the two together with a write-then-commit ordering.
package store

import (
	"context"
	"errors"

	"github.com/sales-visualizer/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// FileFilter narrows a data-file listing.
type FileFilter struct {
	VisualizationID int64
	Extension       string
}

// Repository is the metadata store consumed by the upload and chart paths.
// It is insert-only for file records; visualizations are seeded once and
// only their active script pointer is ever updated.
type Repository interface {
	GetVisualization(ctx context.Context, id int64) (*models.Visualization, error)
	ListVisualizations(ctx context.Context) ([]models.Visualization, error)
	InsertDataFile(ctx context.Context, f *models.DataFile) error
	InsertScriptFile(ctx context.Context, f *models.ScriptFile) error
	ListDataFiles(ctx context.Context, filter FileFilter) ([]models.DataFile, error)
	ListScriptFiles(ctx context.Context, visualizationID int64) ([]models.ScriptFile, error)
	ListAllFiles(ctx context.Context) ([]models.StoredFile, error)
	Seed(ctx context.Context, visualizations []models.Visualization) error
	Close() error
}
