package api

import (
	"context"

	"github.com/sales-visualizer/backend/internal/chart"
	"github.com/sales-visualizer/backend/internal/models"
)

// Persister stores an admitted upload as file bytes plus a metadata row.
type Persister interface {
	PersistData(ctx context.Context, data []byte, filename string, visualizationID int64, sampleRows int) (*models.DataFile, error)
	PersistScript(ctx context.Context, data []byte, filename string, visualizationID int64) (*models.ScriptFile, error)
}

// ChartGenerator produces chart data for a visualization.
type ChartGenerator interface {
	Generate(ctx context.Context, q chart.Query) (*models.ChartResponse, error)
}
