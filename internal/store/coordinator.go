package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sales-visualizer/backend/internal/models"
)

// PlaceholderTimespan is recorded on data files until timespan derivation
// from sampled data is specified.
const PlaceholderTimespan = 24 * time.Hour

// PersistenceError reports a failed persist with its original cause.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// TimespanEstimator computes the timespan recorded on a data file. The
// derive-from-sample implementation is an extension point; the default
// returns the fixed placeholder.
type TimespanEstimator interface {
	Estimate(data []byte) time.Duration
}

type fixedTimespan time.Duration

func (f fixedTimespan) Estimate([]byte) time.Duration {
	return time.Duration(f)
}

// Coordinator persists an admitted upload: file bytes first, metadata row
// second. The ordering is a hard contract: a metadata row must never
// reference a file that did not finish writing.
type Coordinator struct {
	files     *FileStore
	repo      Repository
	estimator TimespanEstimator
	logger    *slog.Logger
}

// NewCoordinator wires the coordinator. A nil estimator gets the placeholder
// default; a nil logger gets slog.Default.
func NewCoordinator(files *FileStore, repo Repository, estimator TimespanEstimator, logger *slog.Logger) *Coordinator {
	if estimator == nil {
		estimator = fixedTimespan(PlaceholderTimespan)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{files: files, repo: repo, estimator: estimator, logger: logger}
}

// PersistData stores an admitted data upload. Only called after an admit
// verdict; sampleRows is the validator's bounded sample count.
func (c *Coordinator) PersistData(ctx context.Context, data []byte, filename string, visualizationID int64, sampleRows int) (*models.DataFile, error) {
	path, err := c.files.Write(visualizationID, models.FileKindData, filename, data)
	if err != nil {
		return nil, &PersistenceError{Op: "file write", Err: err}
	}

	rec := &models.DataFile{
		StoredFile: models.StoredFile{
			Name:            filepath.Base(filename),
			Path:            path,
			UploadedAt:      time.Now().UTC(),
			VisualizationID: visualizationID,
		},
		RowsSampled: sampleRows,
		Extension:   filepath.Ext(filename),
		Timespan:    c.estimator.Estimate(data),
	}

	if err := c.repo.InsertDataFile(ctx, rec); err != nil {
		// The written file stays on disk for reconciliation: a concurrent
		// reader may already have opened it, so no compensating delete.
		c.logger.Error("metadata insert failed, file left on disk", "path", path, "error", err)
		return nil, &PersistenceError{Op: "metadata insert", Err: err}
	}
	return rec, nil
}

// PersistScript stores a script upload and makes it the visualization's
// active script.
func (c *Coordinator) PersistScript(ctx context.Context, data []byte, filename string, visualizationID int64) (*models.ScriptFile, error) {
	path, err := c.files.Write(visualizationID, models.FileKindScript, filename, data)
	if err != nil {
		return nil, &PersistenceError{Op: "file write", Err: err}
	}

	rec := &models.ScriptFile{
		StoredFile: models.StoredFile{
			Name:            filepath.Base(filename),
			Path:            path,
			UploadedAt:      time.Now().UTC(),
			VisualizationID: visualizationID,
		},
	}

	if err := c.repo.InsertScriptFile(ctx, rec); err != nil {
		c.logger.Error("metadata insert failed, file left on disk", "path", path, "error", err)
		return nil, &PersistenceError{Op: "metadata insert", Err: err}
	}
	return rec, nil
}
