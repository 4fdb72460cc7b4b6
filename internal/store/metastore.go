package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/sales-visualizer/backend/internal/models"
)

// DefaultVisualizations are the rows seeded on first start.
var DefaultVisualizations = []models.Visualization{
	{
		Name:        "Sales Data History",
		Description: "Historical sales data visualization",
		Prediction:  false,
	},
	{
		Name:        "Weather History",
		Description: "Historical weather observations for the configured stores",
		Prediction:  false,
	},
	{
		Name: "Sales Forecasting",
		Description: "Forecasting future sales based on historical data and weather information. " +
			"In order to use this visualization, please upload the data files named in the attached script's documentation.",
		Prediction: true,
	},
}

// MetaStore is a DuckDB-backed Repository. Pass an empty path for an
// in-memory database (tests).
type MetaStore struct {
	db     *sql.DB
	dbPath string
}

// NewMetaStore opens (or creates) the metadata database and ensures the
// schema exists.
func NewMetaStore(dbPath string) (*MetaStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	ddl := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_visualization_id START 1`,
		`CREATE TABLE IF NOT EXISTS visualizations (
			id               BIGINT PRIMARY KEY DEFAULT nextval('seq_visualization_id'),
			name             VARCHAR NOT NULL,
			description      VARCHAR,
			prediction       BOOLEAN NOT NULL DEFAULT false,
			active_script_id BIGINT
		)`,
		`CREATE SEQUENCE IF NOT EXISTS seq_file_id START 1`,
		`CREATE TABLE IF NOT EXISTS files (
			id               BIGINT PRIMARY KEY DEFAULT nextval('seq_file_id'),
			kind             VARCHAR NOT NULL,
			name             VARCHAR NOT NULL,
			file_path        VARCHAR NOT NULL,
			upload_time      TIMESTAMP NOT NULL,
			visualization_id BIGINT NOT NULL,
			rows_count       INTEGER,
			extension        VARCHAR,
			timespan_seconds BIGINT
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &MetaStore{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *MetaStore) Close() error {
	return s.db.Close()
}

// Seed inserts the given visualizations if the table is empty. Startup is
// idempotent: a populated table is left untouched.
func (s *MetaStore) Seed(ctx context.Context, visualizations []models.Visualization) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visualizations`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count visualizations: %w", err)
	}
	if count != 0 {
		return nil
	}

	for _, v := range visualizations {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO visualizations (name, description, prediction) VALUES (?, ?, ?)`,
			v.Name, v.Description, v.Prediction)
		if err != nil {
			return fmt.Errorf("failed to seed visualization %q: %w", v.Name, err)
		}
	}
	return nil
}

// GetVisualization loads a visualization with its ordered data and script
// collections.
func (s *MetaStore) GetVisualization(ctx context.Context, id int64) (*models.Visualization, error) {
	var (
		v           models.Visualization
		description sql.NullString
		active      sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, prediction, active_script_id FROM visualizations WHERE id = ?`, id).
		Scan(&v.ID, &v.Name, &description, &v.Prediction, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load visualization %d: %w", id, err)
	}
	v.Description = description.String
	if active.Valid {
		v.ActiveScriptID = &active.Int64
	}

	if v.DataFiles, err = s.ListDataFiles(ctx, FileFilter{VisualizationID: id}); err != nil {
		return nil, err
	}
	if v.ScriptFiles, err = s.ListScriptFiles(ctx, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVisualizations returns all visualizations without their file
// collections, ordered by id.
func (s *MetaStore) ListVisualizations(ctx context.Context) ([]models.Visualization, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, prediction, active_script_id FROM visualizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list visualizations: %w", err)
	}
	defer rows.Close()

	var out []models.Visualization
	for rows.Next() {
		var (
			v           models.Visualization
			description sql.NullString
			active      sql.NullInt64
		)
		if err := rows.Scan(&v.ID, &v.Name, &description, &v.Prediction, &active); err != nil {
			return nil, fmt.Errorf("failed to scan visualization: %w", err)
		}
		v.Description = description.String
		if active.Valid {
			v.ActiveScriptID = &active.Int64
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// InsertDataFile appends one data file record and assigns its id.
func (s *MetaStore) InsertDataFile(ctx context.Context, f *models.DataFile) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO files (kind, name, file_path, upload_time, visualization_id, rows_count, extension, timespan_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		string(models.FileKindData), f.Name, f.Path, f.UploadedAt, f.VisualizationID,
		f.RowsSampled, f.Extension, int64(f.Timespan/time.Second)).
		Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to insert data file record: %w", err)
	}
	return nil
}

// InsertScriptFile appends one script file record and moves the owning
// visualization's active script pointer to it, in a single transaction.
// Last attach wins.
func (s *MetaStore) InsertScriptFile(ctx context.Context, f *models.ScriptFile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO files (kind, name, file_path, upload_time, visualization_id)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		string(models.FileKindScript), f.Name, f.Path, f.UploadedAt, f.VisualizationID).
		Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to insert script file record: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE visualizations SET active_script_id = ? WHERE id = ?`, f.ID, f.VisualizationID)
	if err != nil {
		return fmt.Errorf("failed to update active script: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit script insert: %w", err)
	}
	return nil
}

// ListDataFiles returns data file records, ordered by insertion.
func (s *MetaStore) ListDataFiles(ctx context.Context, filter FileFilter) ([]models.DataFile, error) {
	query := `SELECT id, name, file_path, upload_time, visualization_id, rows_count, extension, timespan_seconds
		FROM files WHERE kind = ? AND visualization_id = ?`
	args := []any{string(models.FileKindData), filter.VisualizationID}
	if filter.Extension != "" {
		query += ` AND extension = ?`
		args = append(args, filter.Extension)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list data files: %w", err)
	}
	defer rows.Close()

	var out []models.DataFile
	for rows.Next() {
		var (
			f       models.DataFile
			seconds int64
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.UploadedAt, &f.VisualizationID,
			&f.RowsSampled, &f.Extension, &seconds); err != nil {
			return nil, fmt.Errorf("failed to scan data file: %w", err)
		}
		f.Timespan = time.Duration(seconds) * time.Second
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListScriptFiles returns script file records for a visualization, ordered
// by insertion.
func (s *MetaStore) ListScriptFiles(ctx context.Context, visualizationID int64) ([]models.ScriptFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, file_path, upload_time, visualization_id FROM files
		 WHERE kind = ? AND visualization_id = ? ORDER BY id`,
		string(models.FileKindScript), visualizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list script files: %w", err)
	}
	defer rows.Close()

	var out []models.ScriptFile
	for rows.Next() {
		var f models.ScriptFile
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.UploadedAt, &f.VisualizationID); err != nil {
			return nil, fmt.Errorf("failed to scan script file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListAllFiles returns the base identity of every stored file, ordered by
// insertion.
func (s *MetaStore) ListAllFiles(ctx context.Context) ([]models.StoredFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, file_path, upload_time, visualization_id FROM files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var out []models.StoredFile
	for rows.Next() {
		var f models.StoredFile
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.UploadedAt, &f.VisualizationID); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
