package models

import "time"

// FileKind discriminates the two specializations of a stored file.
type FileKind string

const (
	FileKindData   FileKind = "data"
	FileKindScript FileKind = "script"
)

// StoredFile is the base identity shared by data files and script files.
// Records are insert-only: they are created once per successful upload and
// never mutated.
type StoredFile struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Path            string    `json:"filePath"`
	UploadedAt      time.Time `json:"uploadTime"`
	VisualizationID int64     `json:"visualizationId"`
}

// DataFile is a validated tabular upload attached to a visualization.
// RowsSampled is the bounded sample count taken at validation time, not a
// full-file row count.
type DataFile struct {
	StoredFile
	RowsSampled int           `json:"rowsCount"`
	Extension   string        `json:"extension"`
	Timespan    time.Duration `json:"timespan"`
}

// ScriptFile is a statistical script attached to a visualization. Its
// content is opaque to this system; it only has to be the visualization's
// active script to be invoked.
type ScriptFile struct {
	StoredFile
}

// FileDTO is the listing projection of a stored file.
type FileDTO struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FilePath        string    `json:"filePath"`
	UploadTime      time.Time `json:"uploadTime"`
	DownloadURL     string    `json:"downloadUrl,omitempty"`
	VisualizationID int64     `json:"visualizationId"`
}
