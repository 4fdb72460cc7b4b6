package models

import "time"

// Visualization is a named target for uploads and chart requests. Rows are
// seeded at process start and read-only afterwards; only the active script
// pointer moves, when a new script is attached.
type Visualization struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Prediction     bool   `json:"prediction"`
	ActiveScriptID *int64 `json:"activeScriptId,omitempty"`

	DataFiles   []DataFile   `json:"-"`
	ScriptFiles []ScriptFile `json:"-"`
}

// ActiveScript returns the script record the active pointer designates, or
// nil when no script is attached.
func (v *Visualization) ActiveScript() *ScriptFile {
	if v.ActiveScriptID == nil {
		return nil
	}
	for i := range v.ScriptFiles {
		if v.ScriptFiles[i].ID == *v.ActiveScriptID {
			return &v.ScriptFiles[i]
		}
	}
	return nil
}

// VisualizationDTO is the listing projection of a visualization.
type VisualizationDTO struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	IsPrediction bool        `json:"isPrediction"`
	LastUpdates  []time.Time `json:"lastUpdates"`
}
