// Package testutil provides shared fixtures and an in-memory repository for
// handler and generator tests.
package testutil

import (
	"context"
	"sync"

	"github.com/sales-visualizer/backend/internal/models"
	"github.com/sales-visualizer/backend/internal/store"
)

// Sample CSV payloads matching the built-in schema contracts.
const (
	ValidSalesCSV = "ReceiptDateTime;ArticleId;NetAmountExcl;Quantity;Article;SubgroupId;MaingroupId;StoreId\n" +
		"2025-09-01 10:00:00;1001;12.50;1;Widget;10;1;StoreA\n" +
		"2025-09-01 11:00:00;1002;5.00;2;Gizmo;10;1;StoreA\n"

	InvalidSalesCSV = "ReceiptDateTime;ArticleId;NetAmountExcl;Quantity;Article;SubgroupId;MaingroupId\n" +
		"2025-09-01 10:00:00;1001;not_a_number;1;Widget;10;1\n"

	ValidVisitorsCSV = "AccessGroupId;Date;Time;NumberOfUsedEntrances\n" +
		"AG1;2025-09-01;10:00:00;5\n" +
		"AG2;2025-09-01;11:00:00;3\n"
)

// MemRepo is an in-memory store.Repository.
type MemRepo struct {
	mu             sync.Mutex
	visualizations []*models.Visualization
	nextFileID     int64
}

// NewMemRepo returns an empty repository.
func NewMemRepo() *MemRepo {
	return &MemRepo{}
}

// NewSeededMemRepo returns a repository seeded with the default
// visualizations.
func NewSeededMemRepo() *MemRepo {
	r := NewMemRepo()
	_ = r.Seed(context.Background(), store.DefaultVisualizations)
	return r
}

func (r *MemRepo) Seed(_ context.Context, visualizations []models.Visualization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.visualizations) != 0 {
		return nil
	}
	for i := range visualizations {
		v := visualizations[i]
		v.ID = int64(i + 1)
		r.visualizations = append(r.visualizations, &v)
	}
	return nil
}

func (r *MemRepo) find(id int64) *models.Visualization {
	for _, v := range r.visualizations {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func (r *MemRepo) GetVisualization(_ context.Context, id int64) (*models.Visualization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.find(id)
	if v == nil {
		return nil, store.ErrNotFound
	}
	out := *v
	out.DataFiles = append([]models.DataFile(nil), v.DataFiles...)
	out.ScriptFiles = append([]models.ScriptFile(nil), v.ScriptFiles...)
	return &out, nil
}

func (r *MemRepo) ListVisualizations(_ context.Context) ([]models.Visualization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Visualization, 0, len(r.visualizations))
	for _, v := range r.visualizations {
		c := *v
		c.DataFiles, c.ScriptFiles = nil, nil
		out = append(out, c)
	}
	return out, nil
}

func (r *MemRepo) InsertDataFile(_ context.Context, f *models.DataFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.find(f.VisualizationID)
	if v == nil {
		return store.ErrNotFound
	}
	r.nextFileID++
	f.ID = r.nextFileID
	v.DataFiles = append(v.DataFiles, *f)
	return nil
}

func (r *MemRepo) InsertScriptFile(_ context.Context, f *models.ScriptFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.find(f.VisualizationID)
	if v == nil {
		return store.ErrNotFound
	}
	r.nextFileID++
	f.ID = r.nextFileID
	v.ScriptFiles = append(v.ScriptFiles, *f)
	id := f.ID
	v.ActiveScriptID = &id
	return nil
}

func (r *MemRepo) ListDataFiles(_ context.Context, filter store.FileFilter) ([]models.DataFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.find(filter.VisualizationID)
	if v == nil {
		return nil, nil
	}
	var out []models.DataFile
	for _, f := range v.DataFiles {
		if filter.Extension != "" && f.Extension != filter.Extension {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *MemRepo) ListScriptFiles(_ context.Context, visualizationID int64) ([]models.ScriptFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.find(visualizationID)
	if v == nil {
		return nil, nil
	}
	return append([]models.ScriptFile(nil), v.ScriptFiles...), nil
}

func (r *MemRepo) ListAllFiles(_ context.Context) ([]models.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.StoredFile
	for _, v := range r.visualizations {
		for _, f := range v.DataFiles {
			out = append(out, f.StoredFile)
		}
		for _, f := range v.ScriptFiles {
			out = append(out, f.StoredFile)
		}
	}
	return out, nil
}

func (r *MemRepo) Close() error { return nil }
