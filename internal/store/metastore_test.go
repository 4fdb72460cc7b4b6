package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sales-visualizer/backend/internal/models"
)

func newTestMetaStore(t *testing.T) *MetaStore {
	t.Helper()
	s, err := NewMetaStore(filepath.Join(t.TempDir(), "meta.duckdb"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Seed(context.Background(), DefaultVisualizations))
	return s
}

func TestMetaStore_SeedIdempotent(t *testing.T) {
	s := newTestMetaStore(t)
	ctx := context.Background()

	// Seeding again must not duplicate rows.
	require.NoError(t, s.Seed(ctx, DefaultVisualizations))

	vis, err := s.ListVisualizations(ctx)
	require.NoError(t, err)
	require.Len(t, vis, 3)
	assert.Equal(t, int64(1), vis[0].ID)
	assert.Equal(t, "Sales Data History", vis[0].Name)
	assert.True(t, vis[2].Prediction)
	assert.Nil(t, vis[0].ActiveScriptID)
}

func TestMetaStore_GetVisualization(t *testing.T) {
	s := newTestMetaStore(t)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetVisualization(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("with collections", func(t *testing.T) {
		df := &models.DataFile{
			StoredFile: models.StoredFile{
				Name:            "sales.csv",
				Path:            "/store/1/data/sales.csv",
				UploadedAt:      time.Now().UTC().Truncate(time.Second),
				VisualizationID: 1,
			},
			RowsSampled: 42,
			Extension:   ".csv",
			Timespan:    PlaceholderTimespan,
		}
		require.NoError(t, s.InsertDataFile(ctx, df))
		assert.NotZero(t, df.ID)

		v, err := s.GetVisualization(ctx, 1)
		require.NoError(t, err)
		require.Len(t, v.DataFiles, 1)
		assert.Equal(t, "sales.csv", v.DataFiles[0].Name)
		assert.Equal(t, 42, v.DataFiles[0].RowsSampled)
		assert.Equal(t, PlaceholderTimespan, v.DataFiles[0].Timespan)
		assert.Empty(t, v.ScriptFiles)
	})
}

func TestMetaStore_ActiveScriptPointer(t *testing.T) {
	s := newTestMetaStore(t)
	ctx := context.Background()

	first := &models.ScriptFile{StoredFile: models.StoredFile{
		Name: "model_v1.R", Path: "/store/1/rscripts/model_v1.R",
		UploadedAt: time.Now().UTC(), VisualizationID: 1,
	}}
	second := &models.ScriptFile{StoredFile: models.StoredFile{
		Name: "model_v2.R", Path: "/store/1/rscripts/model_v2.R",
		UploadedAt: time.Now().UTC(), VisualizationID: 1,
	}}

	require.NoError(t, s.InsertScriptFile(ctx, first))
	require.NoError(t, s.InsertScriptFile(ctx, second))

	v, err := s.GetVisualization(ctx, 1)
	require.NoError(t, err)
	require.Len(t, v.ScriptFiles, 2)

	// Last attach wins, via the explicit pointer rather than list order.
	require.NotNil(t, v.ActiveScriptID)
	assert.Equal(t, second.ID, *v.ActiveScriptID)

	active := v.ActiveScript()
	require.NotNil(t, active)
	assert.Equal(t, "model_v2.R", active.Name)
}

func TestMetaStore_InsertScriptFile_UnknownVisualization(t *testing.T) {
	s := newTestMetaStore(t)

	f := &models.ScriptFile{StoredFile: models.StoredFile{
		Name: "model.R", Path: "/x", UploadedAt: time.Now().UTC(), VisualizationID: 99,
	}}
	err := s.InsertScriptFile(context.Background(), f)
	assert.ErrorIs(t, err, ErrNotFound)

	// The rolled-back insert must not be visible.
	scripts, err := s.ListScriptFiles(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, scripts)
}

func TestMetaStore_ListDataFiles_ExtensionFilter(t *testing.T) {
	s := newTestMetaStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.csv", "b.xlsx", "c.csv"} {
		f := &models.DataFile{
			StoredFile: models.StoredFile{
				Name: name, Path: "/store/1/data/" + name,
				UploadedAt: time.Now().UTC(), VisualizationID: 1,
			},
			RowsSampled: 1,
			Extension:   filepath.Ext(name),
			Timespan:    PlaceholderTimespan,
		}
		require.NoError(t, s.InsertDataFile(ctx, f))
	}

	all, err := s.ListDataFiles(ctx, FileFilter{VisualizationID: 1})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	csvs, err := s.ListDataFiles(ctx, FileFilter{VisualizationID: 1, Extension: ".csv"})
	require.NoError(t, err)
	require.Len(t, csvs, 2)
	assert.Equal(t, "a.csv", csvs[0].Name)
	assert.Equal(t, "c.csv", csvs[1].Name)

	other, err := s.ListDataFiles(ctx, FileFilter{VisualizationID: 2})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMetaStore_ListAllFiles(t *testing.T) {
	s := newTestMetaStore(t)
	ctx := context.Background()

	df := &models.DataFile{
		StoredFile: models.StoredFile{
			Name: "sales.csv", Path: "/store/1/data/sales.csv",
			UploadedAt: time.Now().UTC(), VisualizationID: 1,
		},
		RowsSampled: 2, Extension: ".csv", Timespan: PlaceholderTimespan,
	}
	sf := &models.ScriptFile{StoredFile: models.StoredFile{
		Name: "model.R", Path: "/store/1/rscripts/model.R",
		UploadedAt: time.Now().UTC(), VisualizationID: 1,
	}}
	require.NoError(t, s.InsertDataFile(ctx, df))
	require.NoError(t, s.InsertScriptFile(ctx, sf))

	files, err := s.ListAllFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "sales.csv", files[0].Name)
	assert.Equal(t, "model.R", files[1].Name)
	assert.Less(t, files[0].ID, files[1].ID)
}
