package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sales-visualizer/backend/internal/models"
	"github.com/sales-visualizer/backend/internal/store"
)

// fileSearchRequest selects stored files by visualization, optionally
// narrowed by extension.
type fileSearchRequest struct {
	VisualizationID int64  `json:"visualizationId"`
	Extension       string `json:"extension"`
}

func (h *Handler) downloadURL(path string) string {
	if h.files == nil {
		return ""
	}
	return StorePrefix + "/" + h.files.Rel(path)
}

func (h *Handler) fileDTO(f models.StoredFile) models.FileDTO {
	return models.FileDTO{
		ID:              f.ID,
		Name:            f.Name,
		FilePath:        f.Path,
		UploadTime:      f.UploadedAt,
		DownloadURL:     h.downloadURL(f.Path),
		VisualizationID: f.VisualizationID,
	}
}

// HandleSearchDataFiles returns the data files of a visualization, optionally
// filtered by extension.
func (h *Handler) HandleSearchDataFiles(c echo.Context) error {
	var req fileSearchRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.VisualizationID == 0 {
		return RespondWithError(c, NewValidationError("visualizationId"))
	}

	files, err := h.repo.ListDataFiles(c.Request().Context(), store.FileFilter{
		VisualizationID: req.VisualizationID,
		Extension:       req.Extension,
	})
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list data files", err))
	}

	out := make([]models.FileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, h.fileDTO(f.StoredFile))
	}
	return c.JSON(http.StatusOK, out)
}

// HandleSearchScriptFiles returns the script files of a visualization.
func (h *Handler) HandleSearchScriptFiles(c echo.Context) error {
	var req fileSearchRequest
	if err := c.Bind(&req); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid request body", err))
	}
	if req.VisualizationID == 0 {
		return RespondWithError(c, NewValidationError("visualizationId"))
	}

	files, err := h.repo.ListScriptFiles(c.Request().Context(), req.VisualizationID)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list script files", err))
	}

	out := make([]models.FileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, h.fileDTO(f.StoredFile))
	}
	return c.JSON(http.StatusOK, out)
}

// HandleListFiles returns every stored file across all visualizations.
func (h *Handler) HandleListFiles(c echo.Context) error {
	files, err := h.repo.ListAllFiles(c.Request().Context())
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list files", err))
	}

	out := make([]models.FileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, h.fileDTO(f))
	}
	return c.JSON(http.StatusOK, out)
}

// HandleListVisualizations returns the visualization catalog. LastUpdates
// carries the upload times of each visualization's data files, newest first,
// so clients can show upload recency without a second request.
func (h *Handler) HandleListVisualizations(c echo.Context) error {
	ctx := c.Request().Context()

	visualizations, err := h.repo.ListVisualizations(ctx)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list visualizations", err))
	}

	out := make([]models.VisualizationDTO, 0, len(visualizations))
	for _, v := range visualizations {
		files, err := h.repo.ListDataFiles(ctx, store.FileFilter{VisualizationID: v.ID})
		if err != nil {
			return RespondWithError(c, NewInternalError("failed to list data files", err))
		}
		updates := make([]time.Time, 0, len(files))
		for _, f := range files {
			updates = append(updates, f.UploadedAt)
		}
		sort.Slice(updates, func(i, j int) bool { return updates[i].After(updates[j]) })

		out = append(out, models.VisualizationDTO{
			ID:           v.ID,
			Name:         v.Name,
			Description:  v.Description,
			IsPrediction: v.Prediction,
			LastUpdates:  updates,
		})
	}
	return c.JSON(http.StatusOK, out)
}
