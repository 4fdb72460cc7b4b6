package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sales-visualizer/backend/internal/store"
)

// readUploadForm extracts the file bytes and target visualization ID from a
// multipart upload request.
func readUploadForm(c echo.Context) (data []byte, filename string, visualizationID int64, apiErr *APIError) {
	idParam := c.FormValue("visualizationId")
	if idParam == "" {
		return nil, "", 0, NewBadRequestError("visualizationId is required", nil)
	}
	visualizationID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return nil, "", 0, NewBadRequestError("invalid visualization ID", err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", 0, NewBadRequestError("no file part in the request", err)
	}
	if fh.Filename == "" {
		return nil, "", 0, NewBadRequestError("no selected file", nil)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", 0, NewInternalError("failed to open uploaded file", err)
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, "", 0, NewInternalError("failed to read uploaded file", err)
	}
	return data, fh.Filename, visualizationID, nil
}

// HandleUploadData accepts a CSV upload for a visualization, validates it
// against the visualization's schema contract, and persists it on success.
// Validation rejections return the full diagnostic list; nothing is stored
// for a rejected upload.
func (h *Handler) HandleUploadData(c echo.Context) error {
	data, filename, visualizationID, apiErr := readUploadForm(c)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}

	ctx := c.Request().Context()

	if _, err := h.repo.GetVisualization(ctx, visualizationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RespondWithError(c, NewNotFoundError("visualization", strconv.FormatInt(visualizationID, 10)))
		}
		return RespondWithError(c, NewInternalError("failed to resolve visualization", err))
	}

	verdict := h.validator.Validate(data, visualizationID)
	if !verdict.Admit {
		if h.metrics != nil && len(verdict.Reasons) > 0 {
			h.metrics.UploadsRejected.WithLabelValues(string(verdict.Reasons[0].Kind)).Inc()
		}
		h.logger.Info("upload rejected",
			"visualization", visualizationID, "file", filename, "reasons", len(verdict.Reasons))
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Status:  "rejected",
			Message: "file validation failed",
			Errors:  verdict.Messages(),
		})
	}

	if _, err := h.persister.PersistData(ctx, data, filename, visualizationID, verdict.SampleRows); err != nil {
		h.logger.Error("data upload persistence failed", "file", filename, "error", err)
		return RespondWithError(c, NewInternalError("failed to store uploaded file", err))
	}

	if h.metrics != nil {
		h.metrics.UploadsAdmitted.Inc()
	}
	return c.JSON(http.StatusOK, uploadResponse{
		Status:  "ok",
		Message: "file uploaded and validated successfully",
	})
}

// HandleUploadScript accepts a statistical script for a visualization and
// makes it the active script. Script content is opaque: it is stored and
// registered without any validation beyond being non-empty.
func (h *Handler) HandleUploadScript(c echo.Context) error {
	data, filename, visualizationID, apiErr := readUploadForm(c)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}

	// Script content is opaque, but an empty script can never produce chart
	// output and must not become the active script.
	if len(data) == 0 {
		return RespondWithError(c, NewBadRequestError("uploaded script is empty", nil))
	}

	ctx := c.Request().Context()

	// Resolve the target before writing anything to disk.
	if _, err := h.repo.GetVisualization(ctx, visualizationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RespondWithError(c, NewNotFoundError("visualization", strconv.FormatInt(visualizationID, 10)))
		}
		return RespondWithError(c, NewInternalError("failed to resolve visualization", err))
	}

	if _, err := h.persister.PersistScript(ctx, data, filename, visualizationID); err != nil {
		h.logger.Error("script upload persistence failed", "file", filename, "error", err)
		return RespondWithError(c, NewInternalError("failed to store uploaded script", err))
	}

	if h.metrics != nil {
		h.metrics.UploadsAdmitted.Inc()
	}
	return c.JSON(http.StatusOK, uploadResponse{
		Status:  "ok",
		Message: "script uploaded successfully",
	})
}
