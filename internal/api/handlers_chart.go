package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sales-visualizer/backend/internal/chart"
	"github.com/sales-visualizer/backend/internal/models"
)

func (h *Handler) generateChart(c echo.Context) (*models.ChartResponse, *APIError) {
	var q chart.Query
	if err := c.Bind(&q); err != nil {
		return nil, NewBadRequestError("invalid request body", err)
	}

	resp, err := h.generator.Generate(c.Request().Context(), q)
	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, chart.ErrVisualizationNotFound):
		return nil, NewNotFoundError("visualization", strconv.FormatInt(q.VisualizationID, 10))
	case errors.Is(err, chart.ErrNoScriptAttached):
		return nil, NewNotFoundError("active script for visualization", strconv.FormatInt(q.VisualizationID, 10))
	case errors.Is(err, chart.ErrMissingDateRange), errors.Is(err, chart.ErrMissingSpread):
		return nil, NewBadRequestError(err.Error(), nil)
	default:
		return nil, NewInternalError("chart generation failed", err)
	}
}

// HandleChart generates chart data for a visualization as JSON.
func (h *Handler) HandleChart(c echo.Context) error {
	resp, apiErr := h.generateChart(c)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleChartMsgpack generates chart data in MessagePack format, which is
// noticeably smaller than JSON for dense point series.
func (h *Handler) HandleChartMsgpack(c echo.Context) error {
	resp, apiErr := h.generateChart(c)
	if apiErr != nil {
		return RespondWithError(c, apiErr)
	}

	data, err := msgpack.Marshal(resp)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to encode msgpack", err))
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}
