// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/sales-visualizer/backend/internal/metrics"
)

// RegisterRoutes registers all API routes with the Echo instance. When a
// metrics set is given, its registry is exposed on /metrics and stored files
// are served under StorePrefix if a file store was wired.
func RegisterRoutes(e *echo.Echo, h *Handler, m *metrics.Metrics) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/api/health", h.HandleHealth)

	uploadGroup := e.Group("/api/upload")
	uploadGroup.POST("/data", h.HandleUploadData)
	uploadGroup.POST("/script", h.HandleUploadScript)

	filesGroup := e.Group("/api/files")
	filesGroup.GET("", h.HandleListFiles)
	filesGroup.POST("/search", h.HandleSearchDataFiles)
	filesGroup.POST("/search/scripts", h.HandleSearchScriptFiles)

	e.GET("/api/visualizations", h.HandleListVisualizations)
	e.POST("/api/visualizations/chart", h.HandleChart)
	e.POST("/api/visualizations/chart/msgpack", h.HandleChartMsgpack)

	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	if h.files != nil {
		e.Static(StorePrefix, h.files.Root())
	}
}
