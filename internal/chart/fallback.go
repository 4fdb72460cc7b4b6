package chart

import "github.com/sales-visualizer/backend/internal/models"

// FallbackSeries returns the fixed two-series placeholder dataset served
// when script invocation or output parsing fails. It matches the shape of a
// real result exactly, so chart consumers never need failure-specific
// handling.
func FallbackSeries() []models.Series {
	return []models.Series{
		{
			Name: "history",
			Values: []models.Point{
				{X: 1, Y: 120}, {X: 2, Y: 132}, {X: 3, Y: 101}, {X: 4, Y: 134},
				{X: 5, Y: 90}, {X: 6, Y: 230}, {X: 7, Y: 210},
			},
		},
		{
			Name: "forecast",
			Values: []models.Point{
				{X: 1, Y: 220}, {X: 2, Y: 182}, {X: 3, Y: 191}, {X: 4, Y: 234},
				{X: 5, Y: 290}, {X: 6, Y: 330}, {X: 7, Y: 310},
			},
		},
	}
}
