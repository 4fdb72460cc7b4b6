package models

// Point is a single numeric chart coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is a named, ordered sequence of points. It is also the wire shape
// the external script must emit on stdout.
type Series struct {
	Name   string  `json:"name"`
	Values []Point `json:"values"`
}

// ChartResponse is the chart result returned to callers. The shape is
// identical whether the series come from the external script or from the
// deterministic fallback; only the values differ.
type ChartResponse struct {
	VisualizationID int64    `json:"visualizationId"`
	Name            string   `json:"name"`
	Prediction      bool     `json:"prediction"`
	Spread          string   `json:"spread"`
	StartDate       string   `json:"startDate"`
	EndDate         string   `json:"endDate"`
	Values          []Series `json:"values"`
}
