// Package chart produces chart data for a visualization by invoking its
// active statistical script, with a deterministic fallback when the script
// fails. Callers always receive the same response shape; only the values
// differ on failure.
package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sales-visualizer/backend/internal/metrics"
	"github.com/sales-visualizer/backend/internal/models"
	"github.com/sales-visualizer/backend/internal/store"
)

// DateLayout is the positional-argument date format handed to scripts.
const DateLayout = "02/01/2006"

// DefaultScriptTimeout bounds an invocation when no timeout is configured.
const DefaultScriptTimeout = 30 * time.Second

// State names the phases of one chart request. Fallback absorbs failures
// from invoking and parsing; resolution failures terminate instead.
type State string

const (
	StateResolving State = "resolving"
	StateInvoking  State = "invoking"
	StateParsing   State = "parsing"
	StateFallback  State = "fallback"
	StateDone      State = "done"
)

// Terminal errors. Script execution and output parsing failures are not
// here on purpose: those are absorbed into the fallback, never surfaced.
var (
	ErrVisualizationNotFound = errors.New("visualization not found")
	ErrNoScriptAttached      = errors.New("no script attached to visualization")
	ErrMissingDateRange      = errors.New("chart query requires a valid date range")
	ErrMissingSpread         = errors.New("chart query requires a spread")
)

// Query is a typed, validated chart request. Dates use DateLayout.
type Query struct {
	VisualizationID int64  `json:"visualizationId"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Spread          string `json:"spread"`
}

func (q Query) dateRange() (start, end time.Time, err error) {
	if q.StartDate == "" || q.EndDate == "" {
		return start, end, ErrMissingDateRange
	}
	if start, err = time.Parse(DateLayout, q.StartDate); err != nil {
		return start, end, fmt.Errorf("%w: bad start date %q", ErrMissingDateRange, q.StartDate)
	}
	if end, err = time.Parse(DateLayout, q.EndDate); err != nil {
		return start, end, fmt.Errorf("%w: bad end date %q", ErrMissingDateRange, q.EndDate)
	}
	return start, end, nil
}

// Generator runs the per-request chart state machine.
type Generator struct {
	repo    store.Repository
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGenerator wires a generator. A non-positive timeout gets the default;
// nil logger/metrics are allowed.
func NewGenerator(repo store.Repository, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Generator {
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{repo: repo, timeout: timeout, logger: logger, metrics: m}
}

// Generate resolves the visualization, invokes its active script, and
// returns the normalized chart response. Resolution failures terminate with
// a typed error before any process is spawned; once a script was found,
// every invocation or parsing failure yields the fallback series instead of
// an error.
func (g *Generator) Generate(ctx context.Context, q Query) (*models.ChartResponse, error) {
	if g.metrics != nil {
		g.metrics.ChartRequests.Inc()
	}

	// Resolving.
	vis, err := g.repo.GetVisualization(ctx, q.VisualizationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrVisualizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve visualization: %w", err)
	}

	script := vis.ActiveScript()
	if script == nil {
		return nil, ErrNoScriptAttached
	}

	start, end, err := q.dateRange()
	if err != nil {
		return nil, err
	}
	if q.Spread == "" {
		return nil, ErrMissingSpread
	}

	// Invoking and parsing; one selection point decides on fallback.
	series, runErr := g.runScript(ctx, vis.ID, script, start, end, q.Spread)
	if runErr != nil {
		g.logger.Warn("chart script failed, serving fallback",
			"visualization", vis.ID, "script", script.Name, "state", StateFallback, "error", runErr)
		if g.metrics != nil {
			g.metrics.ChartFallbacks.Inc()
		}
		series = FallbackSeries()
	}

	return &models.ChartResponse{
		VisualizationID: vis.ID,
		Name:            vis.Name,
		Prediction:      vis.Prediction,
		Spread:          q.Spread,
		StartDate:       q.StartDate,
		EndDate:         q.EndDate,
		Values:          series,
	}, nil
}

// runScript executes the active script with the documented positional
// arguments and parses its stdout. The invocation is synchronous and bounded
// by the configured timeout; a timeout is treated like a non-zero exit.
func (g *Generator) runScript(ctx context.Context, visualizationID int64, script *models.ScriptFile, start, end time.Time, spread string) ([]models.Series, error) {
	invocation := uuid.New().String()

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, script.Path,
		strconv.FormatInt(visualizationID, 10),
		start.Format(DateLayout),
		end.Format(DateLayout),
		spread,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.Debug("invoking chart script",
		"invocation", invocation, "script", script.Path, "state", StateInvoking)

	began := time.Now()
	err := cmd.Run()
	if g.metrics != nil {
		g.metrics.ScriptDuration.Observe(time.Since(began).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("script execution failed (invocation %s, stderr %q): %w",
			invocation, stderr.String(), err)
	}

	series, err := parseScriptOutput(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("invocation %s: %w", invocation, err)
	}

	g.logger.Debug("chart script completed",
		"invocation", invocation, "series", len(series), "state", StateDone)
	return series, nil
}

// parseScriptOutput interprets stdout as an ordered collection of named
// series of numeric points. Fields beyond name and values are ignored, so a
// script may annotate its output freely. Anything else is malformed,
// including zero series: an empty chart is indistinguishable from a script
// that produced nothing.
func parseScriptOutput(out []byte) ([]models.Series, error) {
	var series []models.Series

	dec := json.NewDecoder(bytes.NewReader(out))
	if err := dec.Decode(&series); err != nil {
		return nil, fmt.Errorf("malformed script output: %w", err)
	}
	if dec.More() {
		return nil, errors.New("malformed script output: trailing data")
	}
	if len(series) == 0 {
		return nil, errors.New("malformed script output: no series")
	}
	for i, s := range series {
		if s.Name == "" {
			return nil, fmt.Errorf("malformed script output: series %d has no name", i)
		}
	}
	return series, nil
}
