// Package validate decides whether an uploaded file is admissible for a
// visualization. It only reads input and returns a verdict; it never touches
// storage or the database.
package validate

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sales-visualizer/backend/internal/schema"
)

const (
	// SampleRows bounds how many rows are parsed during validation. The
	// resulting count is a sample count, not a full-file count; a full count
	// would need a second full scan.
	SampleRows = 1000

	// maxShownUnexpected caps how many unrecognized column names are listed
	// in a header mismatch diagnostic.
	maxShownUnexpected = 10

	fieldSeparator = ';'
)

// ReasonKind classifies a rejection.
type ReasonKind string

const (
	ReasonUnreadableInput  ReasonKind = "unreadable_input"
	ReasonUnknownSchema    ReasonKind = "unknown_schema"
	ReasonHeaderMismatch   ReasonKind = "header_mismatch"
	ReasonUnparsableSample ReasonKind = "unparsable_sample"
)

// Reason is one human-readable rejection diagnostic.
type Reason struct {
	Kind    ReasonKind `json:"kind"`
	Message string     `json:"message"`
}

// Verdict is the outcome of validating one upload.
type Verdict struct {
	Admit      bool
	SampleRows int
	Reasons    []Reason
}

// Messages returns the rejection messages in emission order.
func (v Verdict) Messages() []string {
	msgs := make([]string, 0, len(v.Reasons))
	for _, r := range v.Reasons {
		msgs = append(msgs, r.Message)
	}
	return msgs
}

// Validator checks uploads against the schema registry's contracts.
type Validator struct {
	registry *schema.Registry
}

// New creates a validator backed by the given registry.
func New(registry *schema.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate produces an admit/reject verdict for raw upload bytes targeting a
// visualization.
//
// The header comparison is exact, ordered, and case-sensitive: received
// headers must equal the required contract element-for-element. After a
// header match, up to SampleRows rows are parsed as raw text purely to
// confirm the file is structurally parseable; no type coercion happens here.
func (v *Validator) Validate(data []byte, visualizationID int64) Verdict {
	if len(bytes.TrimSpace(data)) == 0 {
		return reject(ReasonUnreadableInput, "unable to parse CSV headers: empty upload")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = fieldSeparator

	received, err := r.Read()
	if err != nil {
		return reject(ReasonUnreadableInput, fmt.Sprintf("unable to parse CSV headers: %v", err))
	}

	// Resolve the contract before any row-level work.
	required, ok := v.registry.Headers(visualizationID)
	if !ok {
		return reject(ReasonUnknownSchema, fmt.Sprintf("unknown visualization ID: %d", visualizationID))
	}

	if !slices.Equal(required, received) {
		return Verdict{Reasons: headerMismatch(required, received)}
	}

	rows := 0
	for rows < SampleRows {
		if _, err := r.Read(); err != nil {
			if err == io.EOF {
				break
			}
			return reject(ReasonUnparsableSample, fmt.Sprintf("failed to parse CSV sample rows: %v", err))
		}
		rows++
	}

	return Verdict{Admit: true, SampleRows: rows}
}

// headerMismatch builds the two independent diagnostics for a failed header
// comparison: required columns absent from the received list, and received
// columns not present in the contract (truncated past maxShownUnexpected).
func headerMismatch(required, received []string) []Reason {
	var reasons []Reason

	var missing []string
	for _, h := range required {
		if !slices.Contains(received, h) {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		reasons = append(reasons, Reason{
			Kind:    ReasonHeaderMismatch,
			Message: fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")),
		})
	}

	var extra []string
	for _, h := range received {
		if !slices.Contains(required, h) {
			extra = append(extra, h)
		}
	}
	if len(extra) > 0 {
		msg := fmt.Sprintf("Unexpected columns: %s", strings.Join(truncate(extra, maxShownUnexpected), ", "))
		if len(extra) > maxShownUnexpected {
			msg += fmt.Sprintf(", and %d more.", len(extra)-maxShownUnexpected)
		}
		reasons = append(reasons, Reason{Kind: ReasonHeaderMismatch, Message: msg})
	}

	if len(reasons) == 0 {
		// Same name sets but different order or duplicates; the contract is
		// positional, so this is still a mismatch.
		reasons = append(reasons, Reason{
			Kind:    ReasonHeaderMismatch,
			Message: fmt.Sprintf("Columns out of order: expected %s", strings.Join(required, ", ")),
		})
	}

	return reasons
}

func truncate(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func reject(kind ReasonKind, message string) Verdict {
	return Verdict{Reasons: []Reason{{Kind: kind, Message: message}}}
}
