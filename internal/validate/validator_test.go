package validate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sales-visualizer/backend/internal/schema"
)

const validSales = "ReceiptDateTime;ArticleId;NetAmountExcl;Quantity;Article;SubgroupId;MaingroupId;StoreId\n" +
	"2025-09-01 10:00:00;1001;12.50;1;Widget;10;1;StoreA\n" +
	"2025-09-01 11:00:00;1002;5.00;2;Gizmo;10;1;StoreA\n"

const missingStoreID = "ReceiptDateTime;ArticleId;NetAmountExcl;Quantity;Article;SubgroupId;MaingroupId\n" +
	"2025-09-01 10:00:00;1001;not_a_number;1;Widget;10;1\n"

const validVisitors = "AccessGroupId;Date;Time;NumberOfUsedEntrances\n" +
	"AG1;2025-09-01;10:00:00;5\n" +
	"AG2;2025-09-01;11:00:00;3\n"

func newValidator() *Validator {
	return New(schema.NewRegistry())
}

func reasonKinds(v Verdict) []ReasonKind {
	kinds := make([]ReasonKind, 0, len(v.Reasons))
	for _, r := range v.Reasons {
		kinds = append(kinds, r.Kind)
	}
	return kinds
}

func TestValidate_Admit(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		visID    int64
		wantRows int
	}{
		{"sales with two rows", validSales, 1, 2},
		{"visitors with two rows", validVisitors, 2, 2},
		{"header only", "AccessGroupId;Date;Time;NumberOfUsedEntrances\n", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := newValidator().Validate([]byte(tt.data), tt.visID)
			if !verdict.Admit {
				t.Fatalf("expected admit, got reject: %v", verdict.Messages())
			}
			if verdict.SampleRows != tt.wantRows {
				t.Errorf("expected %d sampled rows, got %d", tt.wantRows, verdict.SampleRows)
			}
		})
	}
}

func TestValidate_Reject(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		visID    int64
		wantKind ReasonKind
		wantMsg  string
	}{
		{
			name:     "empty payload",
			data:     "",
			visID:    1,
			wantKind: ReasonUnreadableInput,
			wantMsg:  "unable to parse CSV headers",
		},
		{
			name:     "whitespace only payload",
			data:     "  \n\t\n",
			visID:    1,
			wantKind: ReasonUnreadableInput,
			wantMsg:  "unable to parse CSV headers",
		},
		{
			name:     "bare quote in header row",
			data:     "Receipt\"DateTime;ArticleId\nx;y\n",
			visID:    1,
			wantKind: ReasonUnreadableInput,
			wantMsg:  "unable to parse CSV headers",
		},
		{
			name:     "unknown visualization id",
			data:     validSales,
			visID:    42,
			wantKind: ReasonUnknownSchema,
			wantMsg:  "unknown visualization ID: 42",
		},
		{
			name:     "missing required column",
			data:     missingStoreID,
			visID:    1,
			wantKind: ReasonHeaderMismatch,
			wantMsg:  "StoreId",
		},
		{
			name:     "case-sensitive match",
			data:     strings.ToLower(validVisitors),
			visID:    2,
			wantKind: ReasonHeaderMismatch,
			wantMsg:  "Missing required columns",
		},
		{
			name:     "ragged sample row",
			data:     validVisitors + "AG3;2025-09-02\n",
			visID:    2,
			wantKind: ReasonUnparsableSample,
			wantMsg:  "failed to parse CSV sample rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := newValidator().Validate([]byte(tt.data), tt.visID)
			if verdict.Admit {
				t.Fatal("expected reject, got admit")
			}
			kinds := reasonKinds(verdict)
			found := false
			for _, k := range kinds {
				if k == tt.wantKind {
					found = true
				}
			}
			if !found {
				t.Errorf("expected reason kind %s, got %v", tt.wantKind, kinds)
			}
			if !strings.Contains(strings.Join(verdict.Messages(), "\n"), tt.wantMsg) {
				t.Errorf("expected message containing %q, got %v", tt.wantMsg, verdict.Messages())
			}
		})
	}
}

func TestValidate_UnknownSchemaBeatsContent(t *testing.T) {
	// Any id without a contract rejects with unknown_schema regardless of
	// what the file contains.
	for _, data := range []string{validSales, validVisitors, "garbage;;;\n"} {
		verdict := newValidator().Validate([]byte(data), 999)
		if verdict.Admit {
			t.Fatal("expected reject for unknown id")
		}
		if verdict.Reasons[0].Kind != ReasonUnknownSchema {
			t.Errorf("expected unknown_schema, got %s", verdict.Reasons[0].Kind)
		}
	}
}

func TestValidate_HeaderDiagnostics(t *testing.T) {
	t.Run("missing equals required minus received", func(t *testing.T) {
		data := "AccessGroupId;Time\nAG1;10:00:00\n"
		verdict := newValidator().Validate([]byte(data), 2)
		if verdict.Admit {
			t.Fatal("expected reject")
		}
		msgs := strings.Join(verdict.Messages(), "\n")
		if !strings.Contains(msgs, "Date") || !strings.Contains(msgs, "NumberOfUsedEntrances") {
			t.Errorf("missing diagnostic incomplete: %v", verdict.Messages())
		}
		if strings.Contains(msgs, "Missing required columns: AccessGroupId") {
			t.Errorf("present column reported as missing: %v", verdict.Messages())
		}
	})

	t.Run("both diagnostics emitted together", func(t *testing.T) {
		data := "AccessGroupId;Date;Hour;Entrances\nAG1;2025-09-01;10;5\n"
		verdict := newValidator().Validate([]byte(data), 2)
		if len(verdict.Reasons) != 2 {
			t.Fatalf("expected missing and unexpected diagnostics, got %v", verdict.Messages())
		}
		msgs := strings.Join(verdict.Messages(), "\n")
		if !strings.Contains(msgs, "Missing required columns") || !strings.Contains(msgs, "Unexpected columns") {
			t.Errorf("expected both diagnostics, got %v", verdict.Messages())
		}
	})

	t.Run("unexpected list truncated past ten", func(t *testing.T) {
		headers := append([]string{}, "AccessGroupId", "Date", "Time", "NumberOfUsedEntrances")
		for i := 0; i < 13; i++ {
			headers = append(headers, fmt.Sprintf("Extra%02d", i))
		}
		data := strings.Join(headers, ";") + "\n"
		verdict := newValidator().Validate([]byte(data), 2)
		if verdict.Admit {
			t.Fatal("expected reject")
		}
		msgs := strings.Join(verdict.Messages(), "\n")
		if !strings.Contains(msgs, "and 3 more.") {
			t.Errorf("expected truncation note, got %v", verdict.Messages())
		}
		if strings.Contains(msgs, "Extra10") {
			t.Errorf("expected only first 10 unexpected names, got %v", verdict.Messages())
		}
	})

	t.Run("same names in different order", func(t *testing.T) {
		data := "Date;AccessGroupId;Time;NumberOfUsedEntrances\n"
		verdict := newValidator().Validate([]byte(data), 2)
		if verdict.Admit {
			t.Fatal("order deviation must reject")
		}
		if !strings.Contains(strings.Join(verdict.Messages(), "\n"), "out of order") {
			t.Errorf("expected order diagnostic, got %v", verdict.Messages())
		}
	})
}

func TestValidate_SampleBound(t *testing.T) {
	var b strings.Builder
	b.WriteString("AccessGroupId;Date;Time;NumberOfUsedEntrances\n")
	for i := 0; i < SampleRows+500; i++ {
		b.WriteString("AG1;2025-09-01;10:00:00;5\n")
	}

	verdict := newValidator().Validate([]byte(b.String()), 2)
	if !verdict.Admit {
		t.Fatalf("expected admit, got %v", verdict.Messages())
	}
	if verdict.SampleRows != SampleRows {
		t.Errorf("expected sample bounded at %d, got %d", SampleRows, verdict.SampleRows)
	}
}
