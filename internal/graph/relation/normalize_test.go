package relation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func TestNormalizeTriples(t *testing.T) {
	log := testLogger(t)
	parsed := []any{
		[]any{"A", "contains", "B"},
		[]any{"B", "contains", "C"},
	}

	got, err := Normalize(parsed, log)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []Relation{
		{Source: "A", Label: "contains", Target: "B"},
		{Source: "B", Label: "contains", Target: "C"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize: want=%v got=%v", want, got)
	}
}

func TestNormalizeQuadrupleKeepsFlag(t *testing.T) {
	log := testLogger(t)
	parsed := []any{[]any{"A", "contains", "B", true}}

	got, err := Normalize(parsed, log)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 1 || !got[0].Highlighted {
		t.Fatalf("Normalize highlighted: want=true got=%v", got)
	}
}

func TestNormalizeObjectShape(t *testing.T) {
	log := testLogger(t)
	parsed := []any{
		map[string]any{"source": "A", "relation": "contains", "target": "B"},
		map[string]any{"source": "B", "relation": "contains", "target": "C", "highlighted": true},
	}

	got, err := Normalize(parsed, log)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Normalize count: want=2 got=%d", len(got))
	}
	if got[0].Highlighted || !got[1].Highlighted {
		t.Fatalf("Normalize highlighted flags: got=%v", got)
	}
}

func TestNormalizeSkipsMalformedElements(t *testing.T) {
	log := testLogger(t)
	parsed := []any{
		[]any{"A", "contains", "B"},
		[]any{"only", "two"},
		"not an edge at all",
		map[string]any{"source": "X"},
		float64(42),
	}

	got, err := Normalize(parsed, log)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Normalize count: want=1 got=%d", len(got))
	}
}

func TestNormalizeAllMalformedFails(t *testing.T) {
	log := testLogger(t)
	parsed := []any{"junk", float64(1)}

	_, err := Normalize(parsed, log)
	var ife *InvalidEdgeFormatError
	if !errors.As(err, &ife) {
		t.Fatalf("Normalize error: want InvalidEdgeFormatError got=%v", err)
	}
	if ife.Skipped != 2 {
		t.Fatalf("Normalize skipped: want=2 got=%d", ife.Skipped)
	}
}

func TestNormalizeEmptyInputIsNotAnError(t *testing.T) {
	log := testLogger(t)

	got, err := Normalize(nil, log)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Normalize count: want=0 got=%d", len(got))
	}
}
