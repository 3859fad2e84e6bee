package jsonrepair

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

func TestRepairValidJSONIsIdempotent(t *testing.T) {
	log := testLogger(t)
	raw := `[["Biology","contains","Cell"],["Cell","contains","Nucleus"]]`

	got, err := Repair(raw, log)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	want := []any{
		[]any{"Biology", "contains", "Cell"},
		[]any{"Cell", "contains", "Nucleus"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Repair: want=%v got=%v", want, got)
	}
}

func TestRepairStripsMarkdownFences(t *testing.T) {
	log := testLogger(t)
	raw := "```json\n[[\"A\",\"contains\",\"B\"]]\n```"

	got, err := Repair(raw, log)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Repair element count: want=1 got=%d", len(got))
	}
}

func TestRepairIsolatesArrayFromProse(t *testing.T) {
	log := testLogger(t)
	raw := "Here are the extracted relations:\n[[\"A\",\"contains\",\"B\"]]\nLet me know if you need more."

	got, err := Repair(raw, log)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Repair element count: want=1 got=%d", len(got))
	}
}

func TestRepairCollapsesNewlines(t *testing.T) {
	log := testLogger(t)
	raw := "[\n  [\"A\", \"contains\", \"B\"],\n  [\"A\", \"contains\", \"C\"]\n]"

	got, err := Repair(raw, log)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Repair element count: want=2 got=%d", len(got))
	}
}

func TestRepairNormalizesSingleQuotes(t *testing.T) {
	log := testLogger(t)
	raw := `[['A', 'contains', 'B']]`

	got, err := Repair(raw, log)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	want := []any{[]any{"A", "contains", "B"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Repair: want=%v got=%v", want, got)
	}
}

func TestRepairInsertsMissingComma(t *testing.T) {
	log := testLogger(t)
	raw := `[["A","contains","B"] ["A","contains","C"]]`

	got, err := Repair(raw, log)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	want := []any{
		[]any{"A", "contains", "B"},
		[]any{"A", "contains", "C"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Repair: want=%v got=%v", want, got)
	}
}

func TestRepairPermissiveLiterals(t *testing.T) {
	log := testLogger(t)
	raw := `[["A", "contains", "B", True], ["A", "contains", "C", False],]`

	got, err := Repair(raw, log)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Repair element count: want=2 got=%d", len(got))
	}
	first, ok := got[0].([]any)
	if !ok || len(first) != 4 {
		t.Fatalf("Repair first element: want 4-tuple got=%v", got[0])
	}
	if first[3] != true {
		t.Fatalf("Repair flag: want=true got=%v", first[3])
	}
}

func TestRepairRejectsNonArray(t *testing.T) {
	log := testLogger(t)
	// An object wrapping the array body still has '[' and ']' inside, so the
	// isolation step extracts the inner array; a truly bare object must fail.
	raw := `{"source": "A"}`

	_, err := Repair(raw, log)
	var ufe *UnrecoverableFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("Repair error: want UnrecoverableFormatError got=%v", err)
	}
}

func TestRepairEmptyInputFails(t *testing.T) {
	log := testLogger(t)

	_, err := Repair("", log)
	var ufe *UnrecoverableFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("Repair error: want UnrecoverableFormatError got=%v", err)
	}
	if ufe.Raw != "" {
		t.Fatalf("Repair error Raw: want empty got=%q", ufe.Raw)
	}
}

func TestRepairGarbageCarriesOriginalText(t *testing.T) {
	log := testLogger(t)
	raw := "[this is not json at all"

	_, err := Repair(raw, log)
	var ufe *UnrecoverableFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("Repair error: want UnrecoverableFormatError got=%v", err)
	}
	if ufe.Raw != raw {
		t.Fatalf("Repair error Raw: want original text got=%q", ufe.Raw)
	}
}
