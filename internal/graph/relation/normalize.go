// Package relation converts heterogeneous extracted relation shapes into one
// canonical record. Models return 3-tuples, 4-tuples with a highlighted flag,
// or objects depending on prompt drift; downstream code only ever sees
// Relation.
package relation

import (
	"fmt"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
)

// Relation is the canonical post-normalization edge record. Source and
// Target are free-text concept labels used as node identity keys
// (case-sensitive exact match).
type Relation struct {
	Source      string
	Label       string
	Target      string
	Highlighted bool
}

// InvalidEdgeFormatError is returned when a non-empty parsed array yields
// zero usable relations after filtering.
type InvalidEdgeFormatError struct {
	Total   int
	Skipped int
}

func (e *InvalidEdgeFormatError) Error() string {
	return fmt.Sprintf("no usable relations in response (%d elements, %d skipped)", e.Total, e.Skipped)
}

// Normalize maps each parsed element onto a Relation. Malformed elements are
// skipped with a warning rather than failing the whole batch; the source
// variants disagreed here and skip-with-warning was chosen deliberately.
func Normalize(parsed []any, log *logger.Logger) ([]Relation, error) {
	out := make([]Relation, 0, len(parsed))
	skipped := 0
	for idx, elem := range parsed {
		rel, ok := normalizeOne(elem)
		if !ok {
			skipped++
			if log != nil {
				log.Warn("Skipping malformed relation element", "index", idx, "element", elem)
			}
			continue
		}
		out = append(out, rel)
	}
	if len(parsed) > 0 && len(out) == 0 {
		return nil, &InvalidEdgeFormatError{Total: len(parsed), Skipped: skipped}
	}
	return out, nil
}

func normalizeOne(elem any) (Relation, bool) {
	switch v := elem.(type) {
	case []any:
		if len(v) < 3 {
			return Relation{}, false
		}
		src, okS := v[0].(string)
		rel, okR := v[1].(string)
		tgt, okT := v[2].(string)
		if !okS || !okR || !okT {
			return Relation{}, false
		}
		highlighted := false
		if len(v) >= 4 {
			if b, ok := v[3].(bool); ok {
				highlighted = b
			}
		}
		return Relation{Source: src, Label: rel, Target: tgt, Highlighted: highlighted}, true

	case map[string]any:
		src, okS := v["source"].(string)
		rel, okR := v["relation"].(string)
		tgt, okT := v["target"].(string)
		if !okS || !okR || !okT {
			return Relation{}, false
		}
		highlighted := false
		if b, ok := v["highlighted"].(bool); ok {
			highlighted = b
		}
		return Relation{Source: src, Label: rel, Target: tgt, Highlighted: highlighted}, true

	default:
		return Relation{}, false
	}
}
