// Package status tracks the live state of in-flight graph builds, keyed by
// topology id. Pollers read it; only the owning background build writes it,
// so last-write-wins is safe.
package status

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Build states as exposed to polling callers.
const (
	StateProcessing = "processing"
	StateCompleted  = "completed"
	StateError      = "error"
)

// BuildStatus is the poll-visible snapshot of one build.
type BuildStatus struct {
	Status         string    `json:"status"`
	Progress       int       `json:"progress"`
	Message        string    `json:"message"`
	NodeCount      int       `json:"node_count,omitempty"`
	EdgeCount      int       `json:"edge_count,omitempty"`
	TextLength     int       `json:"text_length,omitempty"`
	MaxNodes       int       `json:"max_nodes"`
	ProcessingTime float64   `json:"processing_time,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is the shared status map. Implementations must be safe for
// concurrent readers against a single writer per topology id.
type Store interface {
	Set(ctx context.Context, topologyID uuid.UUID, st BuildStatus) error
	// Update overwrites only progress and message, preserving the rest of
	// the snapshot. A missing entry is created as processing.
	Update(ctx context.Context, topologyID uuid.UUID, progress int, message string) error
	Get(ctx context.Context, topologyID uuid.UUID) (BuildStatus, bool, error)
	Delete(ctx context.Context, topologyID uuid.UUID) error
}
