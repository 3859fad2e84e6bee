package status

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()

	if _, ok, _ := s.Get(ctx, id); ok {
		t.Fatalf("Get before Set: want ok=false")
	}

	if err := s.Set(ctx, id, BuildStatus{Status: StateProcessing, Progress: 10, Message: "parsing"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	st, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if st.Status != StateProcessing || st.Progress != 10 {
		t.Fatalf("Get: got=%+v", st)
	}
	if st.CreatedAt.IsZero() {
		t.Fatalf("Get: want CreatedAt stamped")
	}
}

func TestMemoryStoreUpdatePreservesSnapshot(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()

	if err := s.Set(ctx, id, BuildStatus{Status: StateProcessing, Progress: 10, Message: "parsing", MaxNodes: 25}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Update(ctx, id, 60, "extracting knowledge"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	st, ok, _ := s.Get(ctx, id)
	if !ok {
		t.Fatalf("Get: want ok=true")
	}
	if st.Progress != 60 || st.Message != "extracting knowledge" {
		t.Fatalf("Update fields: got=%+v", st)
	}
	if st.MaxNodes != 25 || st.Status != StateProcessing {
		t.Fatalf("Update must preserve snapshot: got=%+v", st)
	}
}

func TestMemoryStoreUpdateCreatesMissingEntry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()

	if err := s.Update(ctx, id, 30, "re-extracting"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	st, ok, _ := s.Get(ctx, id)
	if !ok || st.Status != StateProcessing || st.Progress != 30 {
		t.Fatalf("Update on missing entry: ok=%v got=%+v", ok, st)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(p int) {
			defer wg.Done()
			_ = s.Update(ctx, id, p, "working")
		}(i)
		go func() {
			defer wg.Done()
			_, _, _ = s.Get(ctx, id)
		}()
	}
	wg.Wait()

	if _, ok, _ := s.Get(ctx, id); !ok {
		t.Fatalf("Get after concurrent updates: want ok=true")
	}
}
