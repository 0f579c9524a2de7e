package metrics

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/scrumsquad/feedback-board/internal/core/ports"
	"github.com/scrumsquad/feedback-board/internal/infrastructure/db/memory"
)

func TestInstrumentStore_ObservesCalls(t *testing.T) {
	store := InstrumentStore(memory.NewStore())
	ctx := context.Background()

	before := testutil.CollectAndCount(StoreOperationDuration)
	if err := store.SaveAll(ctx, ports.KindUsers, []json.RawMessage{json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	records, err := store.LoadAll(ctx, ports.KindUsers)
	if err != nil || len(records) != 1 {
		t.Fatalf("LoadAll passthrough broken: %v %v", records, err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	after := testutil.CollectAndCount(StoreOperationDuration)
	if after < before+2 {
		t.Fatalf("expected new label sets to be observed, before=%d after=%d", before, after)
	}
}
