package metrics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type instrumentedStore struct {
	next ports.Store
}

// InstrumentStore wraps store so every call is observed by StoreOperationDuration.
func InstrumentStore(store ports.Store) ports.Store {
	return &instrumentedStore{next: store}
}

func (s *instrumentedStore) LoadAll(ctx context.Context, kind ports.Kind) ([]json.RawMessage, error) {
	start := time.Now()
	records, err := s.next.LoadAll(ctx, kind)
	observe("load", string(kind), start, err)
	return records, err
}

func (s *instrumentedStore) SaveAll(ctx context.Context, kind ports.Kind, records []json.RawMessage) error {
	start := time.Now()
	err := s.next.SaveAll(ctx, kind, records)
	observe("save", string(kind), start, err)
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	observe("ping", "", start, err)
	return err
}

func observe(op, kind string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperationDuration.WithLabelValues(op, kind, result).Observe(time.Since(start).Seconds())
}
