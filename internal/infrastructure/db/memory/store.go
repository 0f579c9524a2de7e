// Package memory provides an in-process Store used by tests and demos.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type Store struct {
	mu   sync.RWMutex
	data map[ports.Kind][]json.RawMessage
}

func NewStore() *Store {
	return &Store{data: make(map[ports.Kind][]json.RawMessage)}
}

func (s *Store) LoadAll(_ context.Context, kind ports.Kind) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.data[kind]), nil
}

func (s *Store) SaveAll(_ context.Context, kind ports.Kind, records []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[kind] = cloneRecords(records)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func cloneRecords(in []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(in))
	for i, r := range in {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out
}
