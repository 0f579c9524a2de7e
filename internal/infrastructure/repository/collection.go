// Package repository builds the typed user, post and update repositories on
// top of a raw whole-collection ports.Store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

// collection decodes and encodes one kind. Mutations inside this process are
// serialized by mu; writers in other processes can still clobber each other.
type collection[T any] struct {
	store ports.Store
	kind  ports.Kind
	mu    sync.Mutex
}

func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.store.LoadAll(ctx, c.kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("decode %s[%d]: %w", c.kind, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	raw := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.kind, err)
		}
		raw = append(raw, data)
	}
	if err := c.store.SaveAll(ctx, c.kind, raw); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return nil
}

// mutate runs a read-modify-write cycle. fn returns the new collection.
func (c *collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.save(ctx, next)
}

// uniqueID bumps id by one until taken reports false.
func uniqueID(id int64, taken func(int64) bool) int64 {
	for taken(id) {
		id++
	}
	return id
}
