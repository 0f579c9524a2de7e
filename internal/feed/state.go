// Package feed drives the client-side feed: it loads posts, sorts them,
// submits new ones optimistically and keeps per-post update panels.
package feed

import (
	"sort"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/render"
)

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseLoaded
)

type SortOrder string

const (
	SortRecent  SortOrder = "recent"
	SortUpvotes SortOrder = "upvotes"
	SortDate    SortOrder = "date"
	SortOldest  SortOrder = "oldest"
)

// ParseSortOrder maps unknown values to SortRecent.
func ParseSortOrder(raw string) SortOrder {
	switch SortOrder(raw) {
	case SortUpvotes, SortDate, SortOldest:
		return SortOrder(raw)
	default:
		return SortRecent
	}
}

// Label is the human name announced when the order changes.
func (o SortOrder) Label() string {
	switch o {
	case SortUpvotes:
		return "Most Upvoted"
	case SortDate, SortOldest:
		return "Oldest First"
	default:
		return "Most Recent"
	}
}

// updates is the cached panel of one post.
type updates struct {
	visible bool
	loading bool
	loaded  bool
	items   []domain.Update
}

// State is the whole client view. Reducers below return a new State and
// never touch the network.
type State struct {
	Phase   Phase
	Entries []render.Entry
	Sort    SortOrder
	Viewer  domain.Identity
	panels  map[int64]updates
}

func initialState() State {
	return State{
		Phase:  PhaseUninitialized,
		Sort:   SortRecent,
		Viewer: domain.Guest(),
		panels: map[int64]updates{},
	}
}

// withPosts replaces the confirmed posts and keeps pending entries in front.
func withPosts(s State, posts []domain.Post) State {
	entries := make([]render.Entry, 0, len(posts)+len(s.Entries))
	for _, e := range s.Entries {
		if e.Pending {
			entries = append(entries, e)
		}
	}
	s.Entries = append(entries, render.Entries(posts)...)
	s.Phase = PhaseLoaded
	return s
}

func withPending(s State, e render.Entry) State {
	entries := make([]render.Entry, 0, len(s.Entries)+1)
	entries = append(entries, e)
	s.Entries = append(entries, s.Entries...)
	return s
}

func withoutKey(s State, key string) State {
	entries := make([]render.Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Key != key {
			entries = append(entries, e)
		}
	}
	s.Entries = entries
	return s
}

func withPanel(s State, postID int64, p updates) State {
	panels := make(map[int64]updates, len(s.panels)+1)
	for k, v := range s.panels {
		panels[k] = v
	}
	panels[postID] = p
	s.panels = panels
	return s
}

// Sorted returns the entries in order o. Pending entries stay in front,
// newest first; the rest follow in order o. The sort is stable, so equal
// keys keep their fetched order.
func Sorted(entries []render.Entry, o SortOrder) []render.Entry {
	out := make([]render.Entry, len(entries))
	copy(out, entries)

	var less func(a, b domain.Post) bool
	switch o {
	case SortUpvotes:
		less = func(a, b domain.Post) bool { return a.Upvotes > b.Upvotes }
	case SortDate, SortOldest:
		less = func(a, b domain.Post) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		less = func(a, b domain.Post) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pending != out[j].Pending {
			return out[i].Pending
		}
		if out[i].Pending {
			return false
		}
		return less(out[i].Post, out[j].Post)
	})
	return out
}
