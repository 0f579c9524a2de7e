package mongo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

func TestDocuments_RoundTripPosts(t *testing.T) {
	posts := []domain.Post{
		{
			ID:         1718000000123,
			Issue:      "Build bricht ab: 構築が遅い 🚀",
			Impact:     "Blocks \"releases\" <b>now</b>",
			Suggestion: "Cache deps",
			Theme:      "Tooling",
			CreatedAt:  time.Date(2024, 6, 10, 8, 13, 20, 123000000, time.UTC),
			Upvotes:    3,
			Author:     "user-a1b2c3",
		},
		{ID: 7, Issue: "second", Theme: domain.DefaultTheme, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	records := make([]json.RawMessage, 0, len(posts))
	for _, p := range posts {
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		records = append(records, data)
	}

	docs, err := toDocuments(records)
	if err != nil {
		t.Fatalf("toDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if id := docs[0].Lookup("id"); id.Int64() != 1718000000123 {
		t.Fatalf("id stored as %v", id)
	}

	back, err := fromDocuments(docs)
	if err != nil {
		t.Fatalf("fromDocuments: %v", err)
	}
	for i, raw := range back {
		var got domain.Post
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		want := posts[i]
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("createdAt: got %v want %v", got.CreatedAt, want.CreatedAt)
		}
		got.CreatedAt = want.CreatedAt
		if got != want {
			t.Fatalf("record %d: got %+v want %+v", i, got, want)
		}
	}
}
