package feed

import (
	"testing"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/render"
)

func sample() []render.Entry {
	return render.Entries([]domain.Post{
		post(1, 10, 2),
		post(2, 0, 7),
		post(3, 10, 7),
		post(4, 5, 0),
	})
}

func ids(entries []render.Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Post.ID
	}
	return out
}

func TestSorted_Upvotes(t *testing.T) {
	got := Sorted(sample(), SortUpvotes)
	for i := 1; i < len(got); i++ {
		if got[i].Post.Upvotes > got[i-1].Post.Upvotes {
			t.Fatalf("not non-increasing: %v", ids(got))
		}
	}
	// ties keep fetched order
	if got[0].Post.ID != 2 || got[1].Post.ID != 3 {
		t.Fatalf("unstable order: %v", ids(got))
	}
}

func TestSorted_Recent(t *testing.T) {
	got := Sorted(sample(), SortRecent)
	for i := 1; i < len(got); i++ {
		if got[i].Post.CreatedAt.After(got[i-1].Post.CreatedAt) {
			t.Fatalf("not non-increasing: %v", ids(got))
		}
	}
	if got[0].Post.ID != 1 || got[1].Post.ID != 3 {
		t.Fatalf("unstable order: %v", ids(got))
	}
}

func TestSorted_Oldest(t *testing.T) {
	for _, order := range []SortOrder{SortDate, SortOldest} {
		got := Sorted(sample(), order)
		for i := 1; i < len(got); i++ {
			if got[i].Post.CreatedAt.Before(got[i-1].Post.CreatedAt) {
				t.Fatalf("%s: not non-decreasing: %v", order, ids(got))
			}
		}
	}
}

func TestSorted_DoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Sorted(in, SortUpvotes)
	if ids(in)[0] != 1 {
		t.Fatalf("input reordered: %v", ids(in))
	}
}

func TestParseSortOrder(t *testing.T) {
	cases := map[string]SortOrder{
		"recent":  SortRecent,
		"upvotes": SortUpvotes,
		"date":    SortDate,
		"oldest":  SortOldest,
		"bogus":   SortRecent,
		"":        SortRecent,
	}
	for raw, want := range cases {
		if got := ParseSortOrder(raw); got != want {
			t.Fatalf("ParseSortOrder(%q) = %s, want %s", raw, got, want)
		}
	}
	if SortDate.Label() != "Oldest First" || SortRecent.Label() != "Most Recent" {
		t.Fatalf("unexpected labels")
	}
}

func TestReducers_KeepPendingAcrossReload(t *testing.T) {
	s := initialState()
	s = withPending(s, render.Entry{Key: "temp_1", Pending: true})
	s = withPosts(s, []domain.Post{post(1, 0, 0)})

	if len(s.Entries) != 2 || s.Entries[0].Key != "temp_1" {
		t.Fatalf("pending entry lost: %+v", s.Entries)
	}
	for _, order := range []SortOrder{SortRecent, SortUpvotes, SortDate, SortOldest} {
		got := Sorted(append(s.Entries, render.Entry{Key: "2", Post: post(2, -10, 9)}), order)
		if got[0].Key != "temp_1" {
			t.Fatalf("%s: pending entry not in front: %+v", order, got)
		}
	}

	s = withoutKey(s, "temp_1")
	if len(s.Entries) != 1 || s.Entries[0].Post.ID != 1 {
		t.Fatalf("unexpected entries: %+v", s.Entries)
	}
}
