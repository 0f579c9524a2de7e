package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

var samplePost = domain.Post{
	ID:         1714550400000,
	Issue:      "Slow build",
	Impact:     "Blocks releases",
	Suggestion: "Cache deps",
	Theme:      "Tooling",
	CreatedAt:  time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	Upvotes:    3,
	Author:     "user-4f9a2c",
}

func TestAuthorLabel(t *testing.T) {
	cases := map[string]string{
		"":            "Anonymous",
		"anonymous":   "Anonymous",
		"user-4f9a2c": "User a2c",
		"ab":          "User ab",
	}
	for in, want := range cases {
		if got := AuthorLabel(in); got != want {
			t.Fatalf("AuthorLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuild_EmptyState(t *testing.T) {
	feed := Build(Input{Viewer: domain.Guest()})
	if !feed.Empty || feed.EmptyTitle != "No feedback yet" || feed.EmptyHint != "Be the first to share feedback." {
		t.Fatalf("unexpected empty feed: %+v", feed)
	}
}

func TestBuild_AdminAffordanceFollowsRole(t *testing.T) {
	entries := Entries([]domain.Post{samplePost})

	for role, want := range map[domain.Role]bool{
		domain.RoleGuest:    false,
		domain.RoleUser:     false,
		domain.RoleAdmin:    true,
		domain.RoleEmployer: true,
	} {
		feed := Build(Input{Entries: entries, Viewer: domain.Identity{Role: role}})
		if feed.Cards[0].CanAddUpdate != want {
			t.Fatalf("role %s: CanAddUpdate = %v, want %v", role, feed.Cards[0].CanAddUpdate, want)
		}
	}
}

func TestBuild_CardFields(t *testing.T) {
	entries := append([]Entry{{Key: "temp_1", Post: domain.Post{Issue: "draft", Author: "anonymous"}, Pending: true}},
		Entries([]domain.Post{samplePost})...)

	feed := Build(Input{
		Entries: entries,
		Viewer:  domain.Identity{Role: domain.RoleAdmin},
		Upvoted: func(id int64) bool { return id == samplePost.ID },
		Updates: map[int64]UpdatesPanel{
			samplePost.ID: {Visible: true, Items: []domain.Update{{Content: "On it", AuthorRole: domain.RoleAdmin, Timestamp: samplePost.CreatedAt}}},
		},
	})

	pending := feed.Cards[0]
	if !pending.Pending || pending.Key != "temp_1" || pending.CanAddUpdate || pending.AuthorLabel != "Anonymous" {
		t.Fatalf("unexpected pending card: %+v", pending)
	}

	card := feed.Cards[1]
	if card.Key != "1714550400000" || !card.Upvoted || card.Upvotes != 3 {
		t.Fatalf("unexpected card: %+v", card)
	}
	if card.Date != "May 1, 2024" || card.AuthorLabel != "User a2c" {
		t.Fatalf("unexpected meta: %q %q", card.Date, card.AuthorLabel)
	}
	if !card.UpdatesVisible || card.UpdatesToggle != "Hide Updates" || len(card.Updates) != 1 || card.Updates[0].Content != "On it" {
		t.Fatalf("unexpected updates panel: %+v", card)
	}
}

func TestBuild_UpdatesPanelStates(t *testing.T) {
	entries := Entries([]domain.Post{samplePost})

	hidden := Build(Input{Entries: entries, Updates: map[int64]UpdatesPanel{samplePost.ID: {Visible: false, Items: []domain.Update{{}}}}})
	if hidden.Cards[0].UpdatesVisible || hidden.Cards[0].UpdatesToggle != "View Updates" {
		t.Fatalf("hidden panel rendered: %+v", hidden.Cards[0])
	}

	loading := Build(Input{Entries: entries, Updates: map[int64]UpdatesPanel{samplePost.ID: {Visible: true, Loading: true}}})
	if !loading.Cards[0].UpdatesLoading || loading.Cards[0].UpdatesEmpty {
		t.Fatalf("expected loading panel: %+v", loading.Cards[0])
	}

	empty := Build(Input{Entries: entries, Updates: map[int64]UpdatesPanel{samplePost.ID: {Visible: true}}})
	if !empty.Cards[0].UpdatesEmpty {
		t.Fatalf("expected empty panel: %+v", empty.Cards[0])
	}
}

func TestWriteHTML_EscapesContent(t *testing.T) {
	post := samplePost
	post.Issue = `<script>alert("x")</script>`
	var buf bytes.Buffer

	if err := WriteHTML(&buf, Page{Feed: Build(Input{Entries: Entries([]domain.Post{post})})}); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `<script>alert`) {
		t.Fatalf("post content was not escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") || !strings.Contains(out, "User a2c") {
		t.Fatalf("unexpected html: %s", out)
	}
	if strings.Contains(out, "WebSocket") {
		t.Fatalf("websocket script rendered without a URL")
	}
}

func TestWriteHTML_EmptyState(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, Page{Feed: Build(Input{}), WebsocketURL: "/ws?group=feed"}); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if !strings.Contains(buf.String(), "No feedback yet") || !strings.Contains(buf.String(), "new WebSocket") {
		t.Fatalf("unexpected html: %s", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	feed := Build(Input{
		Entries: Entries([]domain.Post{samplePost}),
		Upvoted: func(int64) bool { return true },
		Updates: map[int64]UpdatesPanel{samplePost.ID: {Visible: true}},
	})
	if err := WriteText(&buf, feed); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"[1714550400000] Slow build", "Tooling • May 1, 2024 • User a2c", "*👍 3", "No updates yet."} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteText(&buf, Build(Input{})); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if buf.String() != "No feedback yet\nBe the first to share feedback.\n" {
		t.Fatalf("unexpected empty text: %q", buf.String())
	}
}
