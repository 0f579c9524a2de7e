package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type stubPostRepo struct {
	posts []domain.Post
}

func (r *stubPostRepo) List(context.Context) ([]domain.Post, error) {
	out := make([]domain.Post, len(r.posts))
	copy(out, r.posts)
	return out, nil
}

func (r *stubPostRepo) Create(_ context.Context, p *domain.Post) (*domain.Post, error) {
	for _, existing := range r.posts {
		if existing.ID == p.ID {
			p.ID++
		}
	}
	r.posts = append(r.posts, *p)
	created := *p
	return &created, nil
}

func (r *stubPostRepo) AdjustUpvotes(_ context.Context, id int64, delta int) (int, error) {
	for i := range r.posts {
		if r.posts[i].ID == id {
			r.posts[i].Upvotes = max(r.posts[i].Upvotes+delta, 0)
			return r.posts[i].Upvotes, nil
		}
	}
	return 0, domain.ErrPostNotFound
}

type stubUpdateRepo struct {
	updates []domain.Update
}

func (r *stubUpdateRepo) List(context.Context) ([]domain.Update, error) {
	out := make([]domain.Update, len(r.updates))
	copy(out, r.updates)
	return out, nil
}

func (r *stubUpdateRepo) ListByPost(_ context.Context, postID int64) ([]domain.Update, error) {
	var out []domain.Update
	for _, u := range r.updates {
		if u.PostID == postID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *stubUpdateRepo) Create(_ context.Context, u *domain.Update) (*domain.Update, error) {
	r.updates = append(r.updates, *u)
	created := *u
	return &created, nil
}

type recordingPublisher struct {
	events []domain.FeedEvent
}

func (p *recordingPublisher) Publish(e domain.FeedEvent) {
	p.events = append(p.events, e)
}

type steppingClock struct {
	t time.Time
}

func (c *steppingClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestFeedbackService() (*FeedbackService, *stubPostRepo, *stubUpdateRepo, *recordingPublisher) {
	posts := &stubPostRepo{}
	updates := &stubUpdateRepo{}
	events := &recordingPublisher{}
	svc := NewFeedbackService(posts, updates, events, zerolog.Nop())
	clock := &steppingClock{t: time.Date(2024, 3, 1, 23, 59, 57, 0, time.UTC)}
	svc.now = clock.now
	return svc, posts, updates, events
}

var (
	employee = domain.Identity{Username: "employee1", Handle: "user-0a1b2c", Role: domain.RoleUser}
	admin    = domain.Identity{Username: "boss", Handle: "user-ffffff", Role: domain.RoleAdmin}
	employer = domain.Identity{Username: "owner", Handle: "user-eeeeee", Role: domain.RoleEmployer}
)

func TestFeedbackService_CreatePost(t *testing.T) {
	svc, posts, _, events := newTestFeedbackService()

	post, err := svc.CreatePost(context.Background(), ports.CreatePostInput{
		Issue:  "  Slow builds ",
		Impact: "Wasted time",
		Author: employee,
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if post.Issue != "Slow builds" {
		t.Fatalf("expected trimmed issue, got %q", post.Issue)
	}
	if post.Theme != domain.DefaultTheme {
		t.Fatalf("expected default theme, got %q", post.Theme)
	}
	if post.Upvotes != 0 {
		t.Fatalf("expected 0 upvotes, got %d", post.Upvotes)
	}
	if post.Author != "user-0a1b2c" {
		t.Fatalf("expected author handle, got %q", post.Author)
	}
	if post.ID != post.CreatedAt.UnixMilli() {
		t.Fatalf("expected id derived from creation time")
	}
	if len(posts.posts) != 1 {
		t.Fatalf("expected post to be stored")
	}
	if len(events.events) != 1 || events.events[0].Kind != domain.EventPostCreated {
		t.Fatalf("expected post_created event, got %+v", events.events)
	}
}

func TestFeedbackService_CreatePost_AnonymousAuthor(t *testing.T) {
	svc, _, _, _ := newTestFeedbackService()

	post, err := svc.CreatePost(context.Background(), ports.CreatePostInput{
		Issue: "No coffee", Impact: "Sad", Theme: "Office", Author: domain.Guest(),
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if post.Author != domain.AnonymousAuthor {
		t.Fatalf("expected anonymous author, got %q", post.Author)
	}
}

func TestFeedbackService_CreatePost_Validation(t *testing.T) {
	svc, posts, _, events := newTestFeedbackService()

	_, err := svc.CreatePost(context.Background(), ports.CreatePostInput{Issue: "x", Impact: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(posts.posts) != 0 || len(events.events) != 0 {
		t.Fatalf("rejected post must not be stored or announced")
	}
}

func TestFeedbackService_ListPosts_NewestFirst(t *testing.T) {
	svc, _, _, _ := newTestFeedbackService()
	for _, issue := range []string{"first", "second", "third"} {
		if _, err := svc.CreatePost(context.Background(), ports.CreatePostInput{Issue: issue, Impact: "i"}); err != nil {
			t.Fatalf("CreatePost returned error: %v", err)
		}
	}

	posts, err := svc.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	got := []string{posts[0].Issue, posts[1].Issue, posts[2].Issue}
	want := []string{"third", "second", "first"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
}

func TestFeedbackService_ListPosts_TiesKeepStoredOrder(t *testing.T) {
	svc, posts, _, _ := newTestFeedbackService()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts.posts = []domain.Post{
		{ID: 1, Issue: "a", CreatedAt: at},
		{ID: 2, Issue: "b", CreatedAt: at},
	}

	list, err := svc.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("expected stored order for ties, got %d,%d", list[0].ID, list[1].ID)
	}
}

func TestFeedbackService_ToggleUpvote(t *testing.T) {
	svc, posts, _, events := newTestFeedbackService()
	posts.posts = []domain.Post{{ID: 7, Issue: "a", Impact: "b"}}

	count, err := svc.ToggleUpvote(context.Background(), 7, false)
	if err != nil || count != 1 {
		t.Fatalf("expected count 1, got %d (%v)", count, err)
	}
	count, err = svc.ToggleUpvote(context.Background(), 7, true)
	if err != nil || count != 0 {
		t.Fatalf("expected count 0 after undo, got %d (%v)", count, err)
	}
	count, err = svc.ToggleUpvote(context.Background(), 7, true)
	if err != nil || count != 0 {
		t.Fatalf("expected count floored at 0, got %d (%v)", count, err)
	}
	if len(events.events) != 3 || events.events[0].Kind != domain.EventUpvoted {
		t.Fatalf("expected 3 upvoted events, got %+v", events.events)
	}

	if _, err := svc.ToggleUpvote(context.Background(), 99, false); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestFeedbackService_AddUpdate_RoleGate(t *testing.T) {
	svc, _, updates, events := newTestFeedbackService()

	for _, caller := range []domain.Identity{domain.Guest(), employee} {
		_, err := svc.AddUpdate(context.Background(), ports.AddUpdateInput{PostID: 1, Content: "hello", Author: caller})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden for %s, got %v", caller.Role, err)
		}
	}
	// role is checked before content
	if _, err := svc.AddUpdate(context.Background(), ports.AddUpdateInput{PostID: 1, Author: employee}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for empty content from user, got %v", err)
	}
	if _, err := svc.AddUpdate(context.Background(), ports.AddUpdateInput{PostID: 1, Content: "  ", Author: admin}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(updates.updates) != 0 || len(events.events) != 0 {
		t.Fatalf("rejected updates must not be stored")
	}

	for _, caller := range []domain.Identity{admin, employer} {
		u, err := svc.AddUpdate(context.Background(), ports.AddUpdateInput{PostID: 1, Content: "We're on it", Author: caller})
		if err != nil {
			t.Fatalf("AddUpdate returned error: %v", err)
		}
		if u.AuthorRole != caller.Role || u.PostID != 1 {
			t.Fatalf("unexpected update: %+v", u)
		}
	}
}

func TestFeedbackService_ListUpdates_NewestFirst(t *testing.T) {
	svc, _, _, _ := newTestFeedbackService()
	for _, text := range []string{"one", "two"} {
		if _, err := svc.AddUpdate(context.Background(), ports.AddUpdateInput{PostID: 5, Content: text, Author: admin}); err != nil {
			t.Fatalf("AddUpdate returned error: %v", err)
		}
	}
	if _, err := svc.AddUpdate(context.Background(), ports.AddUpdateInput{PostID: 6, Content: "other", Author: admin}); err != nil {
		t.Fatalf("AddUpdate returned error: %v", err)
	}

	list, err := svc.ListUpdates(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListUpdates returned error: %v", err)
	}
	if len(list) != 2 || list[0].Content != "two" || list[1].Content != "one" {
		t.Fatalf("unexpected updates: %+v", list)
	}

	all, err := svc.ListAllUpdates(context.Background())
	if err != nil {
		t.Fatalf("ListAllUpdates returned error: %v", err)
	}
	if len(all) != 3 || all[0].Content != "other" {
		t.Fatalf("unexpected updates: %+v", all)
	}
}

func TestFeedbackService_Summary(t *testing.T) {
	svc, posts, _, _ := newTestFeedbackService()
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	posts.posts = []domain.Post{
		{ID: 1, Theme: "Tools", CreatedAt: day1},
		{ID: 2, Theme: "Office", CreatedAt: day1},
		{ID: 3, Theme: "Tools", CreatedAt: day2},
		{ID: 4, Theme: "", CreatedAt: day2},
	}

	report, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if report.TotalCount != 4 {
		t.Fatalf("expected total 4, got %d", report.TotalCount)
	}
	wantThemes := []domain.CountItem{{Key: "Office", Count: 1}, {Key: "Tools", Count: 2}, {Key: "Unknown", Count: 1}}
	if len(report.CountsPerTheme) != len(wantThemes) {
		t.Fatalf("unexpected themes: %+v", report.CountsPerTheme)
	}
	for i, want := range wantThemes {
		if report.CountsPerTheme[i] != want {
			t.Fatalf("theme %d: expected %+v, got %+v", i, want, report.CountsPerTheme[i])
		}
	}
	wantDays := []domain.CountItem{{Key: "2024-03-01", Count: 2}, {Key: "2024-03-02", Count: 2}}
	for i, want := range wantDays {
		if report.CountsPerDay[i] != want {
			t.Fatalf("day %d: expected %+v, got %+v", i, want, report.CountsPerDay[i])
		}
	}
}
