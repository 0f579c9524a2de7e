// Package render turns a list of posts and the viewer's identity into a feed
// tree, with HTML and plain-text sinks. Building the tree has no side effects.
package render

import (
	"strconv"
	"time"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

const (
	EmptyTitle = "No feedback yet"
	EmptyHint  = "Be the first to share feedback."

	ShowUpdatesLabel = "View Updates"
	HideUpdatesLabel = "Hide Updates"
	LoadingUpdates   = "Loading updates..."
	NoUpdates        = "No updates yet."
)

// Entry is one post in the client's list. Pending entries are optimistic
// placeholders keyed temp_<n> that the server has not confirmed.
type Entry struct {
	Key     string
	Post    domain.Post
	Pending bool
}

// Entries wraps confirmed posts, keyed by id.
func Entries(posts []domain.Post) []Entry {
	out := make([]Entry, len(posts))
	for i, p := range posts {
		out[i] = Entry{Key: strconv.FormatInt(p.ID, 10), Post: p}
	}
	return out
}

// UpdatesPanel is the expand state of one post's updates.
type UpdatesPanel struct {
	Visible bool
	Loading bool
	Items   []domain.Update
}

type Input struct {
	Entries []Entry
	Viewer  domain.Identity
	// Upvoted reports the local upvote marker; nil means no marks.
	Upvoted func(postID int64) bool
	Updates map[int64]UpdatesPanel
}

type Feed struct {
	Empty      bool
	EmptyTitle string
	EmptyHint  string
	Cards      []Card
}

type Card struct {
	Key          string
	PostID       int64
	Issue        string
	Impact       string
	Suggestion   string
	Theme        string
	Date         string
	CreatedAt    time.Time
	AuthorLabel  string
	Upvotes      int
	Upvoted      bool
	Pending      bool
	CanAddUpdate bool

	UpdatesToggle  string
	UpdatesVisible bool
	UpdatesLoading bool
	UpdatesEmpty   bool
	Updates        []UpdateLine
}

type UpdateLine struct {
	Role    string
	When    string
	Content string
}

// Build renders in into a Feed.
func Build(in Input) Feed {
	if len(in.Entries) == 0 {
		return Feed{Empty: true, EmptyTitle: EmptyTitle, EmptyHint: EmptyHint}
	}

	canUpdate := in.Viewer.Role.CanAuthorUpdates()
	cards := make([]Card, 0, len(in.Entries))
	for _, e := range in.Entries {
		p := e.Post
		card := Card{
			Key:           e.Key,
			PostID:        p.ID,
			Issue:         p.Issue,
			Impact:        p.Impact,
			Suggestion:    p.Suggestion,
			Theme:         p.Theme,
			Date:          p.CreatedAt.UTC().Format("Jan 2, 2006"),
			CreatedAt:     p.CreatedAt,
			AuthorLabel:   AuthorLabel(p.Author),
			Upvotes:       p.Upvotes,
			Pending:       e.Pending,
			CanAddUpdate:  canUpdate && !e.Pending,
			UpdatesToggle: ShowUpdatesLabel,
		}
		if !e.Pending && in.Upvoted != nil {
			card.Upvoted = in.Upvoted(p.ID)
		}
		if panel, ok := in.Updates[p.ID]; ok && panel.Visible && !e.Pending {
			card.UpdatesToggle = HideUpdatesLabel
			card.UpdatesVisible = true
			card.UpdatesLoading = panel.Loading
			card.UpdatesEmpty = !panel.Loading && len(panel.Items) == 0
			for _, u := range panel.Items {
				card.Updates = append(card.Updates, UpdateLine{
					Role:    string(u.AuthorRole),
					When:    u.Timestamp.UTC().Format("Jan 2, 2006 15:04"),
					Content: u.Content,
				})
			}
		}
		cards = append(cards, card)
	}
	return Feed{Cards: cards}
}

// AuthorLabel hides the author's handle behind its last three characters.
func AuthorLabel(author string) string {
	if author == "" || author == domain.AnonymousAuthor {
		return "Anonymous"
	}
	r := []rune(author)
	if len(r) > 3 {
		r = r[len(r)-3:]
	}
	return "User " + string(r)
}
