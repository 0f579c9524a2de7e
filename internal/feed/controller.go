package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/client"
	"github.com/scrumsquad/feedback-board/internal/core/domain"
	"github.com/scrumsquad/feedback-board/internal/render"
)

const (
	msgLoginUnknown   = "Could not check login status. You may be in guest mode."
	msgGuest          = "Viewing feed as guest. Log in to interact more."
	msgFeedLoaded     = "Feed loaded!"
	msgFeedFailed     = "Could not load the feed. Please refresh and try again."
	msgMissingFields  = "Please fill out Issue, Impact, and Suggestion before posting."
	msgPosted         = "Feedback posted. Thanks for sharing!"
	msgPostFailed     = "Could not post feedback. Please try again."
	msgUpvoteSaved    = "Upvote saved!"
	msgUpvoteFailed   = "Could not save upvote. Please try again."
	msgUpdatesFailed  = "Could not load updates."
	msgUpdateEmpty    = "Please write an update before posting."
	msgUpdatePosted   = "Update posted."
	msgUpdateDenied   = "Only admins can post updates."
	msgUpdateFailed   = "Failed to post update."
	msgRefreshFailed  = "Could not refresh the feed."
	tempKeyPrefix     = "temp_"
	defaultAuthorName = "User"
)

// API is the slice of the REST client the controller needs.
type API interface {
	WhoAmI(ctx context.Context) (*client.User, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
	CreatePost(ctx context.Context, post client.NewPost) (*domain.Post, error)
	ToggleUpvote(ctx context.Context, id int64) (int, error)
	Upvoted(id int64) bool
	ListUpdates(ctx context.Context, postID int64) ([]domain.Update, error)
	AddUpdate(ctx context.Context, postID int64, content string) (*domain.Update, error)
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
}

// View receives every rendered feed.
type View interface {
	Show(render.Feed)
}

type ViewFunc func(render.Feed)

func (f ViewFunc) Show(feed render.Feed) { f(feed) }

// Draft is the user's input for a new post.
type Draft struct {
	Issue      string
	Impact     string
	Suggestion string
	Theme      string
}

// Controller serializes state changes behind a mutex; network calls run
// outside it. Failures become notices and are returned for callers that
// need an exit status. Nothing is retried.
type Controller struct {
	mu    sync.Mutex
	state State
	seq   int
	api   API
	notes Notifier
	view  View
	log   zerolog.Logger
	now   func() time.Time
}

func NewController(api API, notes Notifier, view View, log zerolog.Logger) *Controller {
	return &Controller{
		state: initialState(),
		api:   api,
		notes: notes,
		view:  view,
		log:   log,
		now:   time.Now,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Entries = append([]render.Entry(nil), c.state.Entries...)
	return s
}

// Feed renders the current state without notifying the view.
func (c *Controller) Feed() render.Feed {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.build()
}

// Init resolves the viewer, renders an empty feed and loads the posts.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	c.state.Phase = PhaseLoading
	c.mu.Unlock()

	viewer := domain.Guest()
	user, err := c.api.WhoAmI(ctx)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Msg("whoami failed")
		c.notes.Error(msgLoginUnknown)
	case user == nil:
		c.notes.Info(msgGuest)
	default:
		viewer = user.Identity()
		name := user.DisplayName
		if name == "" {
			name = defaultAuthorName
		}
		c.notes.Info(fmt.Sprintf("Welcome back, %s!", name))
	}

	c.mu.Lock()
	c.state.Viewer = viewer
	c.state.Entries = nil
	c.render()
	c.mu.Unlock()

	posts, err := c.api.ListPosts(ctx)
	if err != nil {
		c.mu.Lock()
		c.state.Phase = PhaseLoaded
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("feed load failed")
		c.notes.Error(msgFeedFailed)
		return err
	}

	c.mu.Lock()
	c.state = withPosts(c.state, posts)
	c.render()
	c.mu.Unlock()
	c.notes.Success(msgFeedLoaded)
	return nil
}

// ChangeSort reorders the loaded list without re-fetching.
func (c *Controller) ChangeSort(order SortOrder) {
	order = ParseSortOrder(string(order))
	c.mu.Lock()
	c.state.Sort = order
	c.mu.Unlock()

	c.notes.Info("Sorting by: " + order.Label())

	c.mu.Lock()
	c.render()
	c.mu.Unlock()
}

// Submit posts d optimistically. Incomplete drafts are rejected before any
// network call.
func (c *Controller) Submit(ctx context.Context, d Draft) error {
	issue := strings.TrimSpace(d.Issue)
	impact := strings.TrimSpace(d.Impact)
	suggestion := strings.TrimSpace(d.Suggestion)
	if issue == "" || impact == "" || suggestion == "" {
		c.notes.Error(msgMissingFields)
		return fmt.Errorf("%w: issue, impact and suggestion are required", domain.ErrValidation)
	}
	theme := strings.TrimSpace(d.Theme)

	c.mu.Lock()
	c.seq++
	key := tempKeyPrefix + strconv.Itoa(c.seq)
	c.state = withPending(c.state, render.Entry{
		Key:     key,
		Pending: true,
		Post: domain.Post{
			Issue:      issue,
			Impact:     impact,
			Suggestion: suggestion,
			Theme:      theme,
			CreatedAt:  c.now().UTC(),
			Author:     c.state.Viewer.Author(),
		},
	})
	c.render()
	c.mu.Unlock()

	_, err := c.api.CreatePost(ctx, client.NewPost{
		Issue: issue, Impact: impact, Suggestion: suggestion, Theme: theme,
	})

	c.mu.Lock()
	c.state = withoutKey(c.state, key)
	if err != nil {
		c.render()
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("create post failed")
		c.notes.Error(msgPostFailed)
		return err
	}
	c.mu.Unlock()

	c.notes.Success(msgPosted)
	return c.reload(ctx, msgFeedFailed)
}

// Upvote toggles the viewer's upvote, then re-fetches whatever the outcome.
func (c *Controller) Upvote(ctx context.Context, postID int64) error {
	_, err := c.api.ToggleUpvote(ctx, postID)
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		// the post is gone; the reload below drops it from the list
		c.log.Debug().Int64("post_id", postID).Msg("upvote on unknown post ignored")
		err = nil
	case err != nil:
		c.log.Warn().Err(err).Int64("post_id", postID).Msg("upvote failed")
		c.notes.Error(msgUpvoteFailed)
	default:
		c.notes.Success(msgUpvoteSaved)
	}

	if rerr := c.reload(ctx, msgFeedFailed); err == nil {
		err = rerr
	}
	return err
}

// ToggleUpdates shows or hides a post's updates. They are fetched on the
// first expand and cached afterwards.
func (c *Controller) ToggleUpdates(ctx context.Context, postID int64) error {
	c.mu.Lock()
	panel := c.state.panels[postID]
	if panel.loaded || panel.loading {
		panel.visible = !panel.visible
		c.state = withPanel(c.state, postID, panel)
		c.render()
		c.mu.Unlock()
		return nil
	}
	panel.visible = true
	panel.loading = true
	c.state = withPanel(c.state, postID, panel)
	c.render()
	c.mu.Unlock()

	return c.fetchUpdates(ctx, postID)
}

// AddUpdate posts an admin update and refreshes the post's panel if it is
// open.
func (c *Controller) AddUpdate(ctx context.Context, postID int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		c.notes.Error(msgUpdateEmpty)
		return fmt.Errorf("%w: update content is required", domain.ErrValidation)
	}

	if _, err := c.api.AddUpdate(ctx, postID, content); err != nil {
		c.log.Warn().Err(err).Int64("post_id", postID).Msg("add update failed")
		if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUnauthenticated) {
			c.notes.Error(msgUpdateDenied)
		} else {
			c.notes.Error(msgUpdateFailed)
		}
		return err
	}
	c.notes.Success(msgUpdatePosted)

	c.mu.Lock()
	panel := c.state.panels[postID]
	panel.loaded = false
	panel.items = nil
	visible := panel.visible
	if visible {
		panel.loading = true
	}
	c.state = withPanel(c.state, postID, panel)
	c.render()
	c.mu.Unlock()

	if !visible {
		return nil
	}
	return c.fetchUpdates(ctx, postID)
}

// Refresh re-fetches the list, typically after a feed-changed event.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.reload(ctx, msgRefreshFailed)
}

func (c *Controller) reload(ctx context.Context, failure string) error {
	posts, err := c.api.ListPosts(ctx)
	if err != nil {
		c.mu.Lock()
		c.render()
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("feed reload failed")
		c.notes.Error(failure)
		return err
	}
	c.mu.Lock()
	c.state = withPosts(c.state, posts)
	c.render()
	c.mu.Unlock()
	return nil
}

func (c *Controller) fetchUpdates(ctx context.Context, postID int64) error {
	items, err := c.api.ListUpdates(ctx, postID)

	c.mu.Lock()
	panel := c.state.panels[postID]
	panel.loading = false
	if err == nil {
		panel.loaded = true
		panel.items = items
	} else {
		panel.visible = false
	}
	c.state = withPanel(c.state, postID, panel)
	c.render()
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Int64("post_id", postID).Msg("updates load failed")
		c.notes.Error(msgUpdatesFailed)
	}
	return err
}

// render must be called with mu held.
func (c *Controller) render() {
	if c.view != nil {
		c.view.Show(c.build())
	}
}

// build must be called with mu held.
func (c *Controller) build() render.Feed {
	panels := make(map[int64]render.UpdatesPanel, len(c.state.panels))
	for id, p := range c.state.panels {
		panels[id] = render.UpdatesPanel{Visible: p.visible, Loading: p.loading, Items: p.items}
	}
	return render.Build(render.Input{
		Entries: Sorted(c.state.Entries, c.state.Sort),
		Viewer:  c.state.Viewer,
		Upvoted: c.api.Upvoted,
		Updates: panels,
	})
}
