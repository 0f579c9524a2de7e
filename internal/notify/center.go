// Package notify keeps the per-browser notification list, raises toasts and
// keeps sibling browsing contexts in sync over a broadcast port.
package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scrumsquad/feedback-board/internal/client/localstore"
)

const (
	// MaxEntries caps the stored list; older entries are discarded.
	MaxEntries = 50
	StorageKey = "feedback_notifications_v1"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Entry is one stored notification.
type Entry struct {
	ID      string    `json:"id"`
	TS      time.Time `json:"ts"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Href    string    `json:"href"`
	Level   Level     `json:"level"`
	Read    bool      `json:"read"`
}

// Notification is the input to Notify. Empty fields get defaults.
type Notification struct {
	Title   string
	Message string
	Href    string
	Level   Level
}

// Center owns the notification list of one browsing context. Every change is
// written to storage first and then announced on the port; receivers re-read
// storage instead of applying the change.
type Center struct {
	mu        sync.Mutex
	storage   localstore.Storage
	port      Port
	toaster   *Toaster
	listeners map[int]func([]Entry)
	nextID    int
	unsub     func()
	log       zerolog.Logger
	now       func() time.Time
}

type Option func(*Center)

// WithPort joins the center to a broadcast group.
func WithPort(p Port) Option {
	return func(c *Center) { c.port = p }
}

// WithToaster raises a toast for every new notification.
func WithToaster(t *Toaster) Option {
	return func(c *Center) { c.toaster = t }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Center) { c.log = log }
}

func NewCenter(storage localstore.Storage, opts ...Option) *Center {
	c := &Center{
		storage:   storage,
		listeners: make(map[int]func([]Entry)),
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.port != nil {
		c.unsub = c.port.Subscribe(c.onMessage)
	}
	return c
}

// Close leaves the broadcast group.
func (c *Center) Close() {
	if c.unsub != nil {
		c.unsub()
	}
}

// Notify stores a new entry at the head of the list and announces it.
func (c *Center) Notify(n Notification) Entry {
	entry := Entry{
		ID:      "n_" + uuid.NewString(),
		TS:      c.now().UTC(),
		Title:   n.Title,
		Message: n.Message,
		Href:    n.Href,
		Level:   n.Level,
	}
	if entry.Title == "" {
		entry.Title = "Notification"
	}
	if entry.Level == "" {
		entry.Level = LevelInfo
	}

	c.mutate(Message{Type: MessageAdded, Item: &entry}, func(items []Entry) []Entry {
		return append([]Entry{entry}, items...)
	})
	if c.toaster != nil {
		c.toaster.Show(entry)
	}
	return entry
}

func (c *Center) Success(message string) {
	c.Notify(Notification{Title: "Success", Message: message, Level: LevelSuccess})
}

func (c *Center) Error(message string) {
	c.Notify(Notification{Title: "Error", Message: message, Level: LevelError})
}

func (c *Center) Info(message string) {
	c.Notify(Notification{Title: "Update", Message: message, Level: LevelInfo})
}

func (c *Center) Dismiss(id string) {
	c.mutate(Message{Type: MessageRemoved, ID: id}, func(items []Entry) []Entry {
		out := items[:0]
		for _, e := range items {
			if e.ID != id {
				out = append(out, e)
			}
		}
		return out
	})
}

func (c *Center) MarkRead(id string) {
	c.mutate(Message{Type: MessageMarkedRead, ID: id}, func(items []Entry) []Entry {
		for i := range items {
			if items[i].ID == id {
				items[i].Read = true
			}
		}
		return items
	})
}

func (c *Center) MarkAllRead() {
	c.mutate(Message{Type: MessageMarkAllRead}, func(items []Entry) []Entry {
		for i := range items {
			items[i].Read = true
		}
		return items
	})
}

func (c *Center) Clear() {
	c.mutate(Message{Type: MessageCleared}, func([]Entry) []Entry {
		return nil
	})
}

// Items returns the stored list, newest first.
func (c *Center) Items() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Unread counts entries not yet marked read.
func (c *Center) Unread() int {
	n := 0
	for _, e := range c.Items() {
		if !e.Read {
			n++
		}
	}
	return n
}

// Listen registers a redraw callback. It runs after every local change and
// every message from a sibling context.
func (c *Center) Listen(fn func([]Entry)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Center) mutate(msg Message, fn func([]Entry) []Entry) {
	c.mu.Lock()
	items := fn(c.load())
	c.save(items)
	c.mu.Unlock()

	if c.port != nil {
		if err := c.port.Publish(msg); err != nil {
			c.log.Warn().Err(err).Str("type", msg.Type).Msg("notification broadcast failed")
		}
	}
	c.redraw()
}

func (c *Center) onMessage(msg Message) {
	if !msg.isNotification() {
		return
	}
	c.redraw()
}

func (c *Center) redraw() {
	c.mu.Lock()
	items := c.load()
	listeners := make([]func([]Entry), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(items)
	}
}

// load must be called with mu held. Unreadable storage reads as empty.
func (c *Center) load() []Entry {
	raw, ok := c.storage.Get(StorageKey)
	if !ok || raw == "" {
		return []Entry{}
	}
	var items []Entry
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.log.Warn().Err(err).Msg("discarding unreadable notifications")
		return []Entry{}
	}
	if items == nil {
		items = []Entry{}
	}
	return items
}

// save must be called with mu held.
func (c *Center) save(items []Entry) {
	if len(items) > MaxEntries {
		items = items[:MaxEntries]
	}
	if items == nil {
		items = []Entry{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to encode notifications")
		return
	}
	if err := c.storage.Set(StorageKey, string(data)); err != nil {
		c.log.Error().Err(err).Msg("failed to persist notifications")
	}
}
