package notify

import (
	"sync"

	"github.com/scrumsquad/feedback-board/internal/core/domain"
)

// Message types exchanged between sibling browsing contexts.
const (
	MessageAdded       = domain.SyncAdded
	MessageRemoved     = domain.SyncRemoved
	MessageMarkedRead  = domain.SyncMarkedRead
	MessageMarkAllRead = domain.SyncMarkAllRead
	MessageCleared     = domain.SyncCleared
)

// Message is a broadcast payload. Notification messages carry Item or ID;
// feed events pushed by the server carry Kind and PostID.
type Message struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Item   *Entry `json:"item,omitempty"`
	Kind   string `json:"kind,omitempty"`
	PostID int64  `json:"postId,omitempty"`
}

func (m Message) isNotification() bool {
	return domain.IsSyncMessage(m.Type)
}

// IsFeedChange reports whether the message announces a feed mutation.
func (m Message) IsFeedChange() bool {
	return m.Type == domain.FeedChangedMessage
}

// Port is one member of a broadcast group. Publish never delivers back to
// the publishing port.
type Port interface {
	Publish(Message) error
	Subscribe(fn func(Message)) (cancel func())
	Close() error
}

// subscribers is the fan-out list shared by the port implementations.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Message)
}

func (s *subscribers) add(fn func(Message)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(Message))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) dispatch(msg Message) {
	s.mu.Lock()
	fns := make([]func(Message), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(msg)
	}
}

// LocalBus connects ports living in the same process, one per tab.
type LocalBus struct {
	mu    sync.Mutex
	ports map[*LocalPort]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{ports: make(map[*LocalPort]struct{})}
}

// Join adds a new member to the bus.
func (b *LocalBus) Join() *LocalPort {
	p := &LocalPort{bus: b}
	b.mu.Lock()
	b.ports[p] = struct{}{}
	b.mu.Unlock()
	return p
}

func (b *LocalBus) send(from *LocalPort, msg Message) {
	b.mu.Lock()
	targets := make([]*LocalPort, 0, len(b.ports))
	for p := range b.ports {
		if p != from {
			targets = append(targets, p)
		}
	}
	b.mu.Unlock()
	for _, p := range targets {
		p.subs.dispatch(msg)
	}
}

// LocalPort delivers synchronously to the other members of its bus.
type LocalPort struct {
	bus  *LocalBus
	subs subscribers
}

func (p *LocalPort) Publish(msg Message) error {
	p.bus.send(p, msg)
	return nil
}

func (p *LocalPort) Subscribe(fn func(Message)) func() {
	return p.subs.add(fn)
}

func (p *LocalPort) Close() error {
	p.bus.mu.Lock()
	delete(p.bus.ports, p)
	p.bus.mu.Unlock()
	return nil
}
