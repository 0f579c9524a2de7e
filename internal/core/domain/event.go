package domain

import "time"

// FeedEventKind names the mutation behind a FeedEvent.
type FeedEventKind string

const (
	EventPostCreated FeedEventKind = "post_created"
	EventUpvoted     FeedEventKind = "upvoted"
	EventUpdateAdded FeedEventKind = "update_added"
)

// FeedEvent announces that the feed changed. Receivers re-fetch instead of
// applying the event as a delta.
type FeedEvent struct {
	Kind   FeedEventKind `json:"kind"`
	PostID int64         `json:"postId"`
	At     time.Time     `json:"at"`
}

// FeedChangedMessage is the websocket message type carrying a FeedEvent.
const FeedChangedMessage = "feed.changed"

// Notification sync message types. Clients in a group relay these to each
// other; nothing else is accepted from a client.
const (
	SyncAdded       = "added"
	SyncRemoved     = "removed"
	SyncMarkedRead  = "markedRead"
	SyncMarkAllRead = "markAllRead"
	SyncCleared     = "cleared"
)

// IsSyncMessage reports whether t is a notification sync message type.
func IsSyncMessage(t string) bool {
	switch t {
	case SyncAdded, SyncRemoved, SyncMarkedRead, SyncMarkAllRead, SyncCleared:
		return true
	}
	return false
}
