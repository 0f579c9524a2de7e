package ports

import (
	"context"
	"encoding/json"
)

// Kind names one persisted collection.
type Kind string

const (
	KindUsers    Kind = "users"
	KindFeedback Kind = "feedback"
	KindUpdates  Kind = "updates"
)

// Kinds lists every collection the service persists.
var Kinds = []Kind{KindUsers, KindFeedback, KindUpdates}

// Store persists whole collections of JSON records. There are no partial
// updates and no locking: two concurrent read-modify-write cycles on the same
// kind may clobber each other.
type Store interface {
	// LoadAll returns the records of kind in stored order. A collection that
	// was never saved is empty, not an error.
	LoadAll(ctx context.Context, kind Kind) ([]json.RawMessage, error)
	// SaveAll overwrites the collection with records.
	SaveAll(ctx context.Context, kind Kind, records []json.RawMessage) error
	Ping(ctx context.Context) error
}
