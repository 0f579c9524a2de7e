package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

const collectionSnapshots = "collections"

// snapshot holds a whole collection in one document keyed by kind.
type snapshot struct {
	Kind      string     `bson:"_id"`
	Records   []bson.Raw `bson:"records"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// Store implements ports.Store with one snapshot document per kind.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection(collectionSnapshots)}
}

func (s *Store) LoadAll(ctx context.Context, kind ports.Kind) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc snapshot
	err := s.col.FindOne(ctx, bson.M{"_id": string(kind)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	records, err := fromDocuments(doc.Records)
	if err != nil {
		return nil, fmt.Errorf("decode %s record: %w", kind, err)
	}
	return records, nil
}

// SaveAll replaces the snapshot document for kind, creating it on first save.
func (s *Store) SaveAll(ctx context.Context, kind ports.Kind, records []json.RawMessage) error {
	docs, err := toDocuments(records)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", kind, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := snapshot{Kind: string(kind), Records: docs, UpdatedAt: time.Now().UTC()}
	_, err = s.col.ReplaceOne(ctx, bson.M{"_id": string(kind)}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

// toDocuments converts JSON records to BSON through relaxed extended JSON:
// integers keep their width and strings (timestamps included) stay strings.
func toDocuments(records []json.RawMessage) ([]bson.Raw, error) {
	docs := make([]bson.Raw, 0, len(records))
	for _, r := range records {
		var raw bson.Raw
		if err := bson.UnmarshalExtJSON(r, false, &raw); err != nil {
			return nil, err
		}
		docs = append(docs, raw)
	}
	return docs, nil
}

func fromDocuments(docs []bson.Raw) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(docs))
	for _, raw := range docs {
		data, err := bson.MarshalExtJSON(raw, false, false)
		if err != nil {
			return nil, err
		}
		records = append(records, data)
	}
	return records, nil
}
