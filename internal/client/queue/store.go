// Package queue keeps mutations that could not reach the server in a durable,
// per-user ordered list so they can be replayed later.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/repositories/metadata"
)

// Metadata keys of the two slots.
const (
	QueueKey      = "sync-queue"
	DeadLetterKey = "sync-queue-dead"
)

// Store persists an ordered list of mutations.
type Store interface {
	Load(ctx context.Context) ([]models.QueuedMutation, error)
	Save(ctx context.Context, q []models.QueuedMutation) error
	// Clear removes every entry, or only userID's entries when it is non-nil.
	Clear(ctx context.Context, userID *int64) error
}

// MetadataStore keeps the whole list as one JSON array under a metadata key.
// Save is a single upsert, which makes each save an atomic replace.
type MetadataStore struct {
	repo metadata.Repository
	key  string
}

func NewMetadataStore(repo metadata.Repository, key string) *MetadataStore {
	return &MetadataStore{repo: repo, key: key}
}

func (s *MetadataStore) Load(ctx context.Context) ([]models.QueuedMutation, error) {
	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []models.QueuedMutation{}, nil
	}
	var q []models.QueuedMutation
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return q, nil
}

func (s *MetadataStore) Save(ctx context.Context, q []models.QueuedMutation) error {
	if len(q) == 0 {
		return s.repo.Delete(ctx, s.key)
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, s.key, raw)
}

func (s *MetadataStore) Clear(ctx context.Context, userID *int64) error {
	if userID == nil {
		return s.repo.Delete(ctx, s.key)
	}
	q, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.Save(ctx, without(q, *userID))
}

// without drops userID's entries and keeps the rest in order.
func without(q []models.QueuedMutation, userID int64) []models.QueuedMutation {
	out := make([]models.QueuedMutation, 0, len(q))
	for _, m := range q {
		if m.UserID != userID {
			out = append(out, m)
		}
	}
	return out
}
