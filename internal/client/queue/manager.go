package queue

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/google/uuid"
)

// Manager serialises every load-modify-save cycle on the live queue and the
// dead-letter slot, so the connectivity watcher and the REPL can share it.
type Manager struct {
	mu    sync.Mutex
	queue Store
	dead  Store
	now   func() time.Time
	newID func() string
}

func NewManager(queue, dead Store) *Manager {
	return &Manager{
		queue: queue,
		dead:  dead,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Enqueue appends a mutation for userID and persists the queue.
func (m *Manager) Enqueue(ctx context.Context, userID int64, method, url string, data json.RawMessage, encoding string) (*models.QueuedMutation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, err := m.queue.Load(ctx)
	if err != nil {
		return nil, err
	}
	mut := models.QueuedMutation{
		ID:        m.newID(),
		UserID:    userID,
		Method:    method,
		URL:       url,
		Data:      data,
		Encoding:  encoding,
		Timestamp: m.now().UnixMilli(),
	}
	if err := m.queue.Save(ctx, append(q, mut)); err != nil {
		return nil, err
	}
	return &mut, nil
}

// All returns the whole live queue in enqueue order.
func (m *Manager) All(ctx context.Context) ([]models.QueuedMutation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Load(ctx)
}

// Pending returns userID's queued mutations in enqueue order.
func (m *Manager) Pending(ctx context.Context, userID int64) ([]models.QueuedMutation, error) {
	return m.filter(ctx, m.queue, userID, "")
}

// Creates returns userID's queued POSTs to path.
func (m *Manager) Creates(ctx context.Context, userID int64, path string) ([]models.QueuedMutation, error) {
	return m.filter(ctx, m.queue, userID, path)
}

// Abandoned returns userID's dead-lettered mutations.
func (m *Manager) Abandoned(ctx context.Context, userID int64) ([]models.QueuedMutation, error) {
	return m.filter(ctx, m.dead, userID, "")
}

func (m *Manager) AbandonedCreates(ctx context.Context, userID int64, path string) ([]models.QueuedMutation, error) {
	return m.filter(ctx, m.dead, userID, path)
}

func (m *Manager) filter(ctx context.Context, s Store, userID int64, createPath string) ([]models.QueuedMutation, error) {
	m.mu.Lock()
	q, err := s.Load(ctx)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]models.QueuedMutation, 0, len(q))
	for _, mut := range q {
		if mut.UserID != userID {
			continue
		}
		if createPath != "" && (mut.Method != http.MethodPost || mut.URL != createPath) {
			continue
		}
		out = append(out, mut)
	}
	return out, nil
}

// Update runs fn over both slots under the lock and saves what it returns.
func (m *Manager) Update(ctx context.Context, fn func(queue, dead []models.QueuedMutation) ([]models.QueuedMutation, []models.QueuedMutation)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, err := m.queue.Load(ctx)
	if err != nil {
		return err
	}
	d, err := m.dead.Load(ctx)
	if err != nil {
		return err
	}
	nq, nd := fn(q, d)
	if err := m.queue.Save(ctx, nq); err != nil {
		return err
	}
	return m.dead.Save(ctx, nd)
}

// Retry moves an abandoned mutation back to the tail of the live queue with
// its attempt counter reset.
func (m *Manager) Retry(ctx context.Context, userID int64, id string) error {
	found := false
	err := m.Update(ctx, func(q, d []models.QueuedMutation) ([]models.QueuedMutation, []models.QueuedMutation) {
		rest := make([]models.QueuedMutation, 0, len(d))
		for _, mut := range d {
			if mut.ID == id && mut.UserID == userID {
				found = true
				mut.Attempts = 0
				mut.LastError = ""
				q = append(q, mut)
				continue
			}
			rest = append(rest, mut)
		}
		return q, rest
	})
	if err != nil {
		return err
	}
	if !found {
		return common.ErrorNotFound
	}
	return nil
}

// Discard drops a mutation from either slot.
func (m *Manager) Discard(ctx context.Context, userID int64, id string) error {
	found := false
	drop := func(list []models.QueuedMutation) []models.QueuedMutation {
		out := make([]models.QueuedMutation, 0, len(list))
		for _, mut := range list {
			if mut.ID == id && mut.UserID == userID {
				found = true
				continue
			}
			out = append(out, mut)
		}
		return out
	}
	err := m.Update(ctx, func(q, d []models.QueuedMutation) ([]models.QueuedMutation, []models.QueuedMutation) {
		return drop(q), drop(d)
	})
	if err != nil {
		return err
	}
	if !found {
		return common.ErrorNotFound
	}
	return nil
}

// Clear empties both slots, or only userID's entries when it is non-nil.
func (m *Manager) Clear(ctx context.Context, userID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.queue.Clear(ctx, userID); err != nil {
		return err
	}
	return m.dead.Clear(ctx, userID)
}
