// Package syncer replays queued mutations against the server.
package syncer

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// SendFunc delivers one mutation. A *transport.APIError is a rejection;
// transport.ErrUnavailable means the server could not be reached.
type SendFunc func(ctx context.Context, m models.QueuedMutation) error

// Queue is the part of the queue manager the processor needs.
type Queue interface {
	All(ctx context.Context) ([]models.QueuedMutation, error)
	Update(ctx context.Context, fn func(queue, dead []models.QueuedMutation) ([]models.QueuedMutation, []models.QueuedMutation)) error
}

type Report struct {
	Succeeded int
	Failed    int
	Abandoned int
	Remaining int
}

// Processor replays the queue in enqueue order. Only one pass runs at a time.
type Processor struct {
	mu          sync.Mutex
	queue       Queue
	maxAttempts int
	logger      logging.Logger
}

// NewProcessor builds a Processor. With maxAttempts > 0 a mutation rejected
// that many times is moved to the dead-letter slot.
func NewProcessor(q Queue, maxAttempts int, l logging.Logger) *Processor {
	return &Processor{queue: q, maxAttempts: maxAttempts, logger: l.With("module", "syncer")}
}

// Process replays userID's mutations, or everyone's when userID is nil.
// Replay of a user stops at its first failure so its later mutations keep
// their order; an unreachable server stops the whole pass. Each outcome is
// written to the queue as soon as it is known, even if ctx is cancelled
// afterwards, so a delivered mutation is never replayed again.
func (p *Processor) Process(ctx context.Context, send SendFunc, userID *int64) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// replay runs without the queue lock so new mutations can be enqueued
	snapshot, err := p.queue.All(ctx)
	if err != nil {
		return Report{}, err
	}

	store := context.WithoutCancel(ctx)
	halted := make(map[int64]bool)
	var rep Report

	for _, m := range snapshot {
		if userID != nil && m.UserID != *userID {
			continue
		}
		if halted[m.UserID] {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		err := send(ctx, m)
		if err == nil {
			rep.Succeeded++
			if err := p.remove(store, m.ID); err != nil {
				return rep, err
			}
			continue
		}

		var apiErr *transport.APIError
		if !errors.As(err, &apiErr) {
			p.logger.Warn(ctx, "sync stopped, server unreachable", "id", m.ID, "error", err)
			break
		}

		p.logger.Warn(ctx, "mutation rejected", "id", m.ID, "method", m.Method, "url", m.URL, "status", apiErr.Status, "error", apiErr.Message)
		rep.Failed++
		abandoned, err := p.reject(store, m.ID, apiErr.Error())
		if err != nil {
			return rep, err
		}
		if abandoned {
			rep.Abandoned++
		} else {
			halted[m.UserID] = true
		}
	}

	all, err := p.queue.All(store)
	if err != nil {
		return rep, err
	}
	for _, m := range all {
		if userID == nil || m.UserID == *userID {
			rep.Remaining++
		}
	}

	p.logger.Info(ctx, "sync finished", "succeeded", rep.Succeeded, "failed", rep.Failed, "abandoned", rep.Abandoned, "remaining", rep.Remaining)
	return rep, nil
}

func (p *Processor) remove(ctx context.Context, id string) error {
	return p.queue.Update(ctx, func(q, d []models.QueuedMutation) ([]models.QueuedMutation, []models.QueuedMutation) {
		kept := make([]models.QueuedMutation, 0, len(q))
		for _, m := range q {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		return kept, d
	})
}

// reject counts a failed attempt and reports whether the mutation was moved
// to the dead-letter slot.
func (p *Processor) reject(ctx context.Context, id, lastError string) (bool, error) {
	abandoned := false
	err := p.queue.Update(ctx, func(q, d []models.QueuedMutation) ([]models.QueuedMutation, []models.QueuedMutation) {
		kept := make([]models.QueuedMutation, 0, len(q))
		for _, m := range q {
			if m.ID != id {
				kept = append(kept, m)
				continue
			}
			m.Attempts++
			m.LastError = lastError
			if p.maxAttempts > 0 && m.Attempts >= p.maxAttempts {
				d = append(d, m)
				abandoned = true
				continue
			}
			kept = append(kept, m)
		}
		return kept, d
	})
	return abandoned, err
}
