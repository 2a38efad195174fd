// Package services contains the application services behind the fintrack
// CLI: authentication, expenses, recurring expenses, invoices and settings.
//
// Reads go to the server first and fall back to the last cached copy. Lists
// are merged with the caller's queued creates so offline work stays visible.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/cache"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/pending"
	"github.com/dmitrijs2005/fintrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/google/uuid"
)

var ErrNotLoggedIn = errors.New("not logged in")

// API is the request surface of transport.Requester.
type API interface {
	Do(ctx context.Context, method, path string, payload any, timeout time.Duration, userID int64) (*transport.Response, error)
	Send(ctx context.Context, method, path string, data json.RawMessage, encoding string) (*transport.Response, error)
}

// PendingCreates lists queued and abandoned POSTs for a path.
type PendingCreates interface {
	Creates(ctx context.Context, userID int64, path string) ([]models.QueuedMutation, error)
	AbandonedCreates(ctx context.Context, userID int64, path string) ([]models.QueuedMutation, error)
}

type Deps struct {
	API     API
	Session *transport.Session
	Queue   PendingCreates
	Cache   *cache.Cache
	Meta    metadata.Repository
	Timeout time.Duration
	Logger  logging.Logger
}

// Listing is a merged list. Stale is set when the server could not be read
// and the cached copy was used.
type Listing[T any] struct {
	Records []pending.Record[T]
	Stale   bool
}

type base struct {
	api     API
	session *transport.Session
	queue   PendingCreates
	cache   *cache.Cache
	timeout time.Duration
	logger  logging.Logger
}

func newBase(d Deps, module string) base {
	return base{
		api:     d.API,
		session: d.Session,
		queue:   d.Queue,
		cache:   d.Cache,
		timeout: d.Timeout,
		logger:  d.Logger.With("module", module),
	}
}

func (b *base) userID() (int64, error) {
	id, ok := b.session.UserID()
	if !ok {
		return 0, ErrNotLoggedIn
	}
	return id, nil
}

// fetch reads path from the server into a T and caches it. When the server
// read fails the cached copy is returned with stale set.
func fetch[T any](ctx context.Context, b *base, path string) (T, bool, error) {
	var v T
	uid, err := b.userID()
	if err != nil {
		return v, false, err
	}
	key := cache.Key(uid, path)

	resp, err := b.api.Do(ctx, http.MethodGet, path, nil, b.timeout, uid)
	if err == nil {
		err = resp.Decode(&v)
	}
	if err == nil {
		if cerr := cache.SetJSON(ctx, b.cache, key, v); cerr != nil {
			b.logger.Warn(ctx, "cache write failed", "key", key, "error", cerr)
		}
		return v, false, nil
	}

	cached, ok, cerr := cache.GetJSON[T](ctx, b.cache, key)
	if cerr != nil || !ok {
		return v, false, err
	}
	b.logger.Warn(ctx, "serving cached data", "path", path, "error", err)
	return cached, true, nil
}

// resource describes how a list endpoint maps to display records.
type resource[T any] struct {
	listPath   string
	createPath string
	key        func(T) string
	// fromMutation builds the display value of a queued create.
	fromMutation func(models.QueuedMutation) T
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// list fetches path and merges it with the user's queued and abandoned
// creates. keep filters the local records.
func list[T any](ctx context.Context, b *base, res resource[T], path string, keep func(T) bool) (Listing[T], error) {
	uid, err := b.userID()
	if err != nil {
		return Listing[T]{}, err
	}
	key := cache.Key(uid, path)

	var (
		server []pending.Record[T]
		stale  bool
	)
	var values []T
	resp, err := b.api.Do(ctx, http.MethodGet, path, nil, b.timeout, uid)
	if err == nil {
		err = resp.Decode(&values)
	}
	if err == nil {
		server = pending.Wrap(values, res.key)
		if cerr := cache.SetJSON(ctx, b.cache, key, server); cerr != nil {
			b.logger.Warn(ctx, "cache write failed", "key", key, "error", cerr)
		}
	} else {
		cached, ok, cerr := cache.GetJSON[[]pending.Record[T]](ctx, b.cache, key)
		if cerr != nil || !ok {
			return Listing[T]{}, err
		}
		b.logger.Warn(ctx, "serving cached data", "path", path, "error", err)
		server, stale = cached, true
	}

	creates, err := b.queue.Creates(ctx, uid, res.createPath)
	if err != nil {
		return Listing[T]{}, err
	}
	abandoned, err := b.queue.AbandonedCreates(ctx, uid, res.createPath)
	if err != nil {
		return Listing[T]{}, err
	}
	queued := localRecords(res, creates, pending.Queued, keep)
	failed := localRecords(res, abandoned, pending.Failed, keep)
	return Listing[T]{Records: pending.Merge(queued, failed, server), Stale: stale}, nil
}

func localRecords[T any](res resource[T], muts []models.QueuedMutation, state pending.State, keep func(T) bool) []pending.Record[T] {
	out := make([]pending.Record[T], 0, len(muts))
	for _, m := range muts {
		v := res.fromMutation(m)
		if keep != nil && !keep(v) {
			continue
		}
		out = append(out, pending.Record[T]{Key: m.ID, State: state, Value: v})
	}
	return out
}

// create writes an optimistic record into the cached list, sends the create
// and settles the list with the outcome. On a rejection the list is restored.
func create[T any](ctx context.Context, b *base, res resource[T], payload any, draft T) (pending.Record[T], error) {
	uid, err := b.userID()
	if err != nil {
		return pending.Record[T]{}, err
	}
	key := cache.Key(uid, res.listPath)

	prev, had, err := cache.GetJSON[[]pending.Record[T]](ctx, b.cache, key)
	if err != nil {
		b.logger.Warn(ctx, "cache read failed", "key", key, "error", err)
	}
	localKey := "local-" + uuid.NewString()
	optimistic := pending.Record[T]{Key: localKey, State: pending.Optimistic, Value: draft}
	if err := cache.SetJSON(ctx, b.cache, key, append([]pending.Record[T]{optimistic}, prev...)); err != nil {
		return pending.Record[T]{}, err
	}

	resp, err := b.api.Do(ctx, http.MethodPost, res.createPath, payload, b.timeout, uid)
	if err != nil {
		b.rollback(ctx, key, prev, had)
		return pending.Record[T]{}, err
	}

	var v T
	if err := resp.Decode(&v); err != nil {
		b.rollback(ctx, key, prev, had)
		return pending.Record[T]{}, err
	}

	var rec, confirmed *pending.Record[T]
	if resp.Offline {
		rec = &pending.Record[T]{Key: resp.Pending.ID, State: pending.Queued, Value: v}
	} else {
		confirmed = &pending.Record[T]{Key: res.key(v), State: pending.Confirmed, Value: v}
		rec = confirmed
	}

	current, _, err := cache.GetJSON[[]pending.Record[T]](ctx, b.cache, key)
	if err != nil {
		return *rec, nil
	}
	if err := cache.SetJSON(ctx, b.cache, key, pending.Settle(current, localKey, confirmed)); err != nil {
		b.logger.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
	return *rec, nil
}

func (b *base) rollback(ctx context.Context, key string, prev any, had bool) {
	var err error
	if had {
		err = cache.SetJSON(ctx, b.cache, key, prev)
	} else {
		err = b.cache.Delete(ctx, key)
	}
	if err != nil {
		b.logger.Warn(ctx, "cache rollback failed", "key", key, "error", err)
	}
}

// invalidate drops the user's cached copies of the given paths.
func (b *base) invalidate(ctx context.Context, uid int64, paths ...string) {
	for _, p := range paths {
		if err := b.cache.Invalidate(ctx, cache.Key(uid, p)); err != nil {
			b.logger.Warn(ctx, "cache invalidation failed", "path", p, "error", err)
		}
	}
}
