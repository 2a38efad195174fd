package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/netx"
)

const refreshPath = "/api/token/refresh"

// Monitor reports the last known connectivity state.
type Monitor interface {
	Online() bool
}

// Enqueuer stores a mutation for later replay.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID int64, method, url string, data json.RawMessage, encoding string) (*models.QueuedMutation, error)
}

// Response is a decoded server answer, or the placeholder for a queued
// mutation when Offline is set.
type Response struct {
	Status  int
	Body    json.RawMessage
	Offline bool
	Pending *models.QueuedMutation
}

// Decode unmarshals the body into v. An empty body is not an error.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

type Requester struct {
	baseURL string
	client  *http.Client
	session *Session
	monitor Monitor
	queue   Enqueuer
	logger  logging.Logger
}

// NewRequester builds a Requester. monitor may be nil, in which case the
// server is assumed reachable until a call proves otherwise.
func NewRequester(baseURL string, client *http.Client, session *Session, monitor Monitor, queue Enqueuer, l logging.Logger) *Requester {
	if client == nil {
		client = http.DefaultClient
	}
	return &Requester{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		session: session,
		monitor: monitor,
		queue:   queue,
		logger:  l.With("module", "transport"),
	}
}

// Do performs an API call on behalf of userID. GET requests always go to the
// network. Mutations are queued when the monitor reports offline, when the
// server cannot be reached, or when the call outlives timeout; the caller then
// gets a 202 placeholder.
func (r *Requester) Do(ctx context.Context, method, path string, payload any, timeout time.Duration, userID int64) (*Response, error) {
	data, encoding, err := encodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	if method != http.MethodGet && r.monitor != nil && !r.monitor.Online() {
		return r.enqueue(ctx, userID, method, path, data, encoding)
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := r.Send(callCtx, method, path, data, encoding)
	if err == nil || method == http.MethodGet {
		return resp, err
	}
	if ctx.Err() != nil || !errors.Is(err, ErrUnavailable) {
		return nil, err
	}

	r.logger.Warn(ctx, "server unreachable, queueing", "method", method, "path", path, "error", err)
	return r.enqueue(ctx, userID, method, path, data, encoding)
}

func (r *Requester) enqueue(ctx context.Context, userID int64, method, path string, data json.RawMessage, encoding string) (*Response, error) {
	m, err := r.queue.Enqueue(ctx, userID, method, path, data, encoding)
	if err != nil {
		return nil, fmt.Errorf("queue mutation: %w", err)
	}
	body, err := placeholder(m)
	if err != nil {
		return nil, err
	}
	return &Response{Status: http.StatusAccepted, Body: body, Offline: true, Pending: m}, nil
}

// Send performs the call without queueing. Transport failures are wrapped in
// ErrUnavailable; non-2xx answers become *APIError. An expired access token
// is refreshed once and the call retried.
func (r *Requester) Send(ctx context.Context, method, path string, data json.RawMessage, encoding string) (*Response, error) {
	resp, err := r.roundTrip(ctx, method, path, data, encoding)
	if err != nil {
		return nil, err
	}

	if path != refreshPath && isTokenExpired(resp) && r.session.Tokens().RefreshToken != "" {
		if err := r.refresh(ctx); err != nil {
			return nil, err
		}
		resp, err = r.roundTrip(ctx, method, path, data, encoding)
		if err != nil {
			return nil, err
		}
	}
	return asResult(resp)
}

// Replay sends a queued mutation as-is.
func (r *Requester) Replay(ctx context.Context, m models.QueuedMutation) error {
	_, err := r.Send(ctx, m.Method, m.URL, m.Data, m.Encoding)
	return err
}

func (r *Requester) refresh(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"refreshToken": r.session.Tokens().RefreshToken})
	if err != nil {
		return err
	}
	resp, err := r.roundTrip(ctx, http.MethodPost, refreshPath, body, models.EncodingJSON)
	if err != nil {
		return err
	}
	res, err := asResult(resp)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	var pair models.TokenPair
	if err := res.Decode(&pair); err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	r.session.SetTokens(pair)
	r.logger.Debug(ctx, "access token refreshed")
	return nil
}

func (r *Requester) roundTrip(ctx context.Context, method, path string, data json.RawMessage, encoding string) (*Response, error) {
	body, contentType, err := requestBody(data, encoding)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if tok := r.session.Tokens().AccessToken; tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if netx.IsConnectivityError(err) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &Response{Status: resp.StatusCode, Body: bytes.TrimSpace(raw)}, nil
}

func isTokenExpired(resp *Response) bool {
	if resp.Status != http.StatusUnauthorized {
		return false
	}
	var e APIError
	_ = json.Unmarshal(resp.Body, &e)
	return e.Message == common.ErrTokenExpired.Error()
}

func asResult(resp *Response) (*Response, error) {
	if resp.Status >= 200 && resp.Status < 300 {
		return resp, nil
	}
	e := &APIError{Status: resp.Status}
	if err := json.Unmarshal(resp.Body, e); err != nil || e.Message == "" {
		e.Message = http.StatusText(resp.Status)
	}
	return nil, e
}
