// Package models defines client-side data models used by the fintrack CLI.
package models

import (
	"encoding/json"
	"time"
)

const (
	EncodingJSON      = ""
	EncodingMultipart = "multipart"
)

// QueuedMutation is a mutating request that could not reach the server and
// waits to be replayed. Data is the request payload exactly as the caller
// built it; for multipart uploads it is a JSON-encoded file payload.
type QueuedMutation struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"userId"`
	Method    string          `json:"method"`
	URL       string          `json:"url"`
	Data      json.RawMessage `json:"data,omitempty"`
	Encoding  string          `json:"encoding,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Attempts  int             `json:"attempts,omitempty"`
	LastError string          `json:"lastError,omitempty"`
}

// EnqueuedAt converts the unix-millisecond timestamp.
func (m QueuedMutation) EnqueuedAt() time.Time {
	return time.UnixMilli(m.Timestamp)
}
