// Package pending models records that exist locally before the server has
// confirmed them, and merges them with server lists for display.
package pending

import "fmt"

type State string

const (
	Optimistic State = "optimistic"
	Queued     State = "queued"
	Confirmed  State = "confirmed"
	Failed     State = "failed"
)

// next lists the legal transitions out of each state.
var next = map[State][]State{
	Optimistic: {Queued, Confirmed},
	Queued:     {Confirmed, Failed},
	Failed:     {Queued},
}

// CanTransition reports whether a record may move from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition returns to, or an error when the move is not allowed.
func Transition(from, to State) (State, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	return to, nil
}

// Record is a display row. Key is the queue id for local rows and the server
// id for confirmed ones.
type Record[T any] struct {
	Key   string `json:"key"`
	State State  `json:"state"`
	Value T      `json:"value"`
}

func (r Record[T]) IsLocal() bool {
	return r.State != Confirmed
}

// Merge returns queued records first, then failed ones, then server records
// whose key does not collide with a local one. Order inside each group is
// kept.
func Merge[T any](queued, failed, server []Record[T]) []Record[T] {
	seen := make(map[string]struct{}, len(queued)+len(failed))
	out := make([]Record[T], 0, len(queued)+len(failed)+len(server))
	for _, r := range queued {
		seen[r.Key] = struct{}{}
		out = append(out, r)
	}
	for _, r := range failed {
		seen[r.Key] = struct{}{}
		out = append(out, r)
	}
	for _, r := range server {
		if _, dup := seen[r.Key]; dup {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Wrap turns server values into confirmed records.
func Wrap[T any](values []T, key func(T) string) []Record[T] {
	out := make([]Record[T], 0, len(values))
	for _, v := range values {
		out = append(out, Record[T]{Key: key(v), State: Confirmed, Value: v})
	}
	return out
}

// Settle drops the record with key from list and, when confirmed is non-nil,
// puts it at the front.
func Settle[T any](list []Record[T], key string, confirmed *Record[T]) []Record[T] {
	out := make([]Record[T], 0, len(list)+1)
	if confirmed != nil {
		out = append(out, *confirmed)
	}
	for _, r := range list {
		if r.Key == key {
			continue
		}
		if confirmed != nil && r.Key == confirmed.Key {
			continue
		}
		out = append(out, r)
	}
	return out
}
