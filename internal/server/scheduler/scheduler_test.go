package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	mu          sync.Mutex
	materialize []time.Time
	purges      int
	err         error
}

func (f *fakeJobs) MaterializeDue(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.materialize = append(f.materialize, now)
	return 1, f.err
}

func (f *fakeJobs) PurgeExpiredTokens(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges++
	return 2, nil
}

func (f *fakeJobs) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.materialize), f.purges
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("every now and then", &fakeJobs{}, &fakeJobs{}, logging.Discard())
	assert.Error(t, err)
}

func TestRunOnce_UsesClock(t *testing.T) {
	jobs := &fakeJobs{}
	s, err := New("@hourly", jobs, jobs, logging.Discard())
	require.NoError(t, err)

	fixed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.runOnce(context.Background())

	require.Len(t, jobs.materialize, 1)
	assert.Equal(t, fixed, jobs.materialize[0])
	assert.Equal(t, 1, jobs.purges)
}

func TestRunOnce_MaterializeErrorStillPurges(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("db down")}
	s, err := New("@hourly", jobs, jobs, logging.Discard())
	require.NoError(t, err)

	s.runOnce(context.Background())
	assert.Equal(t, 1, jobs.purges)
}

func TestRun_CatchesUpAndStops(t *testing.T) {
	jobs := &fakeJobs{}
	s, err := New("@hourly", jobs, jobs, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		m, p := jobs.counts()
		return m == 1 && p == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
