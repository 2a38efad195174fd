package health

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type switchProber struct {
	down atomic.Bool
}

func (p *switchProber) Probe(context.Context) error {
	if p.down.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func TestWatcher_TransitionsFireOnOnlineOnce(t *testing.T) {
	p := &switchProber{}
	var fired atomic.Int32
	w := NewWatcher(p, time.Hour, func(context.Context) { fired.Add(1) }, logging.Discard())
	ctx := context.Background()

	assert.True(t, w.Online())
	assert.True(t, w.Check(ctx))
	assert.Zero(t, fired.Load())

	p.down.Store(true)
	assert.False(t, w.Check(ctx))
	assert.False(t, w.Online())
	assert.False(t, w.Check(ctx))

	p.down.Store(false)
	assert.True(t, w.Check(ctx))
	assert.True(t, w.Check(ctx))
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	p := &switchProber{}
	p.down.Store(true)
	w := NewWatcher(p, 10*time.Millisecond, nil, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return !w.Online() }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func startHealthServer(t *testing.T) (string, *grpchealth.Server) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	hs := grpchealth.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis.Addr().String(), hs
}

func TestGRPCProber(t *testing.T) {
	addr, hs := startHealthServer(t)

	p, err := NewGRPCProber(addr)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Probe(ctx))

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	assert.Error(t, p.Probe(ctx))
}

func TestGRPCProber_Unreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	p, err := NewGRPCProber(addr)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, p.Probe(ctx))
}
