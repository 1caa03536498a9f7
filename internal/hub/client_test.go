package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type received struct {
	mu   sync.Mutex
	msgs []Inbound
}

func (r *received) handle(_ context.Context, in Inbound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, in)
}

func (r *received) all() []Inbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Inbound(nil), r.msgs...)
}

func (r *testRelay) startClient(t *testing.T, serverType string, name string) *Client {
	t.Helper()

	c := NewClient(zap.NewNop().Sugar(), ClientConfig{
		URL:            r.wsURL(),
		APIKey:         testAPIKey,
		ServerType:     serverType,
		ServerName:     name,
		ReconnectDelay: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})
	return c
}

func waitConnected(t *testing.T, c *Client) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == StateConnected }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_PublishSubscribe(t *testing.T) {
	r := newTestRelay(t)

	proxy := r.startClient(t, "proxy", "proxy-1")
	lobby := r.startClient(t, "backend", "lobby-1")

	got := &received{}
	lobby.Subscribe(KindGrantChange, got.handle)
	ignored := &received{}
	proxy.Subscribe(KindGrantChange, ignored.handle)

	waitConnected(t, proxy)
	waitConnected(t, lobby)
	require.Eventually(t, func() bool { return len(r.relay.Clients()) == 2 }, 2*time.Second, 10*time.Millisecond)

	assert.True(t, proxy.Publish(GrantChange{PlayerId: testPlayerId}))

	require.Eventually(t, func() bool { return len(got.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	in := got.all()[0]
	assert.Equal(t, GrantChange{PlayerId: testPlayerId}, in.Message)
	assert.Equal(t, "proxy", in.ServerType)
	assert.Equal(t, "proxy-1", in.ServerName)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, ignored.all())
}

func TestClient_PublishWhileDisconnected(t *testing.T) {
	c := NewClient(zap.NewNop().Sugar(), ClientConfig{URL: "ws://127.0.0.1:1/ws", ServerType: "proxy", ServerName: "proxy-1"})

	assert.Equal(t, StateDisconnected, c.State())
	assert.False(t, c.Publish(GrantChange{PlayerId: testPlayerId}))
}

func TestClient_StateTransitions(t *testing.T) {
	r := newTestRelay(t)

	var mu sync.Mutex
	var states []State

	c := NewClient(zap.NewNop().Sugar(), ClientConfig{
		URL:            r.wsURL(),
		APIKey:         testAPIKey,
		ServerType:     "proxy",
		ServerName:     "proxy-1",
		ReconnectDelay: 50 * time.Millisecond,
	})
	c.OnStateChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	waitConnected(t, c)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateConnecting, StateConnected, StateDisconnected}, states)
}

// A message published while the hub is unreachable is dropped and never
// replayed once the connection comes back.
func TestClient_ReconnectWithoutReplay(t *testing.T) {
	r := newTestRelay(t)

	proxy := r.startClient(t, "proxy", "proxy-1")
	lobby := r.startClient(t, "backend", "lobby-1")

	got := &received{}
	lobby.Subscribe(KindGrantChange, got.handle)

	waitConnected(t, proxy)
	waitConnected(t, lobby)
	require.Eventually(t, func() bool { return len(r.relay.Clients()) == 2 }, 2*time.Second, 10*time.Millisecond)

	r.down.Store(true)
	require.Equal(t, 1, r.relay.Disconnect("proxy-1"))
	require.Eventually(t, func() bool { return proxy.State() != StateConnected }, 2*time.Second, 10*time.Millisecond)

	dropped := uuid.New()
	assert.False(t, proxy.Publish(GrantChange{PlayerId: dropped}))

	// Several reconnect attempts fail while the hub is down.
	time.Sleep(200 * time.Millisecond)
	assert.NotEqual(t, StateConnected, proxy.State())

	r.down.Store(false)
	waitConnected(t, proxy)
	require.Eventually(t, func() bool { return len(r.relay.Clients()) == 2 }, 2*time.Second, 10*time.Millisecond)

	delivered := uuid.New()
	assert.True(t, proxy.Publish(GrantChange{PlayerId: delivered}))

	require.Eventually(t, func() bool { return len(got.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	msgs := got.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, GrantChange{PlayerId: delivered}, msgs[0].Message)
}

func TestClient_DropsUnrecognized(t *testing.T) {
	c := NewClient(zap.NewNop().Sugar(), ClientConfig{URL: "ws://127.0.0.1:1/ws"})

	got := &received{}
	c.Subscribe(Kind("SERVER_STATUS"), got.handle)

	c.dispatch(context.Background(), []byte(`{"type":"SERVER_STATUS","data":{}}`))
	c.dispatch(context.Background(), []byte(`not json`))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, got.all())
}
