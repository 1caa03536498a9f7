package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"permission-sync/internal/hub"
)

type fakeHubState struct {
	mu        sync.Mutex
	state     hub.State
	listeners []func(hub.State)
}

func (f *fakeHubState) State() hub.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeHubState) OnStateChange(fn func(hub.State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *fakeHubState) set(state hub.State) {
	f.mu.Lock()
	f.state = state
	listeners := f.listeners
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func checkHub(t *testing.T, srv *health.Server) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: HubHealthService})
	require.NoError(t, err)
	return resp.Status
}

func TestHealthServer_FollowsHubState(t *testing.T) {
	state := &fakeHubState{state: hub.StateConnecting}
	srv := newHealthServer(state)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkHub(t, srv))

	state.set(hub.StateConnected)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkHub(t, srv))

	state.set(hub.StateDisconnected)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkHub(t, srv))

	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestHealthServer_WithoutHub(t *testing.T) {
	srv := newHealthServer(nil)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkHub(t, srv))
}

func TestHubServingStatus(t *testing.T) {
	tests := []struct {
		state hub.State
		want  healthpb.HealthCheckResponse_ServingStatus
	}{
		{state: hub.StateDisconnected, want: healthpb.HealthCheckResponse_NOT_SERVING},
		{state: hub.StateConnecting, want: healthpb.HealthCheckResponse_NOT_SERVING},
		{state: hub.StateConnected, want: healthpb.HealthCheckResponse_SERVING},
	}

	for _, tc := range tests {
		t.Run(tc.state.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, hubServingStatus(tc.state))
		})
	}
}
