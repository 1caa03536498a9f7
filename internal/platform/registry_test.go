package platform

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Sessions(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	s := r.Connect(id, "Notch")
	assert.True(t, s.Connected())

	got, ok := r.Session(id)
	require.True(t, ok)
	assert.Equal(t, "Notch", got.Username())

	byName, ok := r.SessionByUsername("notch")
	require.True(t, ok)
	assert.Equal(t, id, byName.ID())

	assert.Len(t, r.Sessions(), 1)

	s.Disconnect("Banned")
	assert.False(t, s.Connected())
	assert.Equal(t, "Banned", s.DisconnectReason())

	_, ok = r.Session(id)
	assert.False(t, ok)
}

func TestRegistry_Reconnect(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	first := r.Connect(id, "Notch")
	second := r.Connect(id, "Notch")
	assert.False(t, first.Connected())

	// A stale session disconnecting does not evict its replacement
	first.Disconnect("")
	got, ok := r.Session(id)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestLocalSession_SendData(t *testing.T) {
	r := NewRegistry()
	s := r.Connect(uuid.New(), "Notch")

	err := s.SendData("core:channel", []byte{1})
	assert.True(t, errors.Is(err, ErrNoPeer))

	var received []byte
	s.SetPeer(func(channel string, data []byte) error {
		assert.Equal(t, "core:channel", channel)
		received = data
		return nil
	})
	require.NoError(t, s.SendData("core:channel", []byte{1, 2}))
	assert.Equal(t, []byte{1, 2}, received)
}

func TestRegistry_OnDisconnect(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	var disconnected []string
	r.OnDisconnect(func(s *LocalSession, reason string) {
		disconnected = append(disconnected, s.Username()+": "+reason)
	})

	first := r.Connect(id, "Notch")
	second := r.Connect(id, "Notch")

	// Replaced and stale sessions do not fire
	first.Disconnect("stale")
	assert.Empty(t, disconnected)

	second.Disconnect("Banned")
	second.Disconnect("Banned")
	assert.Equal(t, []string{"Notch: Banned"}, disconnected)

	// Remove detaches without firing
	r.Connect(id, "Notch")
	r.Remove(id)
	assert.Len(t, disconnected, 1)
}
