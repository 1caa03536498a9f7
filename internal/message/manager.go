// Package message tracks private conversations on the proxy and delivers
// private messages to the backend hosting the target.
package message

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const DefaultTTL = 30 * time.Minute

// Manager remembers who each player last messaged and was messaged by.
// Entries expire after the configured TTL.
type Manager struct {
	ttl          time.Duration
	receivedFrom *cache.Cache
	sentTo       *cache.Cache
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:          ttl,
		receivedFrom: cache.New(ttl, ttl*2),
		sentTo:       cache.New(ttl, ttl*2),
	}
}

func (m *Manager) RecordMessage(sender uuid.UUID, receiver uuid.UUID) {
	m.receivedFrom.Set(receiver.String(), sender, m.ttl)
	m.sentTo.Set(sender.String(), receiver, m.ttl)
}

func (m *Manager) LastReceivedFrom(id uuid.UUID) (uuid.UUID, bool) {
	return lookup(m.receivedFrom, id)
}

func (m *Manager) LastSentTo(id uuid.UUID) (uuid.UUID, bool) {
	return lookup(m.sentTo, id)
}

// ReplyTarget prefers the last player who messaged id over the last player
// id messaged.
func (m *Manager) ReplyTarget(id uuid.UUID) (uuid.UUID, bool) {
	if target, ok := m.LastReceivedFrom(id); ok {
		return target, true
	}
	return m.LastSentTo(id)
}

func (m *Manager) Remove(id uuid.UUID) {
	m.receivedFrom.Delete(id.String())
	m.sentTo.Delete(id.String())
}

func lookup(c *cache.Cache, id uuid.UUID) (uuid.UUID, bool) {
	v, found := c.Get(id.String())
	if !found {
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
}
