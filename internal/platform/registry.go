package platform

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry is an in-memory Server. It backs headless nodes and tests.
// Scheduled tasks run inline, one at a time.
type Registry struct {
	sessions *xsync.MapOf[uuid.UUID, *LocalSession]
	taskLock sync.Mutex

	listenersMu sync.RWMutex
	listeners   []DisconnectListener
}

// DisconnectListener is called after a session was disconnected by the
// server, never for sessions detached with Remove or replaced by Connect.
type DisconnectListener func(s *LocalSession, reason string)

// OnDisconnect registers fn for every later Disconnect.
func (r *Registry) OnDisconnect(fn DisconnectListener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Registry) fireDisconnect(s *LocalSession, reason string) {
	r.listenersMu.RLock()
	listeners := r.listeners
	r.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(s, reason)
	}
}

func NewRegistry() *Registry {
	return &Registry{sessions: xsync.NewMapOf[uuid.UUID, *LocalSession]()}
}

// Connect attaches a new session, replacing any previous one with the same id.
func (r *Registry) Connect(id uuid.UUID, username string) *LocalSession {
	s := &LocalSession{id: id, username: username, connected: true, registry: r}
	if old, loaded := r.sessions.LoadAndStore(id, s); loaded {
		old.markDisconnected("")
	}
	return s
}

// Remove detaches the session without a disconnect reason.
func (r *Registry) Remove(id uuid.UUID) {
	if s, ok := r.sessions.LoadAndDelete(id); ok {
		s.markDisconnected("")
	}
}

func (r *Registry) Session(id uuid.UUID) (Session, bool) {
	s, ok := r.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return s, true
}

func (r *Registry) Local(id uuid.UUID) (*LocalSession, bool) {
	return r.sessions.Load(id)
}

func (r *Registry) SessionByUsername(username string) (Session, bool) {
	var found *LocalSession
	r.sessions.Range(func(_ uuid.UUID, s *LocalSession) bool {
		if strings.EqualFold(s.username, username) {
			found = s
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return found, true
}

func (r *Registry) Sessions() []Session {
	out := make([]Session, 0, r.sessions.Size())
	r.sessions.Range(func(_ uuid.UUID, s *LocalSession) bool {
		out = append(out, s)
		return true
	})
	return out
}

func (r *Registry) Schedule(task func()) {
	r.taskLock.Lock()
	defer r.taskLock.Unlock()
	task()
}

// DataHandler receives plugin data written by a session.
type DataHandler func(channel string, data []byte) error

type LocalSession struct {
	id       uuid.UUID
	username string
	registry *Registry

	mu               sync.Mutex
	connected        bool
	permissions      map[string]bool
	messages         []string
	disconnectReason string
	peer             DataHandler
}

func (s *LocalSession) ID() uuid.UUID {
	return s.id
}

func (s *LocalSession) Username() string {
	return s.username
}

func (s *LocalSession) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *LocalSession) SetPermissions(perms map[string]bool) {
	copied := make(map[string]bool, len(perms))
	for node, allowed := range perms {
		copied[node] = allowed
	}

	s.mu.Lock()
	s.permissions = copied
	s.mu.Unlock()
}

// Permissions returns the last applied permission set.
func (s *LocalSession) Permissions() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permissions
}

func (s *LocalSession) HasPermission(node string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permissions[node]
}

func (s *LocalSession) SendMessage(text string) {
	s.mu.Lock()
	s.messages = append(s.messages, text)
	s.mu.Unlock()
}

func (s *LocalSession) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// SetPeer routes plugin data written by this session to handler.
func (s *LocalSession) SetPeer(handler DataHandler) {
	s.mu.Lock()
	s.peer = handler
	s.mu.Unlock()
}

func (s *LocalSession) SendData(channel string, data []byte) error {
	s.mu.Lock()
	peer := s.peer
	s.mu.Unlock()

	if peer == nil {
		return ErrNoPeer
	}
	return peer(channel, data)
}

// Disconnect detaches the session and notifies the registry's disconnect
// listeners when it was still the attached session for its id.
func (s *LocalSession) Disconnect(reason string) {
	removed := false
	s.registry.sessions.Compute(s.id, func(current *LocalSession, loaded bool) (*LocalSession, bool) {
		if loaded && current == s {
			removed = true
			return nil, true
		}
		return current, !loaded
	})
	s.markDisconnected(reason)

	if removed {
		s.registry.fireDisconnect(s, reason)
	}
}

func (s *LocalSession) DisconnectReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnectReason
}

func (s *LocalSession) markDisconnected(reason string) {
	s.mu.Lock()
	s.connected = false
	s.disconnectReason = reason
	s.mu.Unlock()
}
