package session

import (
	"encoding/json"
	"sync"
	"time"

	"chunkloader/builder"
	"chunkloader/loader"
)

// Update is the frame pushed to a connected client after every change.
type Update struct {
	Type    string               `json:"type"`
	Command string               `json:"command"`
	Config  loader.Configuration `json:"config"`
}

// Info is a point-in-time view of a session for listings.
type Info struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	CreatedAt  time.Time            `json:"created_at"`
	LastActive time.Time            `json:"last_active"`
	Connected  bool                 `json:"connected"`
	Config     loader.Configuration `json:"config"`
	Command    string               `json:"command"`
}

// Session is one editing session: a live configuration plus at most one
// connected client receiving its updates.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	builder     *builder.Model
	unsubscribe func()

	outMu      sync.Mutex
	lastActive time.Time
	connected  bool
	outChan    chan []byte
	displaced  chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id, name string) *Session {
	now := time.Now()
	s := &Session{
		ID:         id,
		Name:       name,
		CreatedAt:  now,
		lastActive: now,
		builder:    builder.New(),
		done:       make(chan struct{}),
	}
	s.unsubscribe = s.builder.Subscribe(s.push)
	return s
}

// Builder returns the session's configuration model.
func (s *Session) Builder() *builder.Model {
	return s.builder
}

// Info snapshots the session.
func (s *Session) Info() Info {
	cfg := s.builder.Configuration()
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return Info{
		ID:         s.ID,
		Name:       s.Name,
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
		Connected:  s.connected,
		Config:     cfg,
		Command:    loader.Format(cfg),
	}
}

// Snapshot encodes the current state as an Update frame.
func (s *Session) Snapshot() []byte {
	cfg := s.builder.Configuration()
	return encodeUpdate(loader.Format(cfg), cfg)
}

func encodeUpdate(cmd string, cfg loader.Configuration) []byte {
	data, _ := json.Marshal(Update{Type: "command", Command: cmd, Config: cfg})
	return data
}

// push runs synchronously inside every builder mutation. A slow client
// drops frames rather than blocking the mutation.
func (s *Session) push(cmd string, cfg loader.Configuration) {
	data := encodeUpdate(cmd, cfg)
	s.outMu.Lock()
	defer s.outMu.Unlock()
	s.lastActive = time.Now()
	if s.outChan != nil {
		select {
		case s.outChan <- data:
		default:
		}
	}
}

// SetClient makes ch the receiver of command updates for this session. An
// editor already attached is displaced: the channel SetClient handed it is
// closed. The returned channel closes when a later editor takes over.
func (s *Session) SetClient(ch chan []byte) <-chan struct{} {
	displaced := make(chan struct{})

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.displaced != nil {
		close(s.displaced)
	}
	s.displaced = displaced
	s.outChan = ch
	s.connected = true
	return displaced
}

// ClearClient detaches ch and closes it. Updates stop only if ch is still the
// attached editor; a displaced editor leaving does not detach its successor.
func (s *Session) ClearClient(ch chan []byte) {
	s.outMu.Lock()
	if s.outChan == ch {
		s.outChan = nil
		s.displaced = nil
		s.connected = false
	}
	s.outMu.Unlock()
	close(ch)
}

// Connected reports whether a client currently owns the session.
func (s *Session) Connected() bool {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return s.connected
}

// Done returns a channel that is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		close(s.done)
	})
}
