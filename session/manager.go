package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrNameTaken = errors.New("session name already in use")
var ErrNotFound = errors.New("session not found")

var sessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "chunkloader_sessions_open",
	Help: "Editing sessions currently open",
})

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func (m *Manager) Create(name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.Name == name {
			return nil, ErrNameTaken
		}
	}

	s := newSession(uuid.New().String(), name)
	m.sessions[s.ID] = s
	sessionsOpen.Inc()
	return s, nil
}

// List returns sessions oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close removes the session and closes its Done channel.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.close()
	delete(m.sessions, id)
	sessionsOpen.Dec()
	return nil
}
