package preset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"chunkloader/loader"
)

// Store owns the preset collection and writes it through a Backend after
// every mutation. Methods are serialized; one mutation finishes before the
// next starts.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	key     string
	now     func() time.Time
	newID   func() string
	log     *slog.Logger

	presets Collection
	last    time.Time // newest CreatedAt handed out, keeps timestamps non-decreasing
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc replaces the UUID generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger used for recovered failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns an empty store. Call Initialize to load persisted presets.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		log:     slog.Default(),
		presets: Collection{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted collection. A missing key, a read error or
// malformed data all leave the store empty; none of them is returned.
func (s *Store) Initialize(ctx context.Context) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.presets = Collection{}
	s.last = time.Time{}

	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			decodeFailures.Inc()
			s.log.Warn("reading presets failed, starting empty", "key", s.key, "error", err)
		}
		presetsStored.Set(0)
		return s.presets.clone()
	}

	loaded, err := Decode(data)
	if err != nil {
		decodeFailures.Inc()
		s.log.Warn("discarding unreadable presets", "key", s.key, "error", err)
		presetsStored.Set(0)
		return s.presets.clone()
	}

	s.presets = loaded
	for _, p := range loaded {
		if p.CreatedAt.After(s.last) {
			s.last = p.CreatedAt
		}
	}
	presetsStored.Set(float64(len(s.presets)))
	s.log.Debug("presets loaded", "key", s.key, "count", len(s.presets))
	return s.presets.clone()
}

// List returns a copy of the collection, newest first.
func (s *Store) List() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presets.clone()
}

// Get looks a preset up by id.
func (s *Store) Get(id string) (Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Save snapshots cfg under name and notes, prepends it and drops whatever
// falls past MaxPresets. On a backend write failure the new preset is still
// kept in memory and a *PersistError is returned with the collection.
func (s *Store) Save(ctx context.Context, cfg loader.Configuration, name, notes string) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.Name = name
	cfg.Notes = notes

	created := time.UnixMilli(s.now().UnixMilli())
	if created.Before(s.last) {
		created = s.last
	}
	s.last = created

	p := Preset{
		ID:        s.newID(),
		Config:    cfg,
		CreatedAt: created,
	}

	next := make(Collection, 0, min(len(s.presets)+1, MaxPresets))
	next = append(next, p)
	for _, old := range s.presets {
		if len(next) == MaxPresets {
			break
		}
		next = append(next, old)
	}
	s.presets = next
	presetsSaved.Inc()
	presetsStored.Set(float64(len(s.presets)))

	return s.presets.clone(), s.persist(ctx, "save")
}

// Delete removes the preset with the given id. An unknown id leaves the
// collection as it is; it is persisted and returned either way.
func (s *Store) Delete(ctx context.Context, id string) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(Collection, 0, len(s.presets))
	for _, p := range s.presets {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if len(next) != len(s.presets) {
		presetsDeleted.Inc()
	}
	s.presets = next
	presetsStored.Set(float64(len(s.presets)))

	return s.presets.clone(), s.persist(ctx, "delete")
}

// persist writes the collection. Caller must hold s.mu.
func (s *Store) persist(ctx context.Context, op string) error {
	data, err := Encode(s.presets)
	if err == nil {
		err = s.backend.Set(ctx, s.key, data)
	}
	if err != nil {
		persistFailures.Inc()
		s.log.Error("persisting presets failed", "op", op, "key", s.key, "error", err)
		return &PersistError{Op: op, Key: s.key, Err: err}
	}
	return nil
}
