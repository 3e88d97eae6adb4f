// Package builder holds the live, not-yet-saved loader configuration of an
// editing session and keeps its formatted command current.
package builder

import (
	"fmt"
	"strconv"
	"sync"

	"chunkloader/loader"
)

// Observer receives the command and configuration after every applied change.
type Observer func(command string, cfg loader.Configuration)

// Model is safe for concurrent use. Each mutation, including the observer
// calls it triggers, completes before the next one starts. Observers must
// not call back into the Model.
type Model struct {
	mu        sync.Mutex
	cfg       loader.Configuration
	command   string
	observers map[int]Observer
	order     []int
	nextID    int
}

// New returns a model holding loader.Default().
func New() *Model {
	return NewFrom(loader.Default())
}

// NewFrom returns a model holding cfg.
func NewFrom(cfg loader.Configuration) *Model {
	return &Model{
		cfg:       cfg,
		command:   loader.Format(cfg),
		observers: make(map[int]Observer),
	}
}

// Configuration returns a copy of the current configuration.
func (m *Model) Configuration() loader.Configuration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Command returns the command for the last applied change.
func (m *Model) Command() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.command
}

// Subscribe registers fn and returns a function that removes it.
func (m *Model) Subscribe(fn Observer) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	m.order = append(m.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.observers, id)
			for i, oid := range m.order {
				if oid == id {
					m.order = append(m.order[:i], m.order[i+1:]...)
					break
				}
			}
		})
	}
}

// update applies fn under the lock, recomputes the command and notifies.
// An error from fn leaves the configuration untouched.
func (m *Model) update(fn func(cfg *loader.Configuration) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.cfg
	if err := fn(&next); err != nil {
		return err
	}
	m.cfg = next
	m.command = loader.Format(next)

	for _, id := range m.order {
		m.observers[id](m.command, m.cfg)
	}
	return nil
}

// SetMode switches between current-location and explicit coordinates.
// Coordinates are kept either way.
func (m *Model) SetMode(mode loader.Mode) error {
	if _, err := loader.ParseMode(string(mode)); err != nil {
		return err
	}
	return m.update(func(c *loader.Configuration) error {
		c.Mode = mode
		return nil
	})
}

func (m *Model) SetX(x string) error {
	return m.update(func(c *loader.Configuration) error { c.Coords.X = x; return nil })
}

func (m *Model) SetY(y string) error {
	return m.update(func(c *loader.Configuration) error { c.Coords.Y = y; return nil })
}

func (m *Model) SetZ(z string) error {
	return m.update(func(c *loader.Configuration) error { c.Coords.Z = z; return nil })
}

// SetCoords replaces all three coordinates in one change.
func (m *Model) SetCoords(coords loader.Coordinates) error {
	return m.update(func(c *loader.Configuration) error { c.Coords = coords; return nil })
}

func (m *Model) SetWorld(world loader.World) error {
	if _, err := loader.ParseWorld(string(world)); err != nil {
		return err
	}
	return m.update(func(c *loader.Configuration) error { c.World = world; return nil })
}

func (m *Model) SetDuration(minutes int) error {
	if err := loader.ValidateDuration(minutes); err != nil {
		return err
	}
	return m.update(func(c *loader.Configuration) error { c.DurationMinutes = minutes; return nil })
}

func (m *Model) SetLimit(limit int) error {
	if err := loader.ValidateLimit(limit); err != nil {
		return err
	}
	return m.update(func(c *loader.Configuration) error { c.PerPlayerLimit = limit; return nil })
}

func (m *Model) SetNotify(notify bool) error {
	return m.update(func(c *loader.Configuration) error { c.Notify = notify; return nil })
}

func (m *Model) SetName(name string) error {
	return m.update(func(c *loader.Configuration) error { c.Name = name; return nil })
}

func (m *Model) SetNotes(notes string) error {
	return m.update(func(c *loader.Configuration) error { c.Notes = notes; return nil })
}

// Load replaces the whole configuration, e.g. with a saved preset.
func (m *Model) Load(cfg loader.Configuration) error {
	return m.update(func(c *loader.Configuration) error { *c = cfg; return nil })
}

// Reset restores loader.Default().
func (m *Model) Reset() error {
	return m.Load(loader.Default())
}

// Fields lists the names Apply understands, in the order ApplyAll applies them.
var Fields = []string{"mode", "x", "y", "z", "world", "duration", "limit", "notify", "name", "notes"}

// Apply sets a field from its textual form, as sent by browser clients.
func (m *Model) Apply(field, value string) error {
	return m.update(func(c *loader.Configuration) error {
		return applyField(c, field, value)
	})
}

// ApplyAll sets several fields as one change: observers see a single
// update, and if any field is unknown or invalid nothing changes.
func (m *Model) ApplyAll(changes map[string]string) error {
	known := make(map[string]bool, len(Fields))
	for _, f := range Fields {
		known[f] = true
	}
	for field := range changes {
		if !known[field] {
			return fmt.Errorf("%w: unknown field %q", loader.ErrInvalidValue, field)
		}
	}
	return m.update(func(c *loader.Configuration) error {
		for _, field := range Fields {
			value, ok := changes[field]
			if !ok {
				continue
			}
			if err := applyField(c, field, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func applyField(c *loader.Configuration, field, value string) error {
	switch field {
	case "mode":
		mode, err := loader.ParseMode(value)
		if err != nil {
			return err
		}
		c.Mode = mode
	case "x":
		c.Coords.X = value
	case "y":
		c.Coords.Y = value
	case "z":
		c.Coords.Z = value
	case "world":
		world, err := loader.ParseWorld(value)
		if err != nil {
			return err
		}
		c.World = world
	case "duration":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: duration %q is not a number", loader.ErrInvalidValue, value)
		}
		if err := loader.ValidateDuration(n); err != nil {
			return err
		}
		c.DurationMinutes = n
	case "limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: limit %q is not a number", loader.ErrInvalidValue, value)
		}
		if err := loader.ValidateLimit(n); err != nil {
			return err
		}
		c.PerPlayerLimit = n
	case "notify":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: notify %q is not a boolean", loader.ErrInvalidValue, value)
		}
		c.Notify = b
	case "name":
		c.Name = value
	case "notes":
		c.Notes = value
	default:
		return fmt.Errorf("%w: unknown field %q", loader.ErrInvalidValue, field)
	}
	return nil
}
