package preset

import (
	"errors"
	"fmt"
	"time"

	"chunkloader/loader"
)

// MaxPresets bounds the collection; saving beyond it drops the oldest entry.
const MaxPresets = 20

// DefaultKey is the storage key the collection is persisted under.
const DefaultKey = "cl_presets"

// Preset is an immutable, named snapshot of a loader configuration.
type Preset struct {
	ID        string
	Config    loader.Configuration
	CreatedAt time.Time
}

// Command formats the stored configuration.
func (p Preset) Command() string {
	return loader.Format(p.Config)
}

// DisplayName falls back to "Preset" for unnamed entries.
func (p Preset) DisplayName() string {
	if p.Config.Name == "" {
		return "Preset"
	}
	return p.Config.Name
}

// Collection is ordered newest first.
type Collection []Preset

func (c Collection) clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

var (
	ErrNotFound = errors.New("preset not found")
	ErrDecode   = errors.New("malformed preset data")
	ErrPersist  = errors.New("presets not persisted")
)

// DecodeError reports why persisted data could not be turned into a Collection.
type DecodeError struct {
	Index  int // record index, -1 when the document itself is bad
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return ErrDecode.Error() + ": " + msg
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Err }

// PersistError is returned by Save and Delete when the backend rejected the
// write. The in-memory collection already holds the change.
type PersistError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", ErrPersist, e.Op, e.Key, e.Err)
}

func (e *PersistError) Is(target error) bool { return target == ErrPersist }

func (e *PersistError) Unwrap() error { return e.Err }
