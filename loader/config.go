package loader

import (
	"errors"
	"fmt"
)

// Mode selects where the loader is placed.
type Mode string

const (
	ModeCurrent Mode = "current" // the chunk the player stands in
	ModeCoords  Mode = "coords"  // explicit x/y/z
)

// World is a dimension name as understood by the server plugin.
type World string

const (
	WorldOverworld World = "overworld"
	WorldNether    World = "the_nether"
	WorldEnd       World = "the_end"
)

const (
	MinDuration  = 5
	MaxDuration  = 720
	DurationStep = 5

	MinLimit = 1
	MaxLimit = 10

	DefaultDuration = 60
	DefaultLimit    = 2
	DefaultName     = "Farm Loader"
	DefaultNotes    = "Keeps the pumpkin farm active while offline."
)

var ErrInvalidValue = errors.New("invalid value")

// Coordinates are kept as typed by the user; nothing here checks they are numeric.
type Coordinates struct {
	X string `json:"x"`
	Y string `json:"y"`
	Z string `json:"z"`
}

// Complete reports whether all three components are non-empty.
func (c Coordinates) Complete() bool {
	return c.X != "" && c.Y != "" && c.Z != ""
}

// Configuration is one desired /chunkloader invocation.
type Configuration struct {
	Mode            Mode        `json:"mode"`
	Coords          Coordinates `json:"coords"`
	World           World       `json:"world"`
	DurationMinutes int         `json:"duration"`
	PerPlayerLimit  int         `json:"limit"`
	Notify          bool        `json:"notify"`
	Name            string      `json:"name"`
	Notes           string      `json:"notes"`
}

// Default returns the configuration a new editing session starts from.
func Default() Configuration {
	return Configuration{
		Mode:            ModeCurrent,
		World:           WorldOverworld,
		DurationMinutes: DefaultDuration,
		PerPlayerLimit:  DefaultLimit,
		Notify:          true,
		Name:            DefaultName,
		Notes:           DefaultNotes,
	}
}

// ParseMode accepts the wire names "current" and "coords".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCurrent, ModeCoords:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidValue, s)
}

// ParseWorld accepts the wire names of the three dimensions.
func ParseWorld(s string) (World, error) {
	switch w := World(s); w {
	case WorldOverworld, WorldNether, WorldEnd:
		return w, nil
	}
	return "", fmt.Errorf("%w: unknown world %q", ErrInvalidValue, s)
}

// ValidateDuration checks n against [MinDuration, MaxDuration] in DurationStep increments.
func ValidateDuration(n int) error {
	if n < MinDuration || n > MaxDuration || n%DurationStep != 0 {
		return fmt.Errorf("%w: duration must be %d-%d minutes in steps of %d, got %d",
			ErrInvalidValue, MinDuration, MaxDuration, DurationStep, n)
	}
	return nil
}

// ValidateLimit checks n against [MinLimit, MaxLimit].
func ValidateLimit(n int) error {
	if n < MinLimit || n > MaxLimit {
		return fmt.Errorf("%w: limit must be %d-%d, got %d", ErrInvalidValue, MinLimit, MaxLimit, n)
	}
	return nil
}
