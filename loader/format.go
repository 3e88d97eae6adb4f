package loader

import (
	"strconv"
	"strings"
)

// Format renders cfg as a /chunkloader command:
//
//	/chunkloader set [X Y Z] [--world NAME] [--minutes N] [--limit N] [--silent] [--name "TEXT"]
//
// Options whose condition is false are left out entirely. Coordinates and the
// name are copied verbatim; a name containing '"' yields a command that naive
// tokenizers will split differently.
func Format(cfg Configuration) string {
	tokens := []string{"/chunkloader", "set"}

	if cfg.Mode == ModeCoords && cfg.Coords.Complete() {
		tokens = append(tokens, cfg.Coords.X, cfg.Coords.Y, cfg.Coords.Z)
	}
	if cfg.World != "" && cfg.World != WorldOverworld {
		tokens = append(tokens, "--world", string(cfg.World))
	}
	// Zero means unset and is omitted.
	if cfg.DurationMinutes > 0 {
		tokens = append(tokens, "--minutes", strconv.Itoa(cfg.DurationMinutes))
	}
	if cfg.PerPlayerLimit > 0 {
		tokens = append(tokens, "--limit", strconv.Itoa(cfg.PerPlayerLimit))
	}
	if !cfg.Notify {
		tokens = append(tokens, "--silent")
	}
	if cfg.Name != "" {
		tokens = append(tokens, "--name", `"`+cfg.Name+`"`)
	}

	return strings.Join(tokens, " ")
}
