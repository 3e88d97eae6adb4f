package preset

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"chunkloader/loader"
)

// Record is the persisted shape of a single preset. It is also what the HTTP
// API serves, so clients see the same fields that end up in storage.
type Record struct {
	ID        string             `json:"id"`
	Mode      loader.Mode        `json:"mode"`
	Coords    loader.Coordinates `json:"coords"`
	Duration  int                `json:"duration"`
	World     loader.World       `json:"world"`
	Limit     int                `json:"limit"`
	Notify    bool               `json:"notify"`
	Name      string             `json:"name"`
	Notes     string             `json:"notes"`
	CreatedAt int64              `json:"createdAt"` // epoch milliseconds
}

// ToRecord converts p to its persisted shape.
func ToRecord(p Preset) Record {
	return Record{
		ID:        p.ID,
		Mode:      p.Config.Mode,
		Coords:    p.Config.Coords,
		Duration:  p.Config.DurationMinutes,
		World:     p.Config.World,
		Limit:     p.Config.PerPlayerLimit,
		Notify:    p.Config.Notify,
		Name:      p.Config.Name,
		Notes:     p.Config.Notes,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
}

// ToRecords converts a whole collection, keeping its order.
func ToRecords(c Collection) []Record {
	out := make([]Record, len(c))
	for i, p := range c {
		out[i] = ToRecord(p)
	}
	return out
}

// Encode serializes c as a JSON array of records.
func Encode(c Collection) ([]byte, error) {
	return json.Marshal(ToRecords(c))
}

// maxCreatedAt is the largest integer a float64 holds exactly.
const maxCreatedAt = 1 << 53

// wireRecord uses pointers so missing fields can be told apart from zero values.
type wireRecord struct {
	ID        *string             `json:"id"`
	Mode      *string             `json:"mode"`
	Coords    *loader.Coordinates `json:"coords"`
	Duration  *int                `json:"duration"`
	World     *string             `json:"world"`
	Limit     *int                `json:"limit"`
	Notify    *bool               `json:"notify"`
	Name      *string             `json:"name"`
	Notes     *string             `json:"notes"`
	CreatedAt *float64            `json:"createdAt"`
}

// Decode parses data produced by Encode. Empty input is an empty collection.
// Anything that is not an array of records with an id and createdAt, or that
// repeats an id, yields a *DecodeError. Records past MaxPresets are dropped.
func Decode(data []byte) (Collection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Collection{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Index: -1, Reason: "not an array", Err: err}
	}

	seen := make(map[string]bool, len(raw))
	out := make(Collection, 0, min(len(raw), MaxPresets))
	for i, msg := range raw {
		if len(out) == MaxPresets {
			break
		}
		p, err := decodeRecord(i, msg)
		if err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, &DecodeError{Index: i, Reason: "duplicate id " + p.ID}
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}

func decodeRecord(i int, msg json.RawMessage) (Preset, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Preset{}, &DecodeError{Index: i, Reason: "not an object"}
	}

	var w wireRecord
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Preset{}, &DecodeError{Index: i, Reason: "bad field", Err: err}
	}
	if w.ID == nil || *w.ID == "" {
		return Preset{}, &DecodeError{Index: i, Reason: "missing id"}
	}
	if w.CreatedAt == nil {
		return Preset{}, &DecodeError{Index: i, Reason: "missing createdAt"}
	}
	created := *w.CreatedAt
	if created != math.Trunc(created) || math.Abs(created) > maxCreatedAt {
		return Preset{}, &DecodeError{Index: i, Reason: "createdAt is not a whole millisecond timestamp"}
	}

	cfg := loader.Configuration{
		Mode:   loader.ModeCurrent,
		World:  loader.WorldOverworld,
		Notify: true,
	}
	if w.Mode != nil && *w.Mode != "" {
		m, err := loader.ParseMode(*w.Mode)
		if err != nil {
			return Preset{}, &DecodeError{Index: i, Reason: "bad mode", Err: err}
		}
		cfg.Mode = m
	}
	if w.World != nil && *w.World != "" {
		wd, err := loader.ParseWorld(*w.World)
		if err != nil {
			return Preset{}, &DecodeError{Index: i, Reason: "bad world", Err: err}
		}
		cfg.World = wd
	}
	if w.Coords != nil {
		cfg.Coords = *w.Coords
	}
	if w.Duration != nil {
		cfg.DurationMinutes = *w.Duration
	}
	if w.Limit != nil {
		cfg.PerPlayerLimit = *w.Limit
	}
	if w.Notify != nil {
		cfg.Notify = *w.Notify
	}
	if w.Name != nil {
		cfg.Name = *w.Name
	}
	if w.Notes != nil {
		cfg.Notes = *w.Notes
	}

	return Preset{
		ID:        *w.ID,
		Config:    cfg,
		CreatedAt: time.UnixMilli(int64(created)),
	}, nil
}
