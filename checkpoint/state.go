package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// CurrentVersion is the record layout written by Save.
const CurrentVersion = 1

// ErrCorruptState is returned when a state file exists but does not decode into a
// valid State.
var ErrCorruptState = errors.New("corrupt state")

// State is the durable checkpoint record.
type State struct {
	// NextPosition is the first integer not yet scanned.
	NextPosition uint64 `json:"next_position"`
	// FoundCount is the number of results committed below NextPosition.
	FoundCount uint64 `json:"found_count"`
	// Start is the first integer of the range the record belongs to.
	Start uint64 `json:"start"`
	// Limit is the exclusive end of that range.
	Limit uint64 `json:"limit"`

	Version   int       `json:"version"`
	RunID     string    `json:"run_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the record's internal consistency.
func (s *State) Validate() error {
	if s.Start > s.NextPosition {
		return fmt.Errorf("%w: next_position %d precedes start %d", ErrCorruptState, s.NextPosition, s.Start)
	}
	if s.NextPosition > s.Limit {
		return fmt.Errorf("%w: next_position %d exceeds limit %d", ErrCorruptState, s.NextPosition, s.Limit)
	}
	if s.FoundCount > s.NextPosition-s.Start {
		return fmt.Errorf("%w: found_count %d exceeds scanned span [%d, %d)", ErrCorruptState, s.FoundCount, s.Start, s.NextPosition)
	}
	if s.Version > CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptState, s.Version)
	}
	return nil
}

// rawState defers number parsing so that negative, fractional and oversized
// values are rejected rather than wrapped or rounded by the codec.
type rawState struct {
	NextPosition json.RawMessage `json:"next_position"`
	FoundCount   json.RawMessage `json:"found_count"`
	Start        json.RawMessage `json:"start"`
	Limit        json.RawMessage `json:"limit"`
	Version      json.RawMessage `json:"version"`
	RunID        string          `json:"run_id"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (r *rawState) decode() (*State, error) {
	s := &State{RunID: r.RunID, UpdatedAt: r.UpdatedAt}

	required := []struct {
		name string
		raw  json.RawMessage
		dst  *uint64
	}{
		{"next_position", r.NextPosition, &s.NextPosition},
		{"found_count", r.FoundCount, &s.FoundCount},
		{"limit", r.Limit, &s.Limit},
	}
	for _, f := range required {
		if len(f.raw) == 0 {
			return nil, fmt.Errorf("%w: missing field %q", ErrCorruptState, f.name)
		}
		v, err := parseUint(f.name, f.raw)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if len(r.Start) > 0 {
		v, err := parseUint("start", r.Start)
		if err != nil {
			return nil, err
		}
		s.Start = v
	}
	if len(r.Version) > 0 {
		v, err := parseUint("version", r.Version)
		if err != nil {
			return nil, err
		}
		if v > CurrentVersion {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptState, v)
		}
		s.Version = int(v)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseUint(field string, raw json.RawMessage) (uint64, error) {
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %q is not an unsigned 64-bit integer", ErrCorruptState, field, raw)
	}
	return v, nil
}
