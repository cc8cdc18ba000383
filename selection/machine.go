// selection/machine.go - character selection state machine
//
// The machine walks a team's three slots in index order through exactly one
// character assignment each. All functions are pure; the database write path
// in services calls Apply only after its write has been acknowledged, so the
// in-memory cursor can never run ahead of committed state.
package selection

import (
	"errors"
	"sort"
)

var (
	ErrCharacterTaken   = errors.New("character already assigned on this team")
	ErrSlotFilled       = errors.New("slot already has a character")
	ErrAlreadyCompleted = errors.New("selection already completed")
	ErrBadSlotCount     = errors.New("team must have exactly 3 slots")
)

// SlotCount is fixed: a team always has exactly three player slots.
const SlotCount = 3

type Phase string

const (
	PhaseRegistering Phase = "REGISTERING"
	PhaseSelecting   Phase = "SELECTING"
	PhaseCompleted   Phase = "COMPLETED"
)

// Slot mirrors one player slot. CharacterKey is "" until assigned.
type Slot struct {
	Index        int
	Name         string
	CharacterKey string
	Level        int
}

// State is the machine's position: Cursor is the slot awaiting a pick, or
// SlotCount when every slot is assigned.
type State struct {
	Slots  []Slot
	Cursor int
}

// Resume rebuilds the state from whatever the store currently holds. The
// cursor lands on the first unassigned slot, so reloading mid-selection picks
// up where the team left off instead of restarting.
func Resume(slots []Slot) State {
	sorted := make([]Slot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	cursor := len(sorted)
	for i, s := range sorted {
		if s.CharacterKey == "" {
			cursor = i
			break
		}
	}
	return State{Slots: sorted, Cursor: cursor}
}

func (s State) Done() bool {
	return s.Cursor >= len(s.Slots)
}

// Current returns the slot awaiting a pick. ok is false once the machine is done.
func (s State) Current() (Slot, bool) {
	if s.Done() {
		return Slot{}, false
	}
	return s.Slots[s.Cursor], true
}

// Taken lists the character keys already held by any slot.
func (s State) Taken() []string {
	keys := make([]string, 0, len(s.Slots))
	for _, slot := range s.Slots {
		if slot.CharacterKey != "" {
			keys = append(keys, slot.CharacterKey)
		}
	}
	return keys
}

// CanAssign reports whether key is still free on this team. Uniqueness is
// per-team, not global.
func CanAssign(s State, key string) bool {
	for _, slot := range s.Slots {
		if slot.CharacterKey == key {
			return false
		}
	}
	return true
}

// Apply assigns key to the current slot and advances the cursor. The input
// state is never mutated; on error it is returned unchanged so a retry
// re-enters the same state.
func Apply(s State, key string, level int) (State, error) {
	if len(s.Slots) != SlotCount {
		return s, ErrBadSlotCount
	}
	if s.Done() {
		return s, ErrAlreadyCompleted
	}
	if s.Slots[s.Cursor].CharacterKey != "" {
		return s, ErrSlotFilled
	}
	if !CanAssign(s, key) {
		return s, ErrCharacterTaken
	}

	next := State{Slots: make([]Slot, len(s.Slots)), Cursor: s.Cursor}
	copy(next.Slots, s.Slots)
	next.Slots[next.Cursor].CharacterKey = key
	if level > 0 {
		next.Slots[next.Cursor].Level = level
	}
	next.Cursor++
	return next, nil
}

// Phase derives the team-level progress marker from the slots alone, which
// keeps COMPLETED-with-a-null-slot unrepresentable.
func (s State) Phase() Phase {
	assigned := 0
	for _, slot := range s.Slots {
		if slot.CharacterKey != "" {
			assigned++
		}
	}
	switch {
	case assigned == 0:
		return PhaseRegistering
	case assigned < len(s.Slots):
		return PhaseSelecting
	default:
		return PhaseCompleted
	}
}
