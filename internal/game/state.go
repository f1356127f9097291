package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// DefaultStart is the canonical start scene id.
const DefaultStart = "intro"

// Stat ranges. Every mutation of a bounded stat is clamped to these.
const (
	MoralityMin = -100
	MoralityMax = 100
	TraumaMin   = 0
	TraumaMax   = 100
	StressMin   = 0
	StressMax   = 100
)

// ErrInvalidSnapshot is returned by Restore for blobs that are not a state object.
var ErrInvalidSnapshot = errors.New("invalid state snapshot")

// NewState returns the fixed starting snapshot for a run beginning at start.
func NewState(start string) *State {
	if start == "" {
		start = DefaultStart
	}
	return &State{
		Day:            0,
		Hour:           8,
		Morality:       0,
		Trauma:         10,
		Stress:         10,
		Inventory:      []string{},
		Flags:          map[string]bool{},
		CurrentSceneID: start,
		EventLog:       []LogEntry{},
		Visited:        []string{},
	}
}

// Clone returns a deep copy of st.
func (st *State) Clone() *State {
	c := *st
	c.Inventory = slices.Clone(st.Inventory)
	c.EventLog = slices.Clone(st.EventLog)
	c.Visited = slices.Clone(st.Visited)
	c.Flags = make(map[string]bool, len(st.Flags))
	for k, v := range st.Flags {
		c.Flags[k] = v
	}
	return &c
}

// Snapshot serializes st for a persistence sink.
func Snapshot(st *State) ([]byte, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	return b, nil
}

// Restore merges a persisted snapshot over a fresh initial state. Fields
// present in raw replace the defaults, absent fields keep them. Missing
// collections are backfilled and bounded stats are clamped so truncated or
// stale saves still produce a playable state.
func Restore(raw []byte, start string) (*State, error) {
	st := NewState(start)
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	st.repair(start)
	return st, nil
}

func (st *State) repair(start string) {
	if st.Inventory == nil {
		st.Inventory = []string{}
	}
	if st.Flags == nil {
		st.Flags = map[string]bool{}
	}
	if st.EventLog == nil {
		st.EventLog = []LogEntry{}
	}
	if st.Visited == nil {
		st.Visited = []string{}
	}
	if st.CurrentSceneID == "" {
		st.CurrentSceneID = start
		if st.CurrentSceneID == "" {
			st.CurrentSceneID = DefaultStart
		}
	}
	st.Morality = clamp(st.Morality, MoralityMin, MoralityMax)
	st.Trauma = clamp(st.Trauma, TraumaMin, TraumaMax)
	st.Stress = clamp(st.Stress, StressMin, StressMax)
	if st.Day < 0 {
		st.Day = 0
	}
	if st.Hour < 0 {
		st.Hour = 0
	}
	st.advance(0)
}

// advance moves the clock forward; hours past midnight roll into the day.
func (st *State) advance(hours int) {
	if hours < 0 {
		hours = 0
	}
	total := st.Hour + hours
	st.Day += total / 24
	st.Hour = total % 24
}

func (st *State) log(now time.Time, message, category string) {
	st.EventLog = append(st.EventLog, LogEntry{
		Time:     now.UnixMilli(),
		Message:  message,
		Category: category,
	})
}

// Clock renders the session clock as "Day N, HH:00".
func (st *State) Clock() string {
	return fmt.Sprintf("Day %d, %02d:00", st.Day, st.Hour)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// View is the read-only face of State handed to ending predicates and renderers.
type View interface {
	Day() int
	Hour() int
	Morality() int
	Trauma() int
	Stress() int
	Flag(name string) bool
	HasItem(item string) bool
	SceneID() string
}

// View returns a read-only view over st.
func (st *State) View() View {
	return stateView{st: st}
}

type stateView struct {
	st *State
}

func (v stateView) Day() int              { return v.st.Day }
func (v stateView) Hour() int             { return v.st.Hour }
func (v stateView) Morality() int         { return v.st.Morality }
func (v stateView) Trauma() int           { return v.st.Trauma }
func (v stateView) Stress() int           { return v.st.Stress }
func (v stateView) Flag(name string) bool { return v.st.Flags[name] }
func (v stateView) SceneID() string       { return v.st.CurrentSceneID }

func (v stateView) HasItem(item string) bool {
	return slices.Contains(v.st.Inventory, item)
}
