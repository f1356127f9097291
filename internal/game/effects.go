package game

import (
	"fmt"
	"strings"
	"time"
)

// boundedStats lists the clamped stats in log order.
var boundedStats = []string{StatMorality, StatTrauma, StatStress}

func statBounds(stat string) (lo, hi int, ok bool) {
	switch stat {
	case StatMorality:
		return MoralityMin, MoralityMax, true
	case StatTrauma:
		return TraumaMin, TraumaMax, true
	case StatStress:
		return StressMin, StressMax, true
	default:
		return 0, 0, false
	}
}

func statRef(st *State, stat string) *int {
	switch stat {
	case StatMorality:
		return &st.Morality
	case StatTrauma:
		return &st.Trauma
	case StatStress:
		return &st.Stress
	default:
		return nil
	}
}

// ApplyEffects adds each nonzero bounded-stat delta to st, clamping to the
// stat's range, and appends a single "consequence" log line listing the
// deltas. Keys other than the bounded stats are ignored; inventory and flag
// changes belong in hooks.
func ApplyEffects(st *State, effects Effects, now time.Time) {
	var parts []string
	for _, stat := range boundedStats {
		delta := effects[stat]
		if delta == 0 {
			continue
		}
		lo, hi, _ := statBounds(stat)
		ref := statRef(st, stat)
		*ref = clamp(*ref+delta, lo, hi)
		parts = append(parts, fmt.Sprintf("%s %+d", stat, delta))
	}
	if len(parts) > 0 {
		st.log(now, strings.Join(parts, ", "), CategoryConsequence)
	}
}
