package game

// Range bounds a stat inclusively. Nil ends are open.
type Range struct {
	Min *int `yaml:"min,omitempty"`
	Max *int `yaml:"max,omitempty"`
}

func (r *Range) contains(v int) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Criteria is the declarative predicate of an ending. All given clauses
// must hold; a criteria block with no clauses never matches.
type Criteria struct {
	Morality *Range   `yaml:"morality,omitempty"`
	Trauma   *Range   `yaml:"trauma,omitempty"`
	Stress   *Range   `yaml:"stress,omitempty"`
	Day      *Range   `yaml:"day,omitempty"`
	Flags    []string `yaml:"flags,omitempty"`
	NotFlags []string `yaml:"notFlags,omitempty"`
}

func (c *Criteria) empty() bool {
	return c.Morality == nil && c.Trauma == nil && c.Stress == nil && c.Day == nil &&
		len(c.Flags) == 0 && len(c.NotFlags) == 0
}

// Predicate compiles the criteria.
func (c *Criteria) Predicate() Predicate {
	if c == nil || c.empty() {
		return func(View) bool { return false }
	}
	crit := *c
	cond := Condition{Flags: crit.Flags, NotFlags: crit.NotFlags}
	return func(v View) bool {
		return crit.Morality.contains(v.Morality()) &&
			crit.Trauma.contains(v.Trauma()) &&
			crit.Stress.contains(v.Stress()) &&
			crit.Day.contains(v.Day()) &&
			cond.holds(v)
	}
}

// Matches reports whether e applies to v.
func (e *Ending) Matches(v View) bool {
	if e.Criteria != nil {
		return e.Criteria(v)
	}
	return e.When.Predicate()(v)
}

// Resolve returns the first ending, in declared order, whose criteria hold
// for st. When none match it returns the story's fallback ending, so every
// state resolves to exactly one ending.
func (s *Story) Resolve(st *State) *Ending {
	v := st.View()
	for _, e := range s.Endings {
		if e.Matches(v) {
			return e
		}
	}
	return s.fallback()
}

func (s *Story) fallback() *Ending {
	for _, e := range s.Endings {
		if e.ID == s.Fallback {
			return e
		}
	}
	if n := len(s.Endings); n > 0 {
		return s.Endings[n-1]
	}
	return &silentEnding
}

// silentEnding keeps Resolve total for a story declared without endings.
var silentEnding = Ending{
	ID:    "ending_silence",
	Title: "Silence",
	Text:  "The story ends.",
}
