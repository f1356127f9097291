package game

import "slices"

// HookSpec is the declarative form of a Hook as written in story files.
//
//	after:
//	  setFlags: [manipulator]
//	  when: {flags: [bloomInsight], notFlags: [bloomChoice]}
type HookSpec struct {
	SetFlags    []string   `yaml:"setFlags,omitempty"`
	ClearFlags  []string   `yaml:"clearFlags,omitempty"`
	AddItems    []string   `yaml:"addItems,omitempty"`
	RemoveItems []string   `yaml:"removeItems,omitempty"`
	When        *Condition `yaml:"when,omitempty"`
}

// Condition gates a hook on flags. Every listed flag must hold.
type Condition struct {
	Flags    []string `yaml:"flags,omitempty"`
	NotFlags []string `yaml:"notFlags,omitempty"`
}

func (c *Condition) holds(v View) bool {
	if c == nil {
		return true
	}
	for _, f := range c.Flags {
		if !v.Flag(f) {
			return false
		}
	}
	for _, f := range c.NotFlags {
		if v.Flag(f) {
			return false
		}
	}
	return true
}

// Hook compiles the spec. A nil spec compiles to a nil hook.
func (h *HookSpec) Hook() Hook {
	if h == nil {
		return nil
	}
	spec := *h
	return func(st *State) {
		if !spec.When.holds(st.View()) {
			return
		}
		if st.Flags == nil {
			st.Flags = map[string]bool{}
		}
		for _, f := range spec.SetFlags {
			st.Flags[f] = true
		}
		for _, f := range spec.ClearFlags {
			delete(st.Flags, f)
		}
		for _, item := range spec.AddItems {
			if !slices.Contains(st.Inventory, item) {
				st.Inventory = append(st.Inventory, item)
			}
		}
		for _, item := range spec.RemoveItems {
			st.Inventory = slices.DeleteFunc(st.Inventory, func(s string) bool { return s == item })
		}
	}
}

// Chain runs hooks in order, skipping nil ones.
func Chain(hooks ...Hook) Hook {
	var live []Hook
	for _, h := range hooks {
		if h != nil {
			live = append(live, h)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(st *State) {
		for _, h := range live {
			h(st)
		}
	}
}
