package game

import "testing"

func TestHookSpec_ZeroValueState(t *testing.T) {
	hook := (&HookSpec{SetFlags: []string{"woke"}, AddItems: []string{"key"}}).Hook()

	var st State
	hook(&st)

	if !st.Flags["woke"] {
		t.Error("Expected flag to be set on a zero-value state")
	}
	if len(st.Inventory) != 1 || st.Inventory[0] != "key" {
		t.Errorf("Expected inventory [key], got %v", st.Inventory)
	}
}

func TestHookSpec_WhenGatesChanges(t *testing.T) {
	hook := (&HookSpec{
		SetFlags:    []string{"manipulator"},
		RemoveItems: []string{"coin"},
		When:        &Condition{Flags: []string{"bloomInsight"}, NotFlags: []string{"bloomChoice"}},
	}).Hook()

	st := NewState("a")
	st.Inventory = []string{"coin"}
	hook(st)
	if st.Flags["manipulator"] || len(st.Inventory) != 1 {
		t.Errorf("Expected no change without bloomInsight, got flags=%v inventory=%v", st.Flags, st.Inventory)
	}

	st.Flags["bloomInsight"] = true
	hook(st)
	if !st.Flags["manipulator"] || len(st.Inventory) != 0 {
		t.Errorf("Expected hook to apply, got flags=%v inventory=%v", st.Flags, st.Inventory)
	}
}

func TestStep_ZeroValueStateWithAfterHook(t *testing.T) {
	story := &Story{
		Start: "a",
		Scenes: map[string]*Scene{
			"a": {Text: "A", Choices: []Choice{
				{ID: "go", GoTo: "b", Then: &HookSpec{SetFlags: []string{"moved"}}},
			}},
			"b": {Text: "B", Enter: &HookSpec{SetFlags: []string{"arrived"}}},
		},
	}
	eng := testEngine(t, story)

	st := &State{CurrentSceneID: "a"}
	if _, err := eng.ApplyChoice(st, "go"); err != nil {
		t.Fatalf("ApplyChoice: %v", err)
	}
	if !st.Flags["moved"] || !st.Flags["arrived"] {
		t.Errorf("Expected both hooks to run, got %v", st.Flags)
	}
}
