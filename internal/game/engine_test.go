package game

import (
	"errors"
	"testing"
	"time"
)

var fixedNow = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func testEngine(t *testing.T, story *Story) *Engine {
	t.Helper()
	eng, err := NewEngine(story, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	eng.Now = fixedNow
	return eng
}

func twoSceneStory() *Story {
	return &Story{
		Start:    "start",
		Fallback: "ending_default",
		Scenes: map[string]*Scene{
			"start": {
				Text: "Start here",
				Choices: []Choice{
					{ID: "next", Text: "Go next", GoTo: "end"},
					{ID: "lost", Text: "Go nowhere", GoTo: "nowhere"},
					{ID: "finish", Text: "Finish", GoTo: TheEnd},
				},
			},
			"end": {
				Text: "The end",
				Choices: []Choice{
					{ID: "finish", Text: "Finish", GoTo: TheEnd},
				},
			},
		},
		Endings: []*Ending{
			{ID: "ending_good", Title: "Good", When: &Criteria{Morality: &Range{Min: intp(45)}}},
			{ID: "ending_default", Title: "Default", When: &Criteria{Flags: []string{"never"}}},
		},
	}
}

func intp(v int) *int { return &v }

func TestNewEngine_RequiresStory(t *testing.T) {
	if _, err := NewEngine(nil, nil); err == nil {
		t.Error("Expected error for nil story")
	}
}

func TestNewEngine_RejectsMissingStart(t *testing.T) {
	story := &Story{Start: "nope", Scenes: map[string]*Scene{"a": {Text: "A"}}}
	if _, err := NewEngine(story, nil); err == nil {
		t.Error("Expected error for missing start scene")
	}
}

func TestCurrentScene(t *testing.T) {
	eng := testEngine(t, twoSceneStory())
	st := NewState("start")

	sc, err := eng.CurrentScene(st)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sc.Text != "Start here" {
		t.Errorf("Expected text 'Start here', got '%s'", sc.Text)
	}

	st.CurrentSceneID = "unknown"
	if _, err := eng.CurrentScene(st); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestApplyChoice_Simple(t *testing.T) {
	eng := testEngine(t, twoSceneStory())
	st := NewState("start")

	res, err := eng.ApplyChoice(st, "next")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if st.CurrentSceneID != "end" {
		t.Errorf("Expected CurrentSceneID 'end', got '%s'", st.CurrentSceneID)
	}
	if res.Scene == nil || res.Scene.ID != "end" {
		t.Errorf("Expected result scene 'end', got %+v", res.Scene)
	}
	if st.Hour != 9 || st.Day != 0 {
		t.Errorf("Expected clock Day 0 09:00, got %s", st.Clock())
	}
	if len(st.Visited) != 1 || st.Visited[0] != "end" {
		t.Errorf("Expected visited [end], got %v", st.Visited)
	}
}

func TestApplyChoice_InvalidChoice(t *testing.T) {
	eng := testEngine(t, twoSceneStory())
	st := NewState("start")

	_, err := eng.ApplyChoice(st, "does-not-exist")
	if !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("Expected ErrUnknownChoice, got %v", err)
	}
	if st.CurrentSceneID != "start" || st.Hour != 8 {
		t.Error("Expected state untouched for an unknown choice")
	}
}

func TestApplyChoice_MissingSceneParks(t *testing.T) {
	eng := testEngine(t, twoSceneStory())
	st := NewState("start")

	res, err := eng.ApplyChoice(st, "lost")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if st.CurrentSceneID != "start" {
		t.Errorf("Expected to stay on 'start', got '%s'", st.CurrentSceneID)
	}
	if res.Missing != "nowhere" {
		t.Errorf("Expected Missing 'nowhere', got '%s'", res.Missing)
	}
	if len(st.EventLog) != 1 {
		t.Fatalf("Expected exactly one log entry, got %d", len(st.EventLog))
	}
	if st.EventLog[0].Message != "Missing scene 'nowhere'" {
		t.Errorf("Unexpected diagnostic %q", st.EventLog[0].Message)
	}
	if st.EventLog[0].Category != CategoryWorldEvent {
		t.Errorf("Expected category %s, got %s", CategoryWorldEvent, st.EventLog[0].Category)
	}
	if res.Scene == nil || res.Scene.ID != "start" || len(res.Choices) != 3 {
		t.Error("Expected the current scene to be presented again")
	}
}

func TestApplyChoice_TerminalTwiceUsesFallback(t *testing.T) {
	eng := testEngine(t, twoSceneStory())
	st := NewState("start")

	for i := 0; i < 2; i++ {
		res, err := eng.ApplyChoice(st, "finish")
		if err != nil {
			t.Fatalf("Unexpected error on terminal choice %d: %v", i, err)
		}
		if res.Ending == nil {
			t.Fatalf("Expected an ending on terminal choice %d", i)
		}
		if res.Ending.ID != "ending_default" {
			t.Errorf("Expected fallback ending, got %s", res.Ending.ID)
		}
	}
	if st.CurrentSceneID != "start" {
		t.Errorf("Expected terminal choice to leave scene id alone, got %s", st.CurrentSceneID)
	}
}

func TestStep_Ordering(t *testing.T) {
	var trace []string
	story := &Story{
		Start: "a",
		Scenes: map[string]*Scene{
			"a": {Text: "A"},
			"b": {
				Text: "B",
				OnEnter: func(st *State) {
					trace = append(trace, "enter")
					if st.Hour != 9 {
						t.Errorf("Expected clock advanced before onEnter, hour=%d", st.Hour)
					}
					if st.CurrentSceneID != "b" {
						t.Errorf("Expected current scene set before onEnter, got %s", st.CurrentSceneID)
					}
				},
			},
		},
	}
	eng := testEngine(t, story)
	st := NewState("a")

	eng.Step(st, Choice{
		ID:      "go",
		Effects: Effects{StatMorality: 5},
		GoTo:    "b",
		After: func(st *State) {
			trace = append(trace, "after")
			if st.Morality != 5 {
				t.Errorf("Expected effects applied before after hook, morality=%d", st.Morality)
			}
			if st.Hour != 8 {
				t.Errorf("Expected after hook before clock advance, hour=%d", st.Hour)
			}
		},
	})

	if len(trace) != 2 || trace[0] != "after" || trace[1] != "enter" {
		t.Errorf("Expected [after enter], got %v", trace)
	}
}

func TestStep_ClockRollsOverMidnight(t *testing.T) {
	eng := testEngine(t, twoSceneStory())
	st := NewState("start")
	st.Hour = 23

	eng.Step(st, Choice{ID: "next", GoTo: "end"})
	if st.Day != 1 || st.Hour != 0 {
		t.Errorf("Expected Day 1 00:00, got %s", st.Clock())
	}
}

func TestPresented_TruncatesToFour(t *testing.T) {
	sc := &Scene{Choices: make([]Choice, 6)}
	if got := len(Presented(sc)); got != MaxChoices {
		t.Errorf("Expected %d choices, got %d", MaxChoices, got)
	}
	if Presented(nil) != nil {
		t.Error("Expected nil choices for nil scene")
	}
}

func TestApplyChoice_HiddenChoiceRejected(t *testing.T) {
	choices := []Choice{
		{ID: "1", GoTo: "a"}, {ID: "2", GoTo: "a"}, {ID: "3", GoTo: "a"},
		{ID: "4", GoTo: "a"}, {ID: "5", GoTo: "a"},
	}
	story := &Story{Start: "a", Scenes: map[string]*Scene{"a": {Text: "A", Choices: choices}}}
	eng := testEngine(t, story)

	if _, err := eng.ApplyChoice(NewState("a"), "5"); !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("Expected fifth choice to be unavailable, got %v", err)
	}
}

func TestBegin_FiresStartEntryHook(t *testing.T) {
	story := &Story{
		Start: "a",
		Scenes: map[string]*Scene{
			"a": {Text: "A", Enter: &HookSpec{SetFlags: []string{"woke"}}},
		},
	}
	eng := testEngine(t, story)
	st := NewState("a")

	res := eng.Begin(st)
	if res.Scene == nil || res.Scene.ID != "a" {
		t.Fatal("Expected start scene to be presented")
	}
	if !st.Flags["woke"] {
		t.Error("Expected entry hook to set flag")
	}
}
