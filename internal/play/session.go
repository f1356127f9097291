// Package play binds an engine to one run and its collaborators: a render
// sink that displays scenes, endings and log lines, a save store that keeps
// snapshots, and an observer for counters.
//
// A Session is not safe for concurrent use. Callers serialize choices.
package play

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"consequence/internal/game"
)

// DefaultSlot is the save slot used when none is configured.
const DefaultSlot = "autosave"

// Event log messages written by session commands.
const (
	MsgSaved      = "Game saved"
	MsgLoaded     = "Game loaded"
	MsgNoSave     = "No save found"
	MsgLoadFailed = "Failed to load save"
	MsgNewRun     = "New run started"
)

// RenderSink receives every settled transition.
type RenderSink interface {
	Scene(SceneView)
	Ending(EndingView)
	Log(game.LogEntry)
}

// SaveStore keeps opaque snapshots by slot id.
type SaveStore interface {
	Get(ctx context.Context, id string) ([]byte, bool, error)
	Put(ctx context.Context, id string, v []byte) error
}

// Observer is told about runs starting and transitions after they settle.
type Observer interface {
	Started()
	Transition(from, to string)
	Missing(target string)
	Ending(id string)
}

// Options wires the optional collaborators of a Session. Nil members are
// no-ops.
type Options struct {
	Sink     RenderSink
	Saves    SaveStore
	Slot     string
	Observer Observer
	Logger   *zap.Logger
}

// Session is one run: the engine, its exclusively owned state and the ports
// it reports to.
type Session struct {
	engine   *game.Engine
	state    *game.State
	sink     RenderSink
	saves    SaveStore
	slot     string
	observer Observer
	logger   *zap.Logger

	sent   int
	ending *game.Ending
}

// New returns a session over st. A nil st starts a fresh run at the story's
// start scene; nothing is rendered until Begin or Show.
func New(engine *game.Engine, st *game.State, opts Options) *Session {
	if st == nil {
		st = game.NewState(engine.Story.Start)
	}
	s := &Session{
		engine:   engine,
		state:    st,
		sink:     opts.Sink,
		saves:    opts.Saves,
		slot:     opts.Slot,
		observer: opts.Observer,
		logger:   opts.Logger,
		sent:     len(st.EventLog),
	}
	if s.sink == nil {
		s.sink = nopSink{}
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.slot == "" {
		s.slot = DefaultSlot
	}
	return s
}

// State returns the live state. Callers must treat it as read-only.
func (s *Session) State() *game.State {
	return s.state
}

// Ending returns the ending of the last terminal choice, if any.
func (s *Session) Ending() *game.Ending {
	return s.ending
}

// Begin enters the current scene, firing its entry hook, and renders it.
func (s *Session) Begin() {
	s.ending = nil
	s.observer.Started()
	res := s.engine.Begin(s.state)
	if res.Missing != "" {
		s.observer.Missing(res.Missing)
	}
	s.render(res)
}

// Show renders the current scene without running any hooks.
func (s *Session) Show() {
	sc := s.engine.Story.Scenes[s.state.CurrentSceneID]
	s.render(game.StepResult{Scene: sc, Choices: game.Presented(sc)})
}

// Choose takes the presented choice with the given id.
func (s *Session) Choose(choiceID string) (game.StepResult, error) {
	from := s.state.CurrentSceneID
	res, err := s.engine.ApplyChoice(s.state, choiceID)
	if err != nil {
		s.logger.Warn("choice rejected",
			zap.String("scene", from),
			zap.String("choice", choiceID),
			zap.Error(err))
		return res, err
	}

	switch {
	case res.Ending != nil:
		s.observer.Ending(res.Ending.ID)
	case res.Missing != "":
		s.observer.Missing(res.Missing)
	default:
		s.observer.Transition(from, s.state.CurrentSceneID)
	}
	s.render(res)
	return res, nil
}

// Save writes a snapshot of the current state to the save slot.
func (s *Session) Save(ctx context.Context) error {
	if s.saves == nil {
		return nil
	}
	raw, err := game.Snapshot(s.state)
	if err != nil {
		return err
	}
	if err := s.saves.Put(ctx, s.slot, raw); err != nil {
		s.logger.Error("Failed to save game", zap.String("slot", s.slot), zap.Error(err))
		return fmt.Errorf("save %s: %w", s.slot, err)
	}
	s.engine.Record(s.state, MsgSaved, game.CategoryDiscovery)
	s.flush()
	return nil
}

// Load replaces the current state with the one in the save slot. An empty
// slot or a broken snapshot is reported in the event log and leaves the
// current run untouched. The loaded scene is shown without re-running its
// entry hook.
func (s *Session) Load(ctx context.Context) error {
	if s.saves == nil {
		return nil
	}
	raw, ok, err := s.saves.Get(ctx, s.slot)
	if err != nil {
		s.fail(MsgLoadFailed)
		return fmt.Errorf("load %s: %w", s.slot, err)
	}
	if !ok {
		s.fail(MsgNoSave)
		return nil
	}

	restored, err := game.Restore(raw, s.engine.Story.Start)
	if err != nil {
		s.logger.Warn("Failed to restore snapshot", zap.String("slot", s.slot), zap.Error(err))
		s.fail(MsgLoadFailed)
		return err
	}
	if _, known := s.engine.Story.Scenes[restored.CurrentSceneID]; !known {
		s.logger.Warn("saved scene no longer exists",
			zap.String("scene", restored.CurrentSceneID))
		restored.CurrentSceneID = s.engine.Story.Start
	}

	s.state = restored
	s.sent = len(restored.EventLog)
	s.ending = nil
	s.engine.Record(s.state, MsgLoaded, game.CategoryDiscovery)
	s.Show()
	return nil
}

// Restart discards the current run and begins a new one.
func (s *Session) Restart() {
	s.state = game.NewState(s.engine.Story.Start)
	s.sent = 0
	s.engine.Record(s.state, MsgNewRun, game.CategoryWorldEvent)
	s.Begin()
}

func (s *Session) fail(msg string) {
	s.engine.Record(s.state, msg, game.CategoryTrauma)
	s.flush()
}

func (s *Session) render(res game.StepResult) {
	if res.Ending != nil {
		s.ending = res.Ending
		s.sink.Ending(endingView(res.Ending, s.state))
	} else if res.Scene != nil {
		s.sink.Scene(sceneView(res.Scene, res.Choices, s.state))
	}
	s.flush()
}

// flush forwards event log entries the sink has not seen yet.
func (s *Session) flush() {
	for ; s.sent < len(s.state.EventLog); s.sent++ {
		s.sink.Log(s.state.EventLog[s.sent])
	}
}

type nopSink struct{}

func (nopSink) Scene(SceneView)   {}
func (nopSink) Ending(EndingView) {}
func (nopSink) Log(game.LogEntry) {}

type nopObserver struct{}

func (nopObserver) Started()                  {}
func (nopObserver) Transition(string, string) {}
func (nopObserver) Missing(string)            {}
func (nopObserver) Ending(string)             {}
