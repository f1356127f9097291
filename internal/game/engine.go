package game

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	ErrUnknownChoice = errors.New("unknown choice")
	ErrUnknownScene  = errors.New("unknown scene")
)

// Engine drives transitions over a Story. It holds no per-run state; every
// call works on the *State it is handed, which the caller owns exclusively.
type Engine struct {
	Story     *Story
	Logger    *zap.Logger
	Now       func() time.Time
	StepHours int
}

// StepResult is what a renderer needs after a transition settles.
type StepResult struct {
	Scene   *Scene
	Choices []Choice
	Ending  *Ending
	Missing string
}

// NewEngine compiles story and reports its recoverable data problems.
func NewEngine(story *Story, logger *zap.Logger) (*Engine, error) {
	if story == nil {
		return nil, errors.New("story is required")
	}
	if err := story.Compile(); err != nil {
		return nil, fmt.Errorf("compile story: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{Story: story, Logger: logger.Named("engine"), StepHours: 1}
	for _, p := range story.Problems() {
		e.Logger.Warn("story problem", zap.String("problem", p))
	}
	return e, nil
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) step() int {
	if e.StepHours <= 0 {
		return 1
	}
	return e.StepHours
}

// CurrentScene returns the scene st is parked on.
func (e *Engine) CurrentScene(st *State) (*Scene, error) {
	n := e.Story.Scenes[st.CurrentSceneID]
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScene, st.CurrentSceneID)
	}
	return n, nil
}

// Presented returns the choices shown for sc: the first MaxChoices declared.
func Presented(sc *Scene) []Choice {
	if sc == nil {
		return nil
	}
	if len(sc.Choices) > MaxChoices {
		return sc.Choices[:MaxChoices]
	}
	return sc.Choices
}

// Begin enters the current scene of a fresh run, firing its entry hook.
func (e *Engine) Begin(st *State) StepResult {
	return e.enter(st, st.CurrentSceneID)
}

// ApplyChoice takes the presented choice with the given id from the current scene.
func (e *Engine) ApplyChoice(st *State, choiceID string) (StepResult, error) {
	sc, err := e.CurrentScene(st)
	if err != nil {
		return StepResult{}, err
	}
	for _, ch := range Presented(sc) {
		if ch.ID == choiceID {
			return e.Step(st, ch), nil
		}
	}
	return StepResult{Scene: sc, Choices: Presented(sc)}, fmt.Errorf("%w: %s", ErrUnknownChoice, choiceID)
}

// Step performs one transition: effects, the choice's after hook, the clock,
// then either ending resolution or entry into the target scene.
func (e *Engine) Step(st *State, ch Choice) StepResult {
	ApplyEffects(st, ch.Effects, e.now())
	if ch.After != nil {
		ch.After(st)
	}
	st.advance(e.step())

	if ch.GoTo == TheEnd {
		sc := e.Story.Scenes[st.CurrentSceneID]
		return StepResult{Scene: sc, Ending: e.Conclude(st)}
	}
	return e.enter(st, ch.GoTo)
}

// enter moves st onto scene id. A missing scene leaves st parked where it
// was and records one diagnostic.
func (e *Engine) enter(st *State, id string) StepResult {
	sc := e.Story.Scenes[id]
	if sc == nil {
		st.log(e.now(), fmt.Sprintf("Missing scene '%s'", id), CategoryWorldEvent)
		e.logger().Warn("missing scene",
			zap.String("target", id),
			zap.String("current", st.CurrentSceneID))
		cur := e.Story.Scenes[st.CurrentSceneID]
		return StepResult{Scene: cur, Choices: Presented(cur), Missing: id}
	}

	st.CurrentSceneID = id
	st.Visited = append(st.Visited, id)
	if sc.OnEnter != nil {
		sc.OnEnter(st)
	}
	e.logger().Debug("entered scene", zap.String("scene", id), zap.String("clock", st.Clock()))
	return StepResult{Scene: sc, Choices: Presented(sc)}
}

// Conclude resolves the ending for st and records it in the event log.
func (e *Engine) Conclude(st *State) *Ending {
	end := e.Story.Resolve(st)
	st.log(e.now(), "Reached: "+end.Title, CategoryWorldEvent)
	e.logger().Info("run concluded", zap.String("ending", end.ID), zap.String("clock", st.Clock()))
	return end
}

// Record appends a message to the event log of st using the engine clock.
func (e *Engine) Record(st *State, message, category string) {
	st.log(e.now(), message, category)
}
