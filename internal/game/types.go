package game

// TheEnd is the choice target that concludes a run. It is never a scene id.
const TheEnd = "THE_END"

// MaxChoices is the number of choices presented for any scene.
const MaxChoices = 4

// Bounded stat names accepted in Effects.
const (
	StatMorality = "morality"
	StatTrauma   = "trauma"
	StatStress   = "stress"
)

// Event log categories.
const (
	CategoryConsequence = "consequence"
	CategoryWorldEvent  = "world_event"
	CategoryDiscovery   = "discovery"
	CategoryTrauma      = "trauma"
)

// LogEntry is one line of the in-game event log.
type LogEntry struct {
	Time     int64  `json:"t"` // unix milliseconds
	Message  string `json:"message"`
	Category string `json:"category"`
}

// State is the mutable progress record of a single run. It is owned by
// exactly one session; renderers only read it.
type State struct {
	Day            int             `json:"day"`
	Hour           int             `json:"hour"`
	Morality       int             `json:"morality"`
	Trauma         int             `json:"trauma"`
	Stress         int             `json:"stress"`
	Inventory      []string        `json:"inventory"`
	Flags          map[string]bool `json:"flags"`
	CurrentSceneID string          `json:"currentSceneId"`
	EventLog       []LogEntry      `json:"eventLog"`
	Visited        []string        `json:"visited"`
}

// Effects maps a stat name to a signed delta. Absent keys and zero deltas
// change nothing.
type Effects map[string]int

// Hook mutates state when a choice is taken or a scene is entered.
type Hook func(*State)

// Predicate decides whether an ending applies. It only sees a read-only view.
type Predicate func(View) bool

// Story is the scene graph plus its ending table. It is immutable once
// loaded and shared by every session.
type Story struct {
	Title    string            `yaml:"title"`
	Start    string            `yaml:"start"`
	Fallback string            `yaml:"fallback"`
	Scenes   map[string]*Scene `yaml:"scenes"`
	Endings  []*Ending         `yaml:"endings"`

	// Order lists scene ids in authored order.
	Order []string `yaml:"-"`

	compiled bool
	unnamed  map[string][]string // scene id -> positional choice ids
}

// Scene is a narrative node with up to four choices.
type Scene struct {
	ID      string    `yaml:"id,omitempty"`
	Kind    string    `yaml:"type,omitempty"` // "ending" marks fixture terminal scenes
	Text    string    `yaml:"text"`
	Setting string    `yaml:"setting,omitempty"`
	Choices []Choice  `yaml:"choices"`
	Enter   *HookSpec `yaml:"onEnter,omitempty"`

	OnEnter Hook `yaml:"-"`
}

// Choice is an edge from a scene to another scene or to TheEnd.
type Choice struct {
	ID      string    `yaml:"id,omitempty"`
	Text    string    `yaml:"text"`
	Effects Effects   `yaml:"effects,omitempty"`
	GoTo    string    `yaml:"goTo"`
	Then    *HookSpec `yaml:"after,omitempty"`

	After Hook `yaml:"-"`
}

// Ending is a predicate-selected outcome. Endings are not scenes.
type Ending struct {
	ID    string    `yaml:"id"`
	Title string    `yaml:"title"`
	Text  string    `yaml:"text"`
	When  *Criteria `yaml:"criteria,omitempty"`

	Criteria Predicate `yaml:"-"`
}
