// Package normalize turns an arbitrary scene collection into a well-formed,
// fixed-size fixture database.
//
// The output always has a start scene that exists, exactly Options.Endings
// designated endings, no choice that targets its own scene, and exactly
// Options.Total scenes (or the minimum that can hold the start scene and the
// endings, when Total is smaller). Running Normalize on its own output
// changes nothing.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"consequence/internal/game"
)

// Defaults used by the fixture database.
const (
	DefaultStart   = game.DefaultStart
	DefaultEndings = 6
	DefaultTotal   = 2513

	endingKind    = "ending"
	endingPrefix  = "ending_"
	synthPrefix   = "ending_synth_"
	fillerPrefix  = "filler_"
	synthText     = "The story ends."
	fillerText    = "...the days blur together."
	fillerChoice  = "Continue"
	startFillText = "The story begins."
)

var endingName = regexp.MustCompile(`(?i)ending`)

// Options tunes the normalization targets. Zero values use the defaults.
type Options struct {
	Start   string
	Endings int
	Total   int
}

func (o Options) withDefaults() Options {
	if o.Start == "" {
		o.Start = DefaultStart
	}
	if o.Endings <= 0 {
		o.Endings = DefaultEndings
	}
	if o.Total <= 0 {
		o.Total = DefaultTotal
	}
	return o
}

// Meta describes a normalized database.
type Meta struct {
	Start   string   `yaml:"start" json:"start"`
	Endings []string `yaml:"endings" json:"endings"`
	Total   int      `yaml:"total" json:"total"`
}

// Database is an ordered scene collection with its meta block.
type Database struct {
	Order  []string
	Scenes map[string]*game.Scene
	Meta   Meta
}

// Report counts what a normalization pass changed.
type Report struct {
	Rewritten   int
	Synthesized int
	Padded      int
	Trimmed     int
}

// Changed reports whether the pass altered anything.
func (r Report) Changed() bool {
	return r.Rewritten+r.Synthesized+r.Padded+r.Trimmed > 0
}

func (r Report) String() string {
	return fmt.Sprintf("rewritten=%d synthesized=%d padded=%d trimmed=%d",
		r.Rewritten, r.Synthesized, r.Padded, r.Trimmed)
}

// FromStory takes the scenes of a story in authored order.
func FromStory(s *game.Story) []*game.Scene {
	out := make([]*game.Scene, 0, len(s.Order))
	for _, id := range s.Order {
		if sc := s.Scenes[id]; sc != nil {
			out = append(out, sc)
		}
	}
	return out
}

// Normalize builds a fixture database from scenes, which are keyed by their
// ID in the given order. Later duplicates of an id are ignored. The input
// scenes are not modified.
func Normalize(scenes []*game.Scene, opts Options) (*Database, Report) {
	opts = opts.withDefaults()
	var rep Report

	db := &Database{Scenes: make(map[string]*game.Scene, len(scenes))}
	for _, sc := range scenes {
		if sc == nil || sc.ID == "" {
			continue
		}
		if _, dup := db.Scenes[sc.ID]; dup {
			continue
		}
		db.add(copyScene(sc))
	}

	db.Meta.Start = db.pickStart(opts.Start)
	var opening *game.Scene
	if db.Meta.Start == "" {
		db.Meta.Start = opts.Start
		opening = &game.Scene{ID: opts.Start, Text: startFillText, Choices: []game.Choice{}}
		db.add(opening)
		rep.Padded++
	}

	found := db.detectEndings()
	if len(found) >= opts.Endings {
		db.Meta.Endings = found[:opts.Endings]
	} else {
		db.Meta.Endings = found
		for i := 0; len(db.Meta.Endings) < opts.Endings; i++ {
			id := fmt.Sprintf("%s%d", synthPrefix, i)
			if existing, ok := db.Scenes[id]; ok {
				if id != db.Meta.Start && isEnding(existing) && !contains(db.Meta.Endings, id) {
					db.Meta.Endings = append(db.Meta.Endings, id)
				}
				continue
			}
			db.add(&game.Scene{ID: id, Kind: endingKind, Text: synthText, Choices: []game.Choice{}})
			db.Meta.Endings = append(db.Meta.Endings, id)
			rep.Synthesized++
		}
	}

	if opening != nil {
		opening.Choices = []game.Choice{{Text: fillerChoice, GoTo: db.Meta.Endings[0]}}
	}

	rep.Rewritten = db.breakSelfLoops()

	switch keep := db.keepers(); {
	case len(db.Order) > opts.Total:
		rep.Trimmed = db.trim(keep, max(opts.Total, len(keep)))
	case len(db.Order) < opts.Total:
		for i := 0; len(db.Order) < opts.Total; i++ {
			id := fmt.Sprintf("%s%d", fillerPrefix, i)
			if _, ok := db.Scenes[id]; ok {
				continue
			}
			db.add(&game.Scene{
				ID:   id,
				Text: fillerText,
				Choices: []game.Choice{
					{Text: fillerChoice, GoTo: db.Meta.Endings[0]},
				},
			})
			rep.Padded++
		}
	}

	db.Meta.Total = len(db.Order)
	return db, rep
}

func (db *Database) add(sc *game.Scene) {
	db.Scenes[sc.ID] = sc
	db.Order = append(db.Order, sc.ID)
}

func (db *Database) pickStart(preferred string) string {
	if _, ok := db.Scenes[preferred]; ok {
		return preferred
	}
	if len(db.Order) > 0 {
		return db.Order[0]
	}
	return ""
}

func isEnding(sc *game.Scene) bool {
	if strings.HasPrefix(sc.ID, endingPrefix) || sc.Kind == endingKind {
		return true
	}
	return len(sc.Choices) == 0 && endingName.MatchString(sc.ID)
}

func (db *Database) detectEndings() []string {
	var out []string
	for _, id := range db.Order {
		if id == db.Meta.Start {
			continue
		}
		if isEnding(db.Scenes[id]) {
			out = append(out, id)
		}
	}
	return out
}

// breakSelfLoops points every self-targeting choice at the first designated
// ending other than the scene itself. A choice with no such ending is dropped.
func (db *Database) breakSelfLoops() int {
	n := 0
	for _, id := range db.Order {
		sc := db.Scenes[id]
		kept := sc.Choices[:0]
		for _, ch := range sc.Choices {
			if ch.GoTo != id {
				kept = append(kept, ch)
				continue
			}
			n++
			if target := db.escapeFor(id); target != "" {
				ch.GoTo = target
				kept = append(kept, ch)
			}
		}
		sc.Choices = kept
	}
	return n
}

func (db *Database) escapeFor(id string) string {
	for _, e := range db.Meta.Endings {
		if e != id {
			return e
		}
	}
	return ""
}

func (db *Database) keepers() []string {
	keep := []string{db.Meta.Start}
	for _, e := range db.Meta.Endings {
		if !contains(keep, e) {
			keep = append(keep, e)
		}
	}
	return keep
}

// trim keeps the keepers first, then the earliest remaining scenes, up to limit.
func (db *Database) trim(keep []string, limit int) int {
	before := len(db.Order)
	order := make([]string, 0, limit)
	scenes := make(map[string]*game.Scene, limit)
	for _, id := range keep {
		order = append(order, id)
		scenes[id] = db.Scenes[id]
	}
	for _, id := range db.Order {
		if len(order) >= limit {
			break
		}
		if _, ok := scenes[id]; ok {
			continue
		}
		order = append(order, id)
		scenes[id] = db.Scenes[id]
	}
	db.Order, db.Scenes = order, scenes
	return before - len(order)
}

func copyScene(sc *game.Scene) *game.Scene {
	c := *sc
	c.Choices = append([]game.Choice(nil), sc.Choices...)
	if c.Choices == nil {
		c.Choices = []game.Choice{}
	}
	return &c
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
