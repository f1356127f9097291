package game

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadStory loads a story from a YAML file.
func LoadStory(path string) (*Story, error) {
	// Resolve path to prevent directory traversal attacks
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, err
	}
	s, err := ParseStory(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(cleanPath), err)
	}
	return s, nil
}

// ParseStory decodes a YAML story document and compiles it.
func ParseStory(b []byte) (*Story, error) {
	var s Story
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}
	s.Order = sceneOrder(&root)

	if err := s.Compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// sceneOrder returns the keys of the top-level "scenes" mapping as written.
func sceneOrder(root *yaml.Node) []string {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "scenes" {
			continue
		}
		scenes := doc.Content[i+1]
		if scenes.Kind != yaml.MappingNode {
			return nil
		}
		ids := make([]string, 0, len(scenes.Content)/2)
		for j := 0; j+1 < len(scenes.Content); j += 2 {
			ids = append(ids, scenes.Content[j].Value)
		}
		return ids
	}
	return nil
}

// Compile fills scene ids, compiles declarative hooks and criteria, and
// checks the structural requirements of a story: a start scene that exists,
// unique choice ids within each scene, unique ending ids and a fallback that
// names a declared ending. Choices without an id get their position
// ("choice_1" ...). Dangling choice targets are not compile errors; see
// Problems.
func (s *Story) Compile() error {
	if s.compiled {
		return nil
	}
	if s.Scenes == nil {
		s.Scenes = map[string]*Scene{}
	}
	if s.Start == "" {
		s.Start = DefaultStart
	}
	for id, sc := range s.Scenes {
		if sc == nil {
			return fmt.Errorf("scene %q is empty", id)
		}
		sc.ID = id
		sc.OnEnter = Chain(sc.OnEnter, sc.Enter.Hook())
		if err := s.compileChoices(sc); err != nil {
			return err
		}
	}
	if _, ok := s.Scenes[s.Start]; !ok {
		return fmt.Errorf("start scene %q not found", s.Start)
	}

	seen := make(map[string]bool, len(s.Endings))
	for _, e := range s.Endings {
		if e == nil || e.ID == "" {
			return fmt.Errorf("ending without id")
		}
		if seen[e.ID] {
			return fmt.Errorf("ending %q declared twice", e.ID)
		}
		seen[e.ID] = true
		if e.Criteria == nil {
			e.Criteria = e.When.Predicate()
		}
	}
	if s.Fallback != "" && !seen[s.Fallback] {
		return fmt.Errorf("fallback ending %q not declared", s.Fallback)
	}

	if len(s.Order) != len(s.Scenes) {
		s.Order = make([]string, 0, len(s.Scenes))
		for id := range s.Scenes {
			s.Order = append(s.Order, id)
		}
		sort.Strings(s.Order)
	}
	s.compiled = true
	return nil
}

// compileChoices names unnamed choices by position, rejects repeated ids and
// compiles after hooks.
func (s *Story) compileChoices(sc *Scene) error {
	seen := make(map[string]bool, len(sc.Choices))
	for i := range sc.Choices {
		ch := &sc.Choices[i]
		if ch.ID == "" {
			ch.ID = fmt.Sprintf("choice_%d", i+1)
			if s.unnamed == nil {
				s.unnamed = map[string][]string{}
			}
			s.unnamed[sc.ID] = append(s.unnamed[sc.ID], ch.ID)
		}
		if seen[ch.ID] {
			return fmt.Errorf("scene %q declares choice %q twice", sc.ID, ch.ID)
		}
		seen[ch.ID] = true
		ch.After = Chain(ch.After, ch.Then.Hook())
	}
	return nil
}

// Problems lists recoverable data faults: choices whose target is neither a
// scene nor TheEnd, choices that were named by position, and scenes
// declaring more choices than are presented.
func (s *Story) Problems() []string {
	var out []string
	for _, id := range s.Order {
		sc := s.Scenes[id]
		if sc == nil {
			continue
		}
		for _, cid := range s.unnamed[id] {
			out = append(out, fmt.Sprintf("scene %q has a choice without id; named %q", id, cid))
		}
		if len(sc.Choices) > MaxChoices {
			out = append(out, fmt.Sprintf("scene %q declares %d choices; only %d are shown", id, len(sc.Choices), MaxChoices))
		}
		for _, ch := range sc.Choices {
			if ch.GoTo == TheEnd {
				continue
			}
			if _, ok := s.Scenes[ch.GoTo]; !ok {
				out = append(out, fmt.Sprintf("scene %q choice %q targets missing scene %q", id, ch.ID, ch.GoTo))
			}
		}
	}
	return out
}

// Ending returns the declared ending with the given id.
func (s *Story) Ending(id string) (*Ending, bool) {
	for _, e := range s.Endings {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}
