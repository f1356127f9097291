package normalize

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"consequence/internal/game"
)

// MarshalYAML writes the meta block followed by the scenes in database order.
func (db *Database) MarshalYAML() (interface{}, error) {
	var meta yaml.Node
	if err := meta.Encode(db.Meta); err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}

	scenes := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range db.Order {
		sc := *db.Scenes[id]
		sc.ID = ""
		var val yaml.Node
		if err := val.Encode(&sc); err != nil {
			return nil, fmt.Errorf("encode scene %s: %w", id, err)
		}
		scenes.Content = append(scenes.Content, scalar(id), &val)
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalar("meta"), &meta,
			scalar("scenes"), scenes,
		},
	}, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// DecodeScenes reads the top-level "scenes" mapping of a story file or a
// normalized database, keeping the authored order. Other keys are ignored.
func DecodeScenes(b []byte) ([]*game.Scene, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("decode scenes: %w", err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, errors.New("decode scenes: document is not a mapping")
	}

	var out []*game.Scene
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "scenes" {
			continue
		}
		node := doc.Content[i+1]
		if node.Kind != yaml.MappingNode {
			return nil, errors.New("decode scenes: scenes is not a mapping")
		}
		for j := 0; j+1 < len(node.Content); j += 2 {
			id := node.Content[j].Value
			sc := &game.Scene{}
			if err := node.Content[j+1].Decode(sc); err != nil {
				return nil, fmt.Errorf("decode scene %s: %w", id, err)
			}
			sc.ID = id
			out = append(out, sc)
		}
	}
	return out, nil
}
