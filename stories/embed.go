// Package stories bundles the story files shipped with the game.
package stories

import (
	_ "embed"

	"consequence/internal/game"
)

// Consequence is the default story document.
//
//go:embed consequence.yaml
var Consequence []byte

// Load reads the story at path, or the embedded default when path is empty.
func Load(path string) (*game.Story, error) {
	if path == "" {
		return game.ParseStory(Consequence)
	}
	return game.LoadStory(path)
}
