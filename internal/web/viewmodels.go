package web

import (
	"consequence/internal/game"
	"consequence/internal/play"
)

// logShown is the number of event log lines on the page.
const logShown = 12

// ViewModel is the data behind layout.html and game.html. Exactly one of
// Scene and Ending is set.
type ViewModel struct {
	Scene   *play.SceneView
	Ending  *play.EndingView
	Log     []game.LogEntry
	Message string
}

// recent returns the newest log entries first.
func recent(log []game.LogEntry) []game.LogEntry {
	n := min(len(log), logShown)
	out := make([]game.LogEntry, 0, n)
	for i := len(log) - 1; i >= len(log)-n; i-- {
		out = append(out, log[i])
	}
	return out
}
