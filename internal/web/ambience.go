package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ambienceExtensions are tried in order after the bare setting name.
var ambienceExtensions = []string{".mp3", ".ogg", ".wav", ".m4a"}

const (
	contentTypeMP3 = "audio/mpeg"
	contentTypeOGG = "audio/ogg"
	contentTypeWAV = "audio/wav"
	contentTypeM4A = "audio/mp4"

	assetCacheControl = "public, max-age=3600"
)

// handleAmbience serves the background loop for a setting from
// StaticDir/ambience/. URL shape: /ambience/<setting> with no extension.
// Settings without a recording are 404; the page plays nothing.
func (s *Server) handleAmbience(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	candidates, ok := s.ambienceCandidates(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	for _, p := range candidates {
		f, err := os.Open(p) // #nosec G304 -- p is built from an allowlisted setting under StaticDir
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			_ = f.Close()
			continue
		}
		defer f.Close()

		w.Header().Set("Content-Type", audioContentType(p))
		w.Header().Set("Cache-Control", assetCacheControl)
		http.ServeContent(w, r, filepath.Base(p), info.ModTime(), f)
		return
	}
	http.NotFound(w, r)
}

// ambienceCandidates validates the request path and returns the files that
// may hold the recording.
func (s *Server) ambienceCandidates(urlPath string) ([]string, bool) {
	if s.StaticDir == "" || !strings.HasPrefix(urlPath, "/ambience/") {
		return nil, false
	}
	setting := strings.TrimPrefix(urlPath, "/ambience/")
	if setting == "" || setting != path.Base(setting) || !validSceneryIDs[setting] {
		return nil, false
	}

	base := filepath.Join(s.StaticDir, "ambience", setting)
	candidates := []string{base}
	for _, ext := range ambienceExtensions {
		candidates = append(candidates, base+ext)
	}
	return candidates, true
}

func audioContentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".ogg":
		return contentTypeOGG
	case ".wav":
		return contentTypeWAV
	case ".m4a":
		return contentTypeM4A
	default:
		return contentTypeMP3
	}
}
