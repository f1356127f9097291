package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"consequence/internal/game"
	"consequence/internal/play"
	"consequence/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves one run per browser. The live state of each run is kept in
// Sessions between requests; explicit saves go to Saves under the same id.
type Server struct {
	Engine    *game.Engine
	Sessions  session.BlobStore
	Saves     session.BlobStore
	Tmpl      *template.Template
	Logger    *zap.Logger
	Observer  play.Observer
	StaticDir string
}

const cookieName = "consequence_sid"

// ParseTemplates parses the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"recent": recent,
	}).ParseFS(templateFS, "templates/*.html")
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/play", s.handlePlay)
	mux.HandleFunc("/save", s.handleSave)
	mux.HandleFunc("/load", s.handleLoad)
	mux.HandleFunc("/restart", s.handleRestart)
	mux.HandleFunc("/map", s.handleMap)
	mux.HandleFunc("/scenery/", s.handleScenery)
	mux.HandleFunc("/ambience/", s.handleAmbience)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/play", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// GET /play shows the current scene; POST /play takes form value "choice".
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.serve(w, r, func(*play.Session) error { return nil })
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		choice := r.FormValue("choice")
		s.serve(w, r, func(sess *play.Session) error {
			_, err := sess.Choose(choice)
			return err
		})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /save
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.serve(w, r, func(sess *play.Session) error { return sess.Save(r.Context()) })
}

// POST /load
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.serve(w, r, func(sess *play.Session) error { return sess.Load(r.Context()) })
}

// POST /restart
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.serve(w, r, func(sess *play.Session) error {
		sess.Restart()
		return nil
	})
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// serve restores the caller's run, applies act, stores the run again and
// renders the outcome. Rejected choices and failed loads are shown as a
// message on the page, not as an HTTP error.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, act func(*play.Session) error) {
	ctx := r.Context()
	sink := &pageSink{}
	sess, id, err := s.open(ctx, w, r, sink)
	if err != nil {
		s.logger().Error("Failed to open session", zap.Error(err))
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	msg := ""
	if err := act(sess); err != nil {
		switch {
		case errors.Is(err, game.ErrUnknownChoice):
			msg = "That choice is not available here."
		case errors.Is(err, game.ErrInvalidSnapshot):
			msg = "The saved game could not be read."
		default:
			s.logger().Warn("request action failed", zap.String("path", r.URL.Path), zap.Error(err))
			msg = "Something went wrong. Try again."
		}
	}
	if sink.scene == nil && sink.ending == nil {
		sess.Show()
	}

	if err := s.store(ctx, id, sess.State()); err != nil {
		s.logger().Error("Failed to store session", zap.String("session", id), zap.Error(err))
		http.Error(w, "failed to save state", http.StatusInternalServerError)
		return
	}

	vm := ViewModel{
		Scene:   sink.scene,
		Ending:  sink.ending,
		Log:     sess.State().EventLog,
		Message: msg,
	}
	name := "layout.html"
	if r.Header.Get("HX-Request") == "true" {
		// htmx: return fragment for #game only
		name = "game.html"
	}
	w.Header().Set("Cache-Control", "no-store")
	if err := s.Tmpl.ExecuteTemplate(w, name, vm); err != nil {
		s.logger().Error("Failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "failed to render template", http.StatusInternalServerError)
	}
}

// open restores the run behind the request cookie, starting a new one when
// the cookie or the stored snapshot is missing or unreadable.
func (s *Server) open(ctx context.Context, w http.ResponseWriter, r *http.Request, sink play.RenderSink) (*play.Session, string, error) {
	opts := play.Options{Sink: sink, Saves: s.Saves, Observer: s.Observer, Logger: s.Logger}

	id := s.sessionID(r)
	if id == "" {
		id = s.Sessions.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	opts.Slot = id

	raw, ok, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if ok {
		st, err := game.Restore(raw, s.Engine.Story.Start)
		if err == nil && s.Engine.Story.Scenes[st.CurrentSceneID] != nil {
			return play.New(s.Engine, st, opts), id, nil
		}
		s.logger().Warn("discarding unusable session", zap.String("session", id), zap.Error(err))
	}

	sess := play.New(s.Engine, nil, opts)
	sess.Begin()
	return sess, id, nil
}

func (s *Server) store(ctx context.Context, id string, st *game.State) error {
	raw, err := game.Snapshot(st)
	if err != nil {
		return err
	}
	return s.Sessions.Put(ctx, id, raw)
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// pageSink keeps what one request rendered.
type pageSink struct {
	scene  *play.SceneView
	ending *play.EndingView
}

func (p *pageSink) Scene(v play.SceneView) {
	p.scene, p.ending = &v, nil
}

func (p *pageSink) Ending(v play.EndingView) {
	p.ending, p.scene = &v, nil
}

func (p *pageSink) Log(game.LogEntry) {}
