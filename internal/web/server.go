// Package web serves the browser console: server-rendered pages over the same
// list view and form the terminal console uses, plus a websocket toast stream.
package web

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"

	"partners-cli/internal/console"
	"partners-cli/internal/logging"
	"partners-cli/internal/notify"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr    string
	Console *console.Console
	Hub     *notify.Hub
	Log     logging.Logger

	// Endpoint is the record store URL, shown in the page footer.
	Endpoint string
}

type Server struct {
	cfg  ServerConfig
	tmpl *template.Template
	log  logging.Logger
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Console == nil {
		return nil, errors.New("web: console is nil")
	}
	if cfg.Hub == nil {
		return nil, errors.New("web: notification hub is nil")
	}
	log := cfg.Log
	if log == nil {
		log = logging.Nop()
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":        strings.TrimSpace,
		"dashIfEmpty": dashIfEmpty,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, tmpl: tmpl, log: log.With("component", "web")}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /static/app.js", s.handleStatic("static/app.js", "text/javascript; charset=utf-8"))
	mux.HandleFunc("GET /ws", s.handleWS)

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /users/new", s.handleNew)
	mux.HandleFunc("GET /users/{id}", s.handleView)
	mux.HandleFunc("GET /users/{id}/edit", s.handleEdit)
	mux.HandleFunc("POST /users", s.handleCreate)
	mux.HandleFunc("POST /users/{id}", s.handleUpdate)
	mux.HandleFunc("POST /users/{id}/delete", s.handleDelete)
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(b)
	}
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		s.log.Error(r.Context(), "render template", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
