package demoserver

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/raysh454/tempusfetch/internal/logging"
	"github.com/raysh454/tempusfetch/internal/tempus"
)

const (
	csrfCookie    = "XSRF-TOKEN"
	sessionCookie = "tempusopen_session"

	// statusPageExpired is Laravel's answer to a missing or stale CSRF token.
	statusPageExpired = 419
)

// DemoServer imitates the parts of Tempus Open that tempusfetch talks to: a
// Laravel session handed out with every page, and Inertia JSON visits that
// require the session's CSRF token and the current asset version.
type DemoServer struct {
	cfg    Config
	router chi.Router
	logger logging.Logger

	mu       sync.RWMutex
	revision int
	sessions map[string]string // session id -> csrf token
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config, logger logging.Logger) *DemoServer {
	if cfg.AssetVersion == "" {
		cfg.AssetVersion = DefaultConfig().AssetVersion
	}
	if cfg.InitialRevision <= 0 {
		cfg.InitialRevision = 1
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("demoserver")
	}
	s := &DemoServer{
		cfg:      cfg,
		router:   chi.NewRouter(),
		logger:   logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		revision: cfg.InitialRevision,
		sessions: make(map[string]string),
	}
	s.routes()
	return s
}

func (s *DemoServer) routes() {
	r := s.router
	r.Use(s.logRequests)

	r.Get("/swimmers", s.inertia("Swimmers/Index", s.swimmersIndexProps))
	r.Post("/swimmers", s.guarded(s.searchHandler))
	r.Get("/swimmers/{swimmer}", s.inertia("Swimmers/Show", s.swimmerProps))
	r.Get("/swimmers/{swimmer}/swimming", s.inertia("Swimmers/Swimming", s.swimmerProps))
	r.Get("/swimmers/{swimmer}/events/{event}", s.inertia("Swimmers/Event", s.eventProps))
	r.Get("/statistics/swimming", s.inertia("Statistics/Swimming", s.statisticsPageProps))
	r.Post("/statistics/swimming", s.guarded(s.statisticsHandler))

	r.Route("/demo", func(r chi.Router) {
		r.Get("/state", s.stateHandler)
		r.Post("/bump", s.bumpHandler)
		r.Post("/reset", s.resetHandler)
	})
}

// Handler exposes the router, for httptest servers.
func (s *DemoServer) Handler() http.Handler { return s.router }

// Start listens on the configured port until the server fails.
func (s *DemoServer) Start() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("demo server listening",
		logging.Field{Key: "url", Value: fmt.Sprintf("http://localhost:%d", s.cfg.Port)},
		logging.Field{Key: "asset_version", Value: s.cfg.AssetVersion})
	return srv.ListenAndServe()
}

// Revision is the current ranking data revision.
func (s *DemoServer) Revision() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *DemoServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request",
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path},
			logging.Field{Key: "inertia", Value: r.Header.Get("X-Inertia") == "true"})
		next.ServeHTTP(w, r)
	})
}

// ─── Sessions ──────────────────────────────────────────────────────────

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// 16 bytes encode with '=' padding, which the cookie carries percent-encoded
	return base64.StdEncoding.EncodeToString(b), nil
}

// ensureSession reuses the caller's session or starts a new one, and sets
// both cookies on w.
func (s *DemoServer) ensureSession(w http.ResponseWriter, r *http.Request) error {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	s.mu.Lock()
	token, ok := s.sessions[id]
	if !ok {
		var err error
		token, err = newToken()
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("generate csrf token: %w", err)
		}
		id = uuid.NewString()
		s.sessions[id] = token
	}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    url.QueryEscape(token),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// verify reports whether r carries a known session and its CSRF token.
func (s *DemoServer) verify(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	s.mu.RLock()
	token, ok := s.sessions[c.Value]
	s.mu.RUnlock()
	return ok && token != "" && r.Header.Get("X-XSRF-TOKEN") == token
}

func pageExpired(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusPageExpired)
	_, _ = w.Write([]byte("<!DOCTYPE html><html><body><h1>419 | Page Expired</h1></body></html>"))
}

// guarded rejects requests without a valid session and token.
func (s *DemoServer) guarded(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.verify(r) {
			s.logger.Warn("csrf token mismatch", logging.Field{Key: "path", Value: r.URL.Path})
			pageExpired(w)
			return
		}
		h(w, r)
	}
}

// ─── Inertia ───────────────────────────────────────────────────────────

type pageObject struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
	URL       string         `json:"url"`
	Version   string         `json:"version"`
}

type propsFunc func(r *http.Request) (map[string]any, int)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="sv">
<head>
    <meta charset="utf-8">
    <title>{{.Title}} - Tempus Open</title>
    <script src="/build/assets/app-{{.Version}}.js" defer></script>
</head>
<body>
    <div id="app" data-page="{{.Page}}"></div>
</body>
</html>`))

// inertia serves component as a full HTML page on a plain visit and as a
// JSON page object on an Inertia visit.
func (s *DemoServer) inertia(component string, props propsFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isInertia := r.Header.Get("X-Inertia") == "true"
		if isInertia {
			if !s.verify(r) {
				pageExpired(w)
				return
			}
			if v := r.Header.Get("X-Inertia-Version"); v != s.cfg.AssetVersion {
				s.logger.Info("asset version mismatch",
					logging.Field{Key: "got", Value: v},
					logging.Field{Key: "want", Value: s.cfg.AssetVersion})
				w.Header().Set("X-Inertia-Location", r.URL.RequestURI())
				w.WriteHeader(http.StatusConflict)
				return
			}
		}

		p, status := props(r)
		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}
		page := pageObject{Component: component, Props: p, URL: r.URL.RequestURI(), Version: s.cfg.AssetVersion}

		if isInertia {
			w.Header().Set("X-Inertia", "true")
			w.Header().Set("Vary", "X-Inertia")
			writeJSON(w, http.StatusOK, page)
			return
		}

		if err := s.ensureSession(w, r); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		raw, err := json.Marshal(page)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = pageTemplate.Execute(w, struct {
			Title   string
			Version string
			Page    string
		}{Title: component, Version: s.cfg.AssetVersion, Page: string(raw)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *DemoServer) writePage(w http.ResponseWriter, r *http.Request, component string, props map[string]any) {
	w.Header().Set("X-Inertia", "true")
	writeJSON(w, http.StatusOK, pageObject{
		Component: component,
		Props:     props,
		URL:       r.URL.RequestURI(),
		Version:   s.cfg.AssetVersion,
	})
}

// ─── Pages ─────────────────────────────────────────────────────────────

func paginated(data any, total, perPage int) map[string]any {
	return map[string]any{
		"data":         data,
		"current_page": 1,
		"per_page":     perPage,
		"total":        total,
	}
}

func (s *DemoServer) swimmersIndexProps(*http.Request) (map[string]any, int) {
	return map[string]any{
		"swimmers": paginated([]Swimmer{}, 0, 25),
		"filters":  tempus.SearchQuery{},
	}, http.StatusOK
}

func (s *DemoServer) swimmerProps(r *http.Request) (map[string]any, int) {
	id, err := strconv.Atoi(chi.URLParam(r, "swimmer"))
	if err != nil {
		return nil, http.StatusNotFound
	}
	sw, ok := findSwimmer(id)
	if !ok {
		return nil, http.StatusNotFound
	}

	rev := s.Revision()
	bests := make([]map[string]any, 0, len(events))
	for _, eid := range []int{1, 8, 9, 15, 22} {
		ev, _ := eventOf(eid)
		bests = append(bests, map[string]any{
			"event": ev,
			"time":  formatTime(swimTime(sw.ID, eid, rev)),
		})
	}
	return map[string]any{"swimmer": sw, "personal_bests": bests}, http.StatusOK
}

func (s *DemoServer) eventProps(r *http.Request) (map[string]any, int) {
	id, err := strconv.Atoi(chi.URLParam(r, "swimmer"))
	if err != nil {
		return nil, http.StatusNotFound
	}
	eid, err := strconv.Atoi(chi.URLParam(r, "event"))
	if err != nil {
		return nil, http.StatusNotFound
	}
	sw, ok := findSwimmer(id)
	if !ok {
		return nil, http.StatusNotFound
	}
	ev, ok := eventOf(eid)
	if !ok {
		return nil, http.StatusNotFound
	}
	return map[string]any{
		"swimmer": sw,
		"event":   ev,
		"results": eventHistory(sw, eid, s.Revision()),
	}, http.StatusOK
}

func (s *DemoServer) statisticsPageProps(*http.Request) (map[string]any, int) {
	return map[string]any{
		"results": paginated([]Rank{}, 0, 20),
		"filters": tempus.DefaultStatsQuery(),
	}, http.StatusOK
}

func (s *DemoServer) searchHandler(w http.ResponseWriter, r *http.Request) {
	var q tempus.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "invalid search form", http.StatusUnprocessableEntity)
		return
	}
	found := searchSwimmers(q)
	s.writePage(w, r, "Swimmers/Index", map[string]any{
		"swimmers": paginated(found, len(found), 25),
		"filters":  q,
	})
}

func (s *DemoServer) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	var q tempus.StatsQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "invalid statistics form", http.StatusUnprocessableEntity)
		return
	}
	if _, ok := eventOf(q.SwimEvent); !ok {
		http.Error(w, "unknown swim event", http.StatusUnprocessableEntity)
		return
	}
	rows := ranking(q, s.Revision())
	s.writePage(w, r, "Statistics/Swimming", map[string]any{
		"results": paginated(rows, len(rows), q.Limit),
		"filters": q,
	})
}

// ─── Control ───────────────────────────────────────────────────────────

func (s *DemoServer) stateHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"revision":      s.revision,
		"asset_version": s.cfg.AssetVersion,
		"sessions":      len(s.sessions),
	})
}

// bumpHandler moves the ranking data to the next revision.
func (s *DemoServer) bumpHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "revision": rev})
}

// resetHandler restores the initial revision and drops every session.
func (s *DemoServer) resetHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.revision = s.cfg.InitialRevision
	s.sessions = make(map[string]string)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "revision": s.cfg.InitialRevision})
}
