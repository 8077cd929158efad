package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	stdtemplate "html/template"

	"github.com/0x13a/jobservice/internal/config"
	"github.com/0x13a/jobservice/internal/middleware"
	"github.com/0x13a/jobservice/internal/template"
	"github.com/getsentry/raven-go"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	sessionName    = "____js"
	sessionTermKey = "term"
)

type Server struct {
	cfg          config.Config
	router       *mux.Router
	tmpl         *template.Template
	SessionStore *sessions.CookieStore
	log          zerolog.Logger
}

func NewServer(
	cfg config.Config,
	r *mux.Router,
	t *template.Template,
	sessionStore *sessions.CookieStore,
	log zerolog.Logger,
) Server {
	if cfg.SentryDSN != "" {
		if err := raven.SetDSN(cfg.SentryDSN); err != nil {
			log.Warn().Err(err).Msg("unable to configure sentry")
		}
	}
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = !cfg.IsDev()
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	return Server{
		cfg:          cfg,
		router:       r,
		tmpl:         t,
		SessionStore: sessionStore,
		log:          log,
	}
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) MarkdownToHTML(str string) stdtemplate.HTML {
	return s.tmpl.MarkdownToHTML(str)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) Render(w http.ResponseWriter, status int, htmlView string, data map[string]interface{}) error {
	dataMap := make(map[string]interface{}, len(data)+3)
	for k, v := range data {
		dataMap[k] = v
	}
	dataMap["SiteName"] = s.cfg.SiteName
	dataMap["SiteTagline"] = s.cfg.SiteTagline
	dataMap["SiteHost"] = s.cfg.SiteHost

	return s.tmpl.Render(w, status, htmlView, dataMap)
}

func (s Server) XML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	w.Write(data)
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (s Server) TEXT(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

// Log records err locally and reports it to Sentry when a DSN is configured.
func (s Server) Log(err error, msg string) {
	if s.cfg.SentryDSN != "" {
		raven.CaptureError(err, map[string]string{"ctx": msg})
	}
	s.log.Error().Err(err).Msg(msg)
}

func (s Server) Redirect(w http.ResponseWriter, r *http.Request, status int, dst string) {
	http.Redirect(w, r, dst, status)
}

// SearchTerm returns the committed search term kept in the session cookie.
func (s Server) SearchTerm(r *http.Request) string {
	sess, err := s.SessionStore.Get(r, sessionName)
	if err != nil {
		s.log.Debug().Err(err).Msg("unable to read session, starting a new one")
		return ""
	}
	term, _ := sess.Values[sessionTermKey].(string)
	return term
}

func (s Server) SetSearchTerm(w http.ResponseWriter, r *http.Request, term string) error {
	// a broken cookie still yields a fresh session to save into
	sess, _ := s.SessionStore.Get(r, sessionName)
	if term == "" {
		delete(sess.Values, sessionTermKey)
	} else {
		sess.Values[sessionTermKey] = term
	}
	return sess.Save(r, w)
}

// Handler is the router wrapped in the middleware chain.
func (s Server) Handler() http.Handler {
	return middleware.HTTPSMiddleware(
		middleware.LoggingMiddleware(
			middleware.HeadersMiddleware(s.router, s.cfg.Env),
			s.log,
		),
		s.cfg.Env,
	)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.IsDev() {
		s.log.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	return http.ListenAndServe(addr, s.Handler())
}
