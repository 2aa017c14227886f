package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leakwatch/leakwatch/pkg/app"
	"github.com/leakwatch/leakwatch/pkg/utils/errutil"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/leakwatch/leakwatch/pkg/utils/metrics"
	"github.com/leakwatch/leakwatch/pkg/utils/safe"
	"github.com/leakwatch/leakwatch/pkg/view"
	"github.com/m-mizutani/goerr/v2"
)

type Server struct {
	router       *chi.Mux
	app          *app.App
	secureCookie bool
}

type Options func(*Server)

// WithSecureCookie marks the session cookie Secure
func WithSecureCookie(secure bool) Options {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

func New(application *app.App, opts ...Options) (*Server, error) {
	if application == nil {
		return nil, goerr.New("application is required")
	}

	r := chi.NewRouter()

	s := &Server{
		router: r,
		app:    application,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(application.Listener().Recoverer)

	r.Get("/healthz", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(application.Registry(), s.secureCookie))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, view.ReportsPath, http.StatusFound)
		})
		r.Get(view.ReportsPath, s.reportsHandler)
		r.Get(view.LogsPath, s.logsHandler)
		r.Post(view.ReportsRefreshPath, s.reportsRefreshHandler)
		r.Post(view.LogsRefreshPath, s.logsRefreshHandler)
		r.Post(view.DismissPath, s.dismissHandler)
		r.Post(view.ReloadPath, s.reloadHandler)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(map[string]string{"status": "ok"})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal health response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}

type renderFunc func(ctx context.Context, buf *bytes.Buffer) error

func writePage(w http.ResponseWriter, r *http.Request, render renderFunc) {
	var buf bytes.Buffer
	if err := render(r.Context(), &buf); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to render page", goerr.V("path", r.URL.Path)), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	safe.Write(r.Context(), w, buf.Bytes())
}

func (s *Server) reportsHandler(w http.ResponseWriter, r *http.Request) {
	inst := instanceFrom(r.Context())
	writePage(w, r, func(ctx context.Context, buf *bytes.Buffer) error {
		return inst.RenderReports(ctx, buf)
	})
}

func (s *Server) logsHandler(w http.ResponseWriter, r *http.Request) {
	inst := instanceFrom(r.Context())
	writePage(w, r, func(ctx context.Context, buf *bytes.Buffer) error {
		return inst.RenderLogs(ctx, buf)
	})
}

func (s *Server) reportsRefreshHandler(w http.ResponseWriter, r *http.Request) {
	instanceFrom(r.Context()).Reports.Refresh(r.Context(), s.app.Listener())
	http.Redirect(w, r, view.ReportsPath, http.StatusSeeOther)
}

func (s *Server) logsRefreshHandler(w http.ResponseWriter, r *http.Request) {
	instanceFrom(r.Context()).Logs.Refresh(r.Context(), s.app.Listener())
	http.Redirect(w, r, view.LogsPath, http.StatusSeeOther)
}

func (s *Server) dismissHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid dismiss form"), http.StatusBadRequest)
		return
	}

	inst := instanceFrom(r.Context())
	boundary := r.PostForm.Get("boundary")
	if !inst.Dismiss(boundary) {
		logging.From(r.Context()).Debug("nothing to dismiss", "boundary", boundary)
	}
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

func (s *Server) reloadHandler(w http.ResponseWriter, r *http.Request) {
	inst := instanceFrom(r.Context())
	fresh := s.app.Registry().Reload(inst.ID)
	setSessionCookie(w, fresh.ID, s.secureCookie)

	logging.From(r.Context()).Info("instance reloaded", "old_instance_id", inst.ID, "instance_id", fresh.ID)
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// returnPath picks the page to go back to after a fallback action
func returnPath(r *http.Request) string {
	if ref, err := url.Parse(r.Referer()); err == nil {
		switch ref.Path {
		case view.ReportsPath, view.LogsPath:
			return ref.Path
		}
	}
	return view.ReportsPath
}
