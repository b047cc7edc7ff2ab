package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
	appweb "ledger/web"
)

const (
	defaultStorageTimeout = 10 * time.Second
	summaryCacheSize      = 16
	summaryCacheTTL       = 10 * time.Minute
	staticMaxAge          = 3600
)

// Server is the web UI over one ledger session.
type Server struct {
	http.Server

	session        *services.Session
	templates      *template.Template
	summaries      *cache.LRU[uint64, core.Summary]
	trace          *trace.Middleware
	logger         *log.Logger
	storageTimeout time.Duration
	started        time.Time
	now            func() time.Time
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l.WithComponent(log.ComponentHTTP) }
}

// WithStorageTimeout bounds each request's load and save.
func WithStorageTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.storageTimeout = d
		}
	}
}

// WithTemplates replaces the embedded templates. A nil set makes every
// page render as a plain-text fallback.
func WithTemplates(t *template.Template) Option {
	return func(s *Server) { s.templates = t }
}

// WithClock fixes the date used for form defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// ParseTemplates parses the embedded page and partial templates.
func ParseTemplates() (*template.Template, error) {
	return template.New("ledger").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func NewServer(addr string, session *services.Session, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		session:        session,
		summaries:      cache.NewLRU[uint64, core.Summary](summaryCacheSize, summaryCacheTTL),
		storageTimeout: defaultStorageTimeout,
		started:        time.Now(),
		now:            time.Now,
	}

	t, parseErr := ParseTemplates()
	s.templates = t
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.FromContext(context.Background()).WithComponent(log.ComponentHTTP)
	}
	if parseErr != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, parseErr)
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	dynamic := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }
	mux.Handle("/{$}", dynamic(s.handleIndex))
	mux.Handle("/expenses", dynamic(s.handleCreateExpense))
	mux.Handle("/expenses/delete", dynamic(s.handleDeleteExpense))
	mux.Handle("/ui/transactions", dynamic(s.handleTransactions))
	mux.Handle("/ui/summary", dynamic(s.handleSummary))
	mux.Handle("/api/summary", dynamic(s.handleAPISummary))

	s.trace = trace.NewMiddleware(s.logger, trace.ClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.trace.Middleware(headers.Middleware(mux))

	return s
}

// RunCacheJanitor drops expired summaries until ctx is done.
func (s *Server) RunCacheJanitor(ctx context.Context, interval time.Duration) {
	s.summaries.RunJanitor(ctx, interval)
}

// storageContext bounds one request's storage work.
func (s *Server) storageContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.storageTimeout)
}

// summary returns the summary of the current snapshot, cached per version.
// Ledger and version come from one Snapshot call so a concurrent write
// cannot file a summary under the wrong version.
func (s *Server) summary(ctx context.Context) (core.Summary, error) {
	l, version, err := s.session.Snapshot(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return s.summaries.GetOrCompute(version, func() (core.Summary, error) {
		return core.Summarize(l), nil
	})
}

func (s *Server) requestLogger(r *http.Request) *log.Logger {
	if l := log.FromContext(r.Context()); l.Component() == log.ComponentHTTP {
		return l
	}
	return s.logger
}
