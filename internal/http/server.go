// Package http serves the incident dashboard: the page shell, the chart and
// table partials it loads with htmx, and the JSON and SVG endpoints behind
// them.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"aceiro/internal/cache"
	"aceiro/internal/charts"
	"aceiro/internal/core"
	applog "aceiro/internal/log"
	"aceiro/internal/middleware/ratelimit"
	"aceiro/internal/middleware/security"
	"aceiro/internal/middleware/trace"
	appweb "aceiro/web"
)

// BoundariesPath is the local route of the proxied boundary GeoJSON.
const BoundariesPath = "/geo/boundaries.geojson"

const (
	geoCacheSize    = 8
	upstreamTimeout = 10 * time.Second
	maxGeoJSONBytes = 32 << 20
)

// Options configures a Server.
type Options struct {
	Addr    string
	Dataset *core.Dataset
	Env     charts.Env

	// GeoUpstreamURL is fetched and cached on the first request to
	// BoundariesPath. When set, the map spec points at BoundariesPath.
	GeoUpstreamURL string
	GeoCacheTTL    time.Duration

	RateLimitPerMinute int

	// TrustedProxies extends the private ranges whose X-Forwarded-For is used.
	TrustedProxies []string

	Logger     *applog.Logger
	HTTPClient *http.Client
}

// Server is the dashboard HTTP server. Handlers only read the dataset, which
// is never modified after NewServer.
type Server struct {
	http.Server
	templates *template.Template
	dataset   *core.Dataset
	env       charts.Env
	logger    *applog.Logger
	startedAt time.Time

	geoURL     string
	geoCache   *cache.LRUCache[[]byte]
	cacheMgr   *cache.Manager
	httpClient *http.Client

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	env := opts.Env
	if opts.GeoUpstreamURL != "" {
		env.Geo.GeoJSONURL = BoundariesPath
	}
	ttl := opts.GeoCacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: upstreamTimeout}
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		dataset:    opts.Dataset,
		env:        env,
		logger:     logger,
		startedAt:  time.Now(),
		geoURL:     opts.GeoUpstreamURL,
		geoCache:   cache.NewLRUCache[[]byte](geoCacheSize, ttl),
		cacheMgr:   cache.NewManager(logger.Logger),
		httpClient: client,
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:   security.NewDetector(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "error", err)
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger.Logger)
	s.cacheMgr.Register(s.geoCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Partials
	mux.HandleFunc("GET /ui/charts/{id}", s.handleChartPartial)
	mux.HandleFunc("GET /ui/incidents", s.handleIncidentTable)

	// Rendered charts and JSON
	mux.Handle("GET /charts/{file}", s.limited(s.handleChartSVG))
	mux.Handle("GET /api/charts", s.limited(s.handleListCharts))
	mux.Handle("GET /api/charts/{id}", s.limited(s.handleChartSpec))
	mux.Handle("GET /api/aggregates", s.limited(s.handleListAggregates))
	mux.Handle("GET /api/aggregates/{name}", s.limited(s.handleAggregate))
	mux.Handle("GET "+BoundariesPath, applog.ComponentMiddleware(applog.ComponentGeo)(s.limited(s.handleBoundaries)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(
		headers.Middleware(
			applog.Middleware(logger)(
				applog.RequestIDMiddleware(requestID)(
					s.inspect(mux)))))

	return s
}

func requestID(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}

func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		fields := applog.NewFields().
			WithClientIP(s.detector.ExtractClientIP(r)).
			WithComponent(applog.ComponentRateLimit)
		fields[applog.FieldPath] = r.URL.Path
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded", fields.ToSlice()...)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
	})(h)
}

// inspect logs requests that look like probes. They are still served.
func (s *Server) inspect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.detector.Inspect(r); reason != "" {
			fields := applog.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()).
				WithClientIP(s.detector.ExtractClientIP(r)).
				WithComponent(applog.ComponentSecurity)
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				append(fields.ToSlice(), "reason", reason)...)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
