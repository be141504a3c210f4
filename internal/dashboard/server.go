// Package dashboard serves the risk map page, its layer JSON and the static
// chart images.
package dashboard

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/velorisk/riskmap/internal/cache"
	"github.com/velorisk/riskmap/internal/config"
	"github.com/velorisk/riskmap/internal/mapview"
	"github.com/velorisk/riskmap/internal/metrics"
)

// Options configure a Server.
type Options struct {
	Config   *config.Config
	Datasets map[mapview.Model]*mapview.Prepared
	Layout   *Layout
	Metrics  *metrics.Collector
}

// Server holds the prepared datasets and renders the dashboard.
type Server struct {
	cfg      *config.Config
	datasets map[mapview.Model]*mapview.Prepared
	layout   *Layout
	metrics  *metrics.Collector
	renders  *cache.Cache[[]byte]
	page     *template.Template
	limiter  *rate.Limiter
	started  time.Time
}

// New validates opts and builds a Server. Every model must have a
// prepared dataset.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, eris.New("dashboard: config is required")
	}
	for _, m := range mapview.Models {
		if opts.Datasets[m] == nil {
			return nil, eris.Errorf("dashboard: missing %s dataset", m)
		}
	}

	layout := opts.Layout
	if layout == nil {
		var err error
		if layout, err = DefaultLayout(); err != nil {
			return nil, err
		}
	}

	page, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: parse page template")
	}

	s := &Server{
		cfg:      opts.Config,
		datasets: opts.Datasets,
		layout:   layout,
		metrics:  opts.Metrics,
		renders:  cache.New[[]byte](opts.Config.Cache.MaxEntries, opts.Config.Cache.TTL),
		page:     page,
		started:  time.Now(),
	}
	if opts.Config.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.Config.Server.RateLimit), opts.Config.Server.Burst)
	}
	for m, p := range opts.Datasets {
		s.metrics.SetFeatures(string(m), p.Len())
	}
	return s, nil
}

// Router returns the HTTP handler with every dashboard route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/", s.handlePage)
		r.Get("/api/deck/{model}/{view}", s.handleDeck)
		r.Get("/api/geojson/{model}", s.handleGeoJSON)
		r.Get("/api/legend/{model}/{view}", s.handleLegend)
		r.Get("/assets/{name}", s.handleAsset)
	})

	return r
}

// deckOptions maps the map configuration onto deck options.
func (s *Server) deckOptions() mapview.DeckOptions {
	return mapview.DeckOptions{
		Zoom:          s.cfg.Map.Zoom,
		Pitch:         s.cfg.Map.Pitch,
		MapStyle:      s.cfg.Map.Style,
		MapProvider:   s.cfg.Map.Provider,
		TooltipFields: s.cfg.Data.TooltipFields,
	}
}

// cartoStyles are the carto basemaps the page can render.
var cartoStyles = map[string]string{
	"light": "https://basemaps.cartocdn.com/gl/positron-gl-style/style.json",
	"dark":  "https://basemaps.cartocdn.com/gl/dark-matter-gl-style/style.json",
	"road":  "https://basemaps.cartocdn.com/gl/voyager-gl-style/style.json",
}

// BasemapURL resolves a provider and style to a MapLibre style URL. Unknown
// combinations return "" and the map renders without a basemap.
func BasemapURL(provider, style string) string {
	if provider != "carto" {
		return ""
	}
	return cartoStyles[style]
}
