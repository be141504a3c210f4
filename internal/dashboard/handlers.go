package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/velorisk/riskmap/internal/mapview"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Layout     *Layout
	Models     []option
	Views      []option
	DeckURL    string
	BasemapURL string
}

// handlePage renders the dashboard for ?model= and ?view=, defaulting to
// the segment model and the actual risk view.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	model := mapview.Segment
	if q := r.URL.Query().Get("model"); q != "" {
		m, err := mapview.ParseModel(q)
		if err != nil {
			http.Error(w, "unknown model", http.StatusNotFound)
			return
		}
		model = m
	}
	view := mapview.Actual
	if q := r.URL.Query().Get("view"); q != "" {
		v, err := mapview.ParseView(q)
		if err != nil {
			http.Error(w, "unknown view", http.StatusNotFound)
			return
		}
		view = v
	}

	data := pageData{
		Layout:     s.layout,
		DeckURL:    "/api/deck/" + string(model) + "/" + string(view) + "?data=url",
		BasemapURL: BasemapURL(s.cfg.Map.Provider, s.cfg.Map.Style),
	}
	for _, m := range mapview.Models {
		data.Models = append(data.Models, option{Value: string(m), Label: m.Label(), Selected: m == model})
	}
	for _, v := range mapview.Views {
		data.Views = append(data.Views, option{Value: string(v), Label: v.Label(), Selected: v == view})
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		zap.L().Error("dashboard: render page failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleDeck serves the deck JSON for a model and view. With ?data=url the
// layer references the GeoJSON endpoint instead of embedding features.
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	prep, model, ok := s.dataset(w, r)
	if !ok {
		return
	}
	view, err := mapview.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		http.Error(w, "unknown view", http.StatusNotFound)
		return
	}

	byURL := r.URL.Query().Get("data") == "url"
	key := "deck/" + string(model) + "/" + string(view)
	if byURL {
		key += "/url"
	}

	s.serveRendered(w, "deck", key, func() (any, error) {
		opts := s.deckOptions()
		if byURL {
			opts.DataURL = "/api/geojson/" + string(model)
		}
		return prep.Deck(view, opts), nil
	})
}

// handleGeoJSON serves the prepared feature collection of a model.
func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	prep, model, ok := s.dataset(w, r)
	if !ok {
		return
	}
	s.serveRendered(w, "geojson", "geojson/"+string(model), func() (any, error) {
		return prep.Collection, nil
	})
}

type legendEntry struct {
	Value float64  `json:"value"`
	Color [4]uint8 `json:"color"`
	Hex   string   `json:"hex"`
}

type legendResponse struct {
	Model   string        `json:"model"`
	View    string        `json:"view"`
	Label   string        `json:"label"`
	Column  string        `json:"column"`
	Ramp    string        `json:"ramp"`
	Entries []legendEntry `json:"entries"`
}

// handleLegend serves the color map of a model and view.
func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	prep, model, ok := s.dataset(w, r)
	if !ok {
		return
	}
	view, err := mapview.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		http.Error(w, "unknown view", http.StatusNotFound)
		return
	}

	entries, err := prep.Legend(view)
	if err != nil {
		http.Error(w, "unknown view", http.StatusNotFound)
		return
	}
	resp := legendResponse{
		Model:   string(model),
		View:    string(view),
		Label:   view.Label(),
		Column:  view.ColorColumn(),
		Ramp:    prep.ColorMaps[view].Ramp,
		Entries: make([]legendEntry, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = legendEntry{Value: e.Value, Color: e.Color, Hex: e.Color.Hex()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAsset serves one of the images named by the layout.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.layout.HasImage(name) {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.cfg.Assets.Dir, name)
	if _, err := os.Stat(path); err != nil {
		zap.L().Warn("dashboard: asset missing", zap.String("path", path), zap.Error(err))
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}

// handleHealth reports the loaded datasets.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	features := make(map[string]int, len(s.datasets))
	for m, p := range s.datasets {
		features[string(m)] = p.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"datasets": features,
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"cache":    s.renders.Stats(),
	})
}

// dataset resolves the {model} URL parameter, writing a 404 when unknown.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*mapview.Prepared, mapview.Model, bool) {
	model, err := mapview.ParseModel(chi.URLParam(r, "model"))
	if err != nil {
		http.Error(w, "unknown model", http.StatusNotFound)
		return nil, "", false
	}
	return s.datasets[model], model, true
}

// serveRendered writes the cached JSON for key, rendering and caching it on
// a miss.
func (s *Server) serveRendered(w http.ResponseWriter, kind, key string, render func() (any, error)) {
	if cached, ok := s.renders.Get(key); ok {
		s.metrics.CacheLookup(kind, true)
		writeRendered(w, cached, "hit")
		return
	}
	s.metrics.CacheLookup(kind, false)

	v, err := render()
	if err != nil {
		zap.L().Error("dashboard: render failed", zap.String("key", key), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("dashboard: render failed", zap.String("key", key),
			zap.Error(eris.Wrapf(err, "dashboard: encode %s", key)))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	s.renders.Put(key, b)
	writeRendered(w, b, "miss")
}

func writeRendered(w http.ResponseWriter, body []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
