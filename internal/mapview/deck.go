package mapview

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Layer and view defaults of the dashboard map.
const (
	DefaultZoom        = 13
	DefaultPitch       = 0
	DefaultMapStyle    = "light"
	DefaultMapProvider = "carto"
)

// DeckOptions tune the rendered deck.
type DeckOptions struct {
	Zoom        float64
	Pitch       float64
	MapStyle    string
	MapProvider string

	// TooltipFields are extra attributes appended to the tooltip.
	TooltipFields []string

	// DataURL, when set, replaces the embedded feature collection with a
	// URL the client fetches.
	DataURL string
}

// DefaultDeckOptions returns the dashboard defaults.
func DefaultDeckOptions() DeckOptions {
	return DeckOptions{
		Zoom:        DefaultZoom,
		Pitch:       DefaultPitch,
		MapStyle:    DefaultMapStyle,
		MapProvider: DefaultMapProvider,
	}
}

// Deck is a deck.gl JSON description with one GeoJsonLayer.
type Deck struct {
	Layers           []Layer   `json:"layers"`
	InitialViewState ViewState `json:"initialViewState"`
	MapStyle         string    `json:"mapStyle"`
	MapProvider      string    `json:"mapProvider"`
	Tooltip          Tooltip   `json:"tooltip"`
}

// Layer is a deck.gl GeoJsonLayer. Accessor strings use the @@= prefix of
// the deck.gl JSON converter.
type Layer struct {
	Type               string   `json:"@@type"`
	ID                 string   `json:"id"`
	Data               any      `json:"data"`
	Pickable           bool     `json:"pickable"`
	Stroked            bool     `json:"stroked"`
	Filled             bool     `json:"filled"`
	Extruded           bool     `json:"extruded"`
	LineWidthMinPixels float64  `json:"lineWidthMinPixels"`
	GetFillColor       string   `json:"getFillColor"`
	GetLineColor       [3]uint8 `json:"getLineColor"`
}

// ViewState is the initial camera.
type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
	Bearing   float64 `json:"bearing"`
}

// Tooltip is an HTML template; {name} placeholders are replaced with
// feature properties by the client.
type Tooltip struct {
	HTML string `json:"html"`
}

// Deck builds the deck for view. Empty map style and provider fall back to
// the dashboard defaults; Zoom and Pitch are used as given.
func (p *Prepared) Deck(view View, opts DeckOptions) Deck {
	if opts.MapStyle == "" {
		opts.MapStyle = DefaultMapStyle
	}
	if opts.MapProvider == "" {
		opts.MapProvider = DefaultMapProvider
	}

	var data any = p.Collection
	if opts.DataURL != "" {
		data = opts.DataURL
	}

	return Deck{
		Layers: []Layer{{
			Type:               "GeoJsonLayer",
			ID:                 fmt.Sprintf("%s-%s", p.Name, view),
			Data:               data,
			Pickable:           true,
			Stroked:            true,
			Filled:             true,
			Extruded:           false,
			LineWidthMinPixels: 1,
			GetFillColor:       "@@=properties." + view.ColorColumn(),
			GetLineColor:       [3]uint8{0, 0, 0},
		}},
		InitialViewState: ViewState{
			Latitude:  p.Center.Latitude,
			Longitude: p.Center.Longitude,
			Zoom:      opts.Zoom,
			Pitch:     opts.Pitch,
		},
		MapStyle:    opts.MapStyle,
		MapProvider: opts.MapProvider,
		Tooltip:     Tooltip{HTML: TooltipHTML(opts.TooltipFields)},
	}
}

// TooltipHTML returns the hover template: the three prediction columns
// followed by any extra fields, each labelled in title case.
func TooltipHTML(extra []string) string {
	lines := []string{
		"<b>Risk category:</b> {risk_cat}",
		"<b>Predicted category:</b> {pred}",
		"<b>Delta:</b> {delta}",
	}
	for _, f := range extra {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("<b>%s:</b> {%s}", fieldLabel(f), f))
	}
	return strings.Join(lines, "<br>")
}

// fieldLabel turns street_name into "Street Name". Casers are stateful, so
// each call gets its own.
func fieldLabel(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}
