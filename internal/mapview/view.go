// Package mapview turns a loaded dataset into the GeoJSON layer data,
// color maps and deck.gl description rendered by the dashboard.
package mapview

import (
	"github.com/rotisserie/eris"
)

// Model identifies one of the two prediction datasets.
type Model string

// Known models.
const (
	Segment Model = "segment"
	Grid    Model = "grid"
)

// Models lists the models in display order.
var Models = []Model{Segment, Grid}

// Label returns the selector label of the model.
func (m Model) Label() string {
	switch m {
	case Segment:
		return "Segment based"
	case Grid:
		return "Grid based"
	}
	return string(m)
}

// ParseModel validates a model name.
func ParseModel(s string) (Model, error) {
	for _, m := range Models {
		if string(m) == s {
			return m, nil
		}
	}
	return "", eris.Errorf("mapview: unknown model %q", s)
}

// View selects which attribute colors the map.
type View string

// Known views.
const (
	Actual    View = "actual"
	Predicted View = "predicted"
	Delta     View = "delta"
)

// Views lists the views in display order.
var Views = []View{Actual, Predicted, Delta}

// Label returns the selector label of the view.
func (v View) Label() string {
	switch v {
	case Actual:
		return "Actual risk catecory"
	case Predicted:
		return "Predicted risk category"
	case Delta:
		return "Delta"
	}
	return string(v)
}

// ColorColumn returns the feature property holding the view's fill color.
func (v View) ColorColumn() string {
	switch v {
	case Actual:
		return "fill_color_rc"
	case Predicted:
		return "fill_color_pred"
	case Delta:
		return "fill_color_delta"
	}
	return ""
}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", eris.Errorf("mapview: unknown view %q", s)
}
