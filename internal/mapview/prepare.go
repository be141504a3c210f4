package mapview

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/velorisk/riskmap/internal/colormap"
	"github.com/velorisk/riskmap/internal/dataset"
	"github.com/velorisk/riskmap/internal/projection"
)

// viewColumns binds each view to the attribute and gradient that color it.
var viewColumns = map[View]struct {
	column string
	ramp   string
}{
	Actual:    {dataset.ColumnRiskCat, colormap.Reds},
	Predicted: {dataset.ColumnPred, colormap.Reds},
	Delta:     {dataset.ColumnDelta, colormap.PiYG},
}

// Prepared is a dataset reprojected to WGS84 with per-feature fill colors.
// It is immutable once built and safe to share between goroutines.
type Prepared struct {
	Name       string
	Center     projection.Center
	Fields     []string
	Collection *geojson.FeatureCollection
	ColorMaps  map[View]colormap.ColorMap
}

// Prepare reprojects ds, computes its view center and writes the three fill
// color properties onto every feature.
func Prepare(ds *dataset.Dataset, p *projection.Projector) (*Prepared, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, eris.New("mapview: empty dataset")
	}
	if p == nil {
		return nil, eris.New("mapview: nil projector")
	}

	for _, rec := range ds.Records {
		for _, v := range Views {
			if val := viewValue(rec, v); !finite(val) {
				return nil, eris.Errorf("mapview: %s: record %d: %s value %g is not finite",
					ds.Name, rec.Index, viewColumns[v].column, val)
			}
		}
	}

	out := &Prepared{
		Name:      ds.Name,
		Fields:    ds.Fields,
		ColorMaps: make(map[View]colormap.ColorMap, len(viewColumns)),
	}

	for _, v := range Views {
		vc := viewColumns[v]
		values, err := ds.Column(vc.column)
		if err != nil {
			return nil, eris.Wrapf(err, "mapview: %s colors", v)
		}
		ramp, err := colormap.Named(vc.ramp)
		if err != nil {
			return nil, eris.Wrapf(err, "mapview: %s colors", v)
		}
		out.ColorMaps[v] = colormap.Build(values, ramp)
	}

	features := make([]*geojson.Feature, 0, ds.Len())
	for _, rec := range ds.Records {
		g, err := p.Geometry(rec.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "mapview: %s: record %d", ds.Name, rec.Index)
		}

		props := make(map[string]interface{}, len(rec.Attributes)+len(Views))
		for k, v := range rec.Attributes {
			if f, ok := v.(float64); ok && !finite(f) {
				continue
			}
			props[k] = v
		}
		props[dataset.ColumnRiskCat] = rec.RiskCat
		props[dataset.ColumnPred] = rec.Pred
		props[dataset.ColumnDelta] = rec.Delta
		for _, v := range Views {
			c, _ := out.ColorMaps[v].Lookup(viewValue(rec, v))
			props[v.ColorColumn()] = c
		}

		features = append(features, &geojson.Feature{
			ID:         strconv.Itoa(rec.Index),
			Geometry:   g,
			Properties: props,
		})
	}
	out.Collection = &geojson.FeatureCollection{Features: features}

	center, err := p.Center(sourceGeometries(ds))
	if err != nil {
		return nil, eris.Wrapf(err, "mapview: %s center", ds.Name)
	}
	out.Center = center

	zap.L().Debug("prepared dataset",
		zap.String("component", "mapview"),
		zap.String("name", ds.Name),
		zap.Int("features", len(features)),
		zap.Float64("center_lat", center.Latitude),
		zap.Float64("center_lon", center.Longitude),
	)

	return out, nil
}

func viewValue(rec *dataset.Record, v View) float64 {
	switch v {
	case Predicted:
		return rec.Pred
	case Delta:
		return rec.Delta
	}
	return rec.RiskCat
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sourceGeometries(ds *dataset.Dataset) []*geom.MultiPolygon {
	out := make([]*geom.MultiPolygon, len(ds.Records))
	for i, rec := range ds.Records {
		out[i] = rec.Geometry
	}
	return out
}

// GeoJSON encodes the prepared feature collection.
func (p *Prepared) GeoJSON() ([]byte, error) {
	b, err := json.Marshal(p.Collection)
	if err != nil {
		return nil, eris.Wrapf(err, "mapview: encode %s", p.Name)
	}
	return b, nil
}

// Legend returns the color map entries of a view.
func (p *Prepared) Legend(v View) ([]colormap.Entry, error) {
	cm, ok := p.ColorMaps[v]
	if !ok {
		return nil, eris.Errorf("mapview: unknown view %q", v)
	}
	return cm.Entries(), nil
}

// Len returns the number of features.
func (p *Prepared) Len() int { return len(p.Collection.Features) }
