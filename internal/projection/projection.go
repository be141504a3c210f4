// Package projection reprojects dataset geometry to WGS84 longitude and
// latitude and derives the map view center.
package projection

import (
	"math"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// WGS84 is the PROJ definition of the output coordinate system.
const WGS84 = "+proj=longlat +datum=WGS84 +no_defs"

// transformFunc maps one source coordinate to longitude and latitude in degrees.
type transformFunc func(x, y float64) (lon, lat float64, err error)

// Center is the map view center in degrees.
type Center struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Projector transforms geometry from one source CRS to WGS84.
type Projector struct {
	Source    string
	transform transformFunc
}

// New builds a Projector from the first usable definition in defs. Each
// definition is a PROJ string or WKT; empty definitions are skipped. Swiss
// LV95 definitions use the swisstopo approximation formulas, since the PROJ
// parser accepts them but has no somerc transformer.
func New(defs ...string) (*Projector, error) {
	var tried []string
	for _, def := range defs {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}

		if isLV95(def) {
			zap.L().Debug("projection: using swisstopo formulas", zap.String("source", abbreviate(def)))
			return &Projector{Source: def, transform: lv95ToWGS84}, nil
		}

		fn, err := parse(def)
		if err != nil {
			tried = append(tried, err.Error())
			continue
		}
		return &Projector{Source: def, transform: fn}, nil
	}
	if len(tried) == 0 {
		return nil, eris.New("projection: no source coordinate system")
	}
	return nil, eris.Errorf("projection: no usable source coordinate system: %s", strings.Join(tried, "; "))
}

// parse builds a transform to WGS84 and runs it once on the source origin.
// The PROJ package only reports a missing transformer on first use.
func parse(def string) (transformFunc, error) {
	src, err := proj.Parse(def)
	if err != nil {
		return nil, eris.Wrapf(err, "projection: parse %q", abbreviate(def))
	}
	dst, err := proj.Parse(WGS84)
	if err != nil {
		return nil, eris.Wrap(err, "projection: parse WGS84")
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, eris.Wrapf(err, "projection: transform %q", abbreviate(def))
	}
	if _, _, err := t(0, 0); err != nil {
		return nil, eris.Wrapf(err, "projection: transform %q", abbreviate(def))
	}
	return func(x, y float64) (float64, float64, error) {
		return t(x, y)
	}, nil
}

// Point reprojects a single coordinate.
func (p *Projector) Point(x, y float64) (lon, lat float64, err error) {
	lon, lat, err = p.transform(x, y)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "projection: transform (%g, %g)", x, y)
	}
	if err := checkRange(lon, lat); err != nil {
		return 0, 0, err
	}
	return lon, lat, nil
}

// Geometry returns a reprojected copy of mp.
func (p *Projector) Geometry(mp *geom.MultiPolygon) (*geom.MultiPolygon, error) {
	if mp == nil {
		return nil, eris.New("projection: nil geometry")
	}
	out := mp.Clone()
	flat := out.FlatCoords()
	stride := out.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		lon, lat, err := p.Point(flat[i], flat[i+1])
		if err != nil {
			return nil, err
		}
		flat[i], flat[i+1] = lon, lat
	}
	return out, nil
}

// Center computes the centroid of every geometry in the source CRS,
// reprojects the centroids and returns their mean.
func (p *Projector) Center(geoms []*geom.MultiPolygon) (Center, error) {
	if len(geoms) == 0 {
		return Center{}, eris.New("projection: no geometries to center on")
	}

	lons := make([]float64, 0, len(geoms))
	lats := make([]float64, 0, len(geoms))
	for i, g := range geoms {
		if g == nil || g.Empty() {
			return Center{}, eris.Errorf("projection: geometry %d is empty", i)
		}
		c, err := xy.Centroid(g)
		if err != nil {
			return Center{}, eris.Wrapf(err, "projection: centroid of geometry %d", i)
		}
		lon, lat, err := p.Point(c.X(), c.Y())
		if err != nil {
			return Center{}, eris.Wrapf(err, "projection: centroid of geometry %d", i)
		}
		lons = append(lons, lon)
		lats = append(lats, lat)
	}

	center := Center{
		Latitude:  stat.Mean(lats, nil),
		Longitude: stat.Mean(lons, nil),
	}
	if err := checkRange(center.Longitude, center.Latitude); err != nil {
		return Center{}, err
	}
	return center, nil
}

func checkRange(lon, lat float64) error {
	if math.IsNaN(lon) || math.IsNaN(lat) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return eris.Errorf("projection: coordinate out of range (lon %g, lat %g)", lon, lat)
	}
	return nil
}

func abbreviate(def string) string {
	if len(def) > 60 {
		return def[:57] + "..."
	}
	return def
}
