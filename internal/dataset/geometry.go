package dataset

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// ToMultiPolygon converts a go-shp geometry to a geom.MultiPolygon.
// Shapefile outer rings are clockwise; a counter-clockwise ring is a hole
// of the polygon opened by the preceding outer ring.
func ToMultiPolygon(shape shp.Shape) (*geom.MultiPolygon, error) {
	if shape == nil {
		return nil, eris.New("dataset: nil shape")
	}

	var parts []int32
	var points []shp.Point
	switch s := shape.(type) {
	case *shp.Polygon:
		parts, points = s.Parts, s.Points
	case *shp.PolygonZ:
		parts, points = s.Parts, s.Points
	case *shp.PolygonM:
		parts, points = s.Parts, s.Points
	default:
		return nil, eris.Errorf("dataset: unsupported shape type %T", shape)
	}

	if len(parts) == 0 || len(points) == 0 {
		return nil, eris.New("dataset: empty polygon")
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon

	for i := range parts {
		start := parts[i]
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || start >= end {
			return nil, eris.Errorf("dataset: malformed polygon part %d", i)
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, points[j].X, points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current != nil && xy.IsRingCounterClockwise(geom.XY, flat) {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("dataset: skipping malformed hole", zap.Int("part", i), zap.Error(err))
			}
			continue
		}

		if current != nil {
			if err := mp.Push(current); err != nil {
				return nil, eris.Wrapf(err, "dataset: push polygon part %d", i)
			}
		}
		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			return nil, eris.Wrapf(err, "dataset: push ring %d", i)
		}
	}

	if current != nil {
		if err := mp.Push(current); err != nil {
			return nil, eris.Wrap(err, "dataset: push last polygon")
		}
	}

	if mp.NumPolygons() == 0 {
		return nil, eris.New("dataset: empty polygon")
	}
	return mp, nil
}
