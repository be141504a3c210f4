package dataset

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// SimplifyTolerance is the Douglas-Peucker distance threshold applied to
// every ring at load time, in source CRS units.
const SimplifyTolerance = 0.0001

// minRingCoords is the smallest closed ring: a triangle plus the closing point.
const minRingCoords = 4

// Simplify reduces the vertex count of every ring of mp. Polygons are never
// merged, split or dropped, and a ring that would collapse below a triangle
// keeps its original vertices.
func Simplify(mp *geom.MultiPolygon, tolerance float64) *geom.MultiPolygon {
	if mp == nil || mp.Empty() {
		return mp
	}

	out := geom.NewMultiPolygon(mp.Layout())
	stride := mp.Stride()

	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		simplified := geom.NewPolygon(mp.Layout())

		for j := 0; j < poly.NumLinearRings(); j++ {
			ring := poly.LinearRing(j)
			flat := simplifyRing(ring.FlatCoords(), tolerance, stride)
			// Push only fails on layout mismatch, which cannot happen here.
			_ = simplified.Push(geom.NewLinearRingFlat(mp.Layout(), flat))
		}

		_ = out.Push(simplified)
	}

	return out
}

func simplifyRing(flat []float64, tolerance float64, stride int) []float64 {
	if len(flat)/stride <= minRingCoords {
		return flat
	}

	idx := xy.SimplifyFlatCoords(flat, tolerance, stride)
	if len(idx) < minRingCoords {
		return flat
	}

	out := make([]float64, 0, len(idx)*stride)
	for _, k := range idx {
		out = append(out, flat[k*stride:(k+1)*stride]...)
	}
	return out
}
