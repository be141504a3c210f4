package dataset

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/velorisk/riskmap/internal/dataset/datasettest"
)

func ccw(ring []shp.Point) []shp.Point {
	out := make([]shp.Point, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

func TestToMultiPolygon_Single(t *testing.T) {
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{datasettest.Square(0, 0, 10)}))

	mp, err := ToMultiPolygon(&poly)
	require.NoError(t, err)
	assert.Equal(t, geom.XY, mp.Layout())
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 1, mp.Polygon(0).NumLinearRings())
	assert.Equal(t, 5, mp.NumCoords())
}

func TestToMultiPolygon_Hole(t *testing.T) {
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{
		datasettest.Square(0, 0, 10),
		ccw(datasettest.Square(2, 2, 2)),
	}))

	mp, err := ToMultiPolygon(&poly)
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
}

func TestToMultiPolygon_MultiPart(t *testing.T) {
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{
		datasettest.Square(0, 0, 1),
		datasettest.Square(5, 5, 1),
		ccw(datasettest.Square(5.25, 5.25, 0.5)),
	}))

	mp, err := ToMultiPolygon(&poly)
	require.NoError(t, err)
	require.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 1, mp.Polygon(0).NumLinearRings())
	assert.Equal(t, 2, mp.Polygon(1).NumLinearRings())
}

func TestToMultiPolygon_PolygonZ(t *testing.T) {
	pts := datasettest.Square(1, 1, 1)
	shape := &shp.PolygonZ{
		NumParts:  1,
		NumPoints: int32(len(pts)),
		Parts:     []int32{0},
		Points:    pts,
		ZArray:    make([]float64, len(pts)),
	}

	mp, err := ToMultiPolygon(shape)
	require.NoError(t, err)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, []float64{1, 1}, mp.Polygon(0).LinearRing(0).FlatCoords()[:2])
}

func TestToMultiPolygon_Errors(t *testing.T) {
	_, err := ToMultiPolygon(nil)
	assert.Error(t, err)

	_, err = ToMultiPolygon(&shp.Point{X: 1, Y: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported shape type")

	_, err = ToMultiPolygon(&shp.Polygon{})
	assert.Error(t, err)

	_, err = ToMultiPolygon(&shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 9},
		Points:   datasettest.Square(0, 0, 1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed polygon part")
}

func TestSimplify_RemovesCollinearVertices(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		0, 0, 0, 0.5, 0, 1, 0.5, 1, 1, 1, 1, 0, 0, 0,
	})))
	require.NoError(t, mp.Push(poly))

	out := Simplify(mp, SimplifyTolerance)
	require.Equal(t, 1, out.NumPolygons())
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}, out.Polygon(0).LinearRing(0).FlatCoords())
}

func TestSimplify_KeepsTinyRings(t *testing.T) {
	// A 1e-5 square collapses under the tolerance and must survive as is.
	tiny := []float64{0, 0, 0, 1e-5, 1e-5, 1e-5, 1e-5, 0, 0, 0}
	big := []float64{10, 10, 10, 11, 11, 11, 11, 10, 10, 10}

	mp := geom.NewMultiPolygon(geom.XY)
	for _, flat := range [][]float64{tiny, big} {
		poly := geom.NewPolygon(geom.XY)
		require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, flat)))
		require.NoError(t, mp.Push(poly))
	}

	out := Simplify(mp, SimplifyTolerance)
	require.Equal(t, 2, out.NumPolygons())
	assert.Equal(t, tiny, out.Polygon(0).LinearRing(0).FlatCoords())
	assert.Equal(t, big, out.Polygon(1).LinearRing(0).FlatCoords())
}

func TestSimplify_Nil(t *testing.T) {
	assert.Nil(t, Simplify(nil, SimplifyTolerance))

	empty := geom.NewMultiPolygon(geom.XY)
	assert.Same(t, empty, Simplify(empty, SimplifyTolerance))
}
