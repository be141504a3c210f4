// Package datasettest writes small prediction shapefiles for tests.
package datasettest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
)

// Feature is one polygon record of a fixture shapefile. Rings use
// shapefile orientation: outer rings clockwise, holes counter-clockwise.
type Feature struct {
	Rings   [][]shp.Point
	RiskCat int
	Pred    int
	Delta   int
	Slope   float64
	Street  string
}

// Square returns a clockwise closed ring with its lower-left corner at (x, y).
func Square(x, y, size float64) []shp.Point {
	return []shp.Point{
		{X: x, Y: y},
		{X: x, Y: y + size},
		{X: x + size, Y: y + size},
		{X: x + size, Y: y},
		{X: x, Y: y},
	}
}

// Fields are the DBF columns written for every Feature.
var Fields = []shp.Field{
	shp.NumberField("risk_cat", 4),
	shp.NumberField("pred", 4),
	shp.NumberField("delta", 4),
	shp.FloatField("slope", 10, 3),
	shp.StringField("street", 32),
}

// WriteShapefile writes features to dir/name.shp (with .shx, .dbf and, when
// prj is non-empty, .prj) and returns the .shp path.
func WriteShapefile(t testing.TB, dir, name string, features []Feature, prj string) string {
	t.Helper()

	base := filepath.Join(dir, name)
	w, err := shp.Create(base+".shp", shp.POLYGON)
	if err != nil {
		t.Fatalf("create shapefile: %v", err)
	}
	if err := w.SetFields(Fields); err != nil {
		t.Fatalf("set fields: %v", err)
	}

	for _, f := range features {
		poly := shp.Polygon(*shp.NewPolyLine(f.Rings))
		row := int(w.Write(&poly))
		for i, v := range []any{f.RiskCat, f.Pred, f.Delta, f.Slope, f.Street} {
			if err := w.WriteAttribute(row, i, v); err != nil {
				t.Fatalf("write attribute %d of row %d: %v", i, row, err)
			}
		}
	}
	w.Close()

	// Some go-shp releases name the table "<base>dbf".
	if _, err := os.Stat(base + ".dbf"); os.IsNotExist(err) {
		if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
			t.Fatalf("rename dbf: %v", err)
		}
	}

	if prj != "" {
		if err := os.WriteFile(base+".prj", []byte(prj), 0o644); err != nil {
			t.Fatalf("write prj: %v", err)
		}
	}

	return base + ".shp"
}

// Grid returns n features laid out as 1x1 squares along the x axis starting
// at (x0, y0), with risk_cat cycling through 1..3 and pred trailing it.
func Grid(n int, x0, y0 float64) []Feature {
	out := make([]Feature, n)
	for i := 0; i < n; i++ {
		risk := i%3 + 1
		pred := (i+1)%3 + 1
		out[i] = Feature{
			Rings:   [][]shp.Point{Square(x0+float64(i), y0, 1)},
			RiskCat: risk,
			Pred:    pred,
			Delta:   pred - risk,
			Slope:   float64(i) * 0.5,
			Street:  "Langstrasse",
		}
	}
	return out
}
