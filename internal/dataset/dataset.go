// Package dataset loads the precomputed risk-prediction polygon datasets
// (road segments and grid cells) that the dashboard renders.
package dataset

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Column names every prediction dataset must carry.
const (
	ColumnRiskCat = "risk_cat"
	ColumnPred    = "pred"
	ColumnDelta   = "delta"
)

// RequiredColumns lists the columns checked at load time.
var RequiredColumns = []string{ColumnRiskCat, ColumnPred, ColumnDelta}

// Record is one polygon of a dataset with its prediction attributes.
type Record struct {
	Index    int
	Geometry *geom.MultiPolygon
	RiskCat  float64
	Pred     float64
	Delta    float64

	// Attributes holds every DBF column, numeric values as float64 and
	// everything else as a trimmed string. Empty values are absent.
	Attributes map[string]any
}

// Value returns the named attribute of the record.
func (r *Record) Value(name string) (any, bool) {
	switch name {
	case ColumnRiskCat:
		return r.RiskCat, true
	case ColumnPred:
		return r.Pred, true
	case ColumnDelta:
		return r.Delta, true
	}
	v, ok := r.Attributes[name]
	return v, ok
}

// Dataset is an in-memory polygon dataset in its source CRS.
type Dataset struct {
	Name    string
	Path    string
	SRS     string // PROJ string or WKT; empty when the file carried no .prj
	Fields  []string
	Records []*Record
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// Column returns the numeric values of a column in record order.
func (d *Dataset) Column(name string) ([]float64, error) {
	out := make([]float64, 0, len(d.Records))
	for _, r := range d.Records {
		v, ok := r.Value(name)
		if !ok {
			return nil, eris.Errorf("dataset: %s: record %d has no %q value", d.Name, r.Index, name)
		}
		f, ok := v.(float64)
		if !ok {
			return nil, eris.Errorf("dataset: %s: column %q is not numeric", d.Name, name)
		}
		out = append(out, f)
	}
	return out, nil
}

// Distinct returns the sorted distinct values of a numeric column.
func (d *Dataset) Distinct(name string) ([]float64, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[float64]struct{}, len(col))
	var out []float64
	for _, v := range col {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out, nil
}

// NumVertices counts the vertices of every record geometry.
func (d *Dataset) NumVertices() int {
	var n int
	for _, r := range d.Records {
		if r.Geometry != nil {
			n += r.Geometry.NumCoords()
		}
	}
	return n
}
