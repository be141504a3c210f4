package dataset

import (
	"archive/zip"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// shapeReader is the subset of go-shp's Reader and ZipReader used here.
type shapeReader interface {
	Next() bool
	Shape() (int, shp.Shape)
	Attribute(n int) string
	Fields() []shp.Field
	Err() error
	Close() error
}

// Load reads a polygon dataset from a .shp file (with its .shx/.dbf/.prj
// siblings) or from a .zip archive holding exactly one shapefile, and
// simplifies every polygon with SimplifyTolerance.
func Load(path string) (*Dataset, error) {
	reader, srs, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	log := zap.L().With(zap.String("component", "dataset.loader"), zap.String("path", path))

	// Build field name → index map.
	fields := reader.Fields()
	names := make([]string, len(fields))
	numeric := make([]bool, len(fields))
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.ToLower(strings.TrimRight(f.String(), "\x00"))
		names[i] = name
		numeric[i] = f.Fieldtype == 'N' || f.Fieldtype == 'F'
		fieldIdx[name] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := fieldIdx[col]; !ok {
			return nil, eris.Errorf("dataset: %s: missing required column %q", path, col)
		}
	}

	ds := &Dataset{
		Name:   datasetName(path),
		Path:   path,
		SRS:    srs,
		Fields: names,
	}

	var before, after int
	for reader.Next() {
		idx, shape := reader.Shape()

		mp, err := ToMultiPolygon(shape)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: %s: record %d", path, idx)
		}
		before += mp.NumCoords()
		mp = Simplify(mp, SimplifyTolerance)
		after += mp.NumCoords()

		rec := &Record{
			Index:      idx,
			Geometry:   mp,
			Attributes: make(map[string]any, len(names)),
		}
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val == "" {
				continue
			}
			if numeric[i] {
				f, perr := strconv.ParseFloat(val, 64)
				if perr == nil && isFinite(f) {
					rec.Attributes[name] = f
					continue
				}
				if perr == nil && !isRequired(name) {
					// Non-finite optional values are treated as absent.
					continue
				}
			}
			rec.Attributes[name] = val
		}

		if rec.RiskCat, err = requiredNumber(rec, ColumnRiskCat); err != nil {
			return nil, eris.Wrapf(err, "dataset: %s: record %d", path, idx)
		}
		if rec.Pred, err = requiredNumber(rec, ColumnPred); err != nil {
			return nil, eris.Wrapf(err, "dataset: %s: record %d", path, idx)
		}
		if rec.Delta, err = requiredNumber(rec, ColumnDelta); err != nil {
			return nil, eris.Wrapf(err, "dataset: %s: record %d", path, idx)
		}

		ds.Records = append(ds.Records, rec)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "dataset: read shapefile %s", path)
	}
	if len(ds.Records) == 0 {
		return nil, eris.Errorf("dataset: %s: no records", path)
	}

	log.Info("loaded dataset",
		zap.String("name", ds.Name),
		zap.Int("records", len(ds.Records)),
		zap.Int("vertices_before", before),
		zap.Int("vertices_after", after),
		zap.Bool("has_prj", srs != ""),
	)

	return ds, nil
}

func requiredNumber(rec *Record, col string) (float64, error) {
	raw, ok := rec.Attributes[col]
	if !ok {
		return 0, eris.Errorf("missing %q value", col)
	}
	switch v := raw.(type) {
	case float64:
		if !isFinite(v) {
			return 0, eris.Errorf("%q value %g is not finite", col, v)
		}
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, eris.Errorf("%q value %q is not numeric", col, v)
		}
		if !isFinite(f) {
			return 0, eris.Errorf("%q value %q is not finite", col, v)
		}
		rec.Attributes[col] = f
		return f, nil
	}
	return 0, eris.Errorf("%q has unexpected type %T", col, raw)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isRequired(name string) bool {
	for _, col := range RequiredColumns {
		if col == name {
			return true
		}
	}
	return false
}

// open returns a reader for path and the contents of its .prj sidecar.
func open(path string) (shapeReader, string, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		reader, err := shp.OpenZip(path)
		if err != nil {
			return nil, "", eris.Wrapf(err, "dataset: open zip %s", path)
		}
		srs, err := prjFromZip(path)
		if err != nil {
			_ = reader.Close()
			return nil, "", err
		}
		return reader, srs, nil
	}

	if !strings.EqualFold(filepath.Ext(path), ".shp") {
		return nil, "", eris.Errorf("dataset: %s: expected a .shp or .zip file", path)
	}
	reader, err := shp.Open(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "dataset: open shapefile %s", path)
	}
	prj := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	data, err := os.ReadFile(prj)
	if err != nil {
		if os.IsNotExist(err) {
			return reader, "", nil
		}
		_ = reader.Close()
		return nil, "", eris.Wrapf(err, "dataset: read %s", prj)
	}
	return reader, strings.TrimSpace(string(data)), nil
}

// prjFromZip returns the first .prj entry of a shapefile archive, or "".
func prjFromZip(zipPath string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "dataset: open archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".prj") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", eris.Wrapf(err, "dataset: open %s", f.Name)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", eris.Wrapf(err, "dataset: read %s", f.Name)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", nil
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
