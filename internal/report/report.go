// Package report summarizes a prepared dataset for the command line and
// exports its color legends as a workbook.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/velorisk/riskmap/internal/colormap"
	"github.com/velorisk/riskmap/internal/mapview"
	"github.com/velorisk/riskmap/internal/projection"
)

// Legend is the color map of one view.
type Legend struct {
	View    mapview.View
	Column  string
	Ramp    string
	Entries []colormap.Entry
}

// Summary describes a prepared dataset.
type Summary struct {
	Model    mapview.Model
	Name     string
	Features int
	Fields   []string
	Center   projection.Center
	Legends  []Legend
}

// Summarize builds the summary of a prepared dataset.
func Summarize(model mapview.Model, prep *mapview.Prepared) Summary {
	s := Summary{
		Model:    model,
		Name:     prep.Name,
		Features: prep.Len(),
		Fields:   prep.Fields,
		Center:   prep.Center,
	}
	for _, v := range mapview.Views {
		cm := prep.ColorMaps[v]
		s.Legends = append(s.Legends, Legend{
			View:    v,
			Column:  v.ColorColumn(),
			Ramp:    cm.Ramp,
			Entries: cm.Entries(),
		})
	}
	return s
}

// WriteText writes a human-readable summary to out.
func (s Summary) WriteText(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "MODEL\t%s (%s)\n", s.Model, s.Model.Label())
	_, _ = fmt.Fprintf(w, "DATASET\t%s\n", s.Name)
	_, _ = fmt.Fprintf(w, "FEATURES\t%d\n", s.Features)
	_, _ = fmt.Fprintf(w, "FIELDS\t%s\n", strings.Join(s.Fields, ", "))
	_, _ = fmt.Fprintf(w, "CENTER\t%.6f, %.6f\n", s.Center.Latitude, s.Center.Longitude)

	for _, l := range s.Legends {
		_, _ = fmt.Fprintf(w, "\n%s\t%s on %s\n", strings.ToUpper(string(l.View)), l.Column, l.Ramp)
		_, _ = fmt.Fprintln(w, "VALUE\tPOSITION\tCOLOR")
		for _, e := range l.Entries {
			_, _ = fmt.Fprintf(w, "%g\t%.3f\t%s\n", e.Value, e.Position, e.Color.Hex())
		}
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "report: write summary")
	}
	return nil
}

// WriteWorkbook saves the summary as an xlsx file with an overview sheet
// and one legend sheet per view.
func WriteWorkbook(path string, s Summary) error {
	f := xlsx.NewFile()

	overview, err := f.AddSheet("overview")
	if err != nil {
		return eris.Wrap(err, "report: add overview sheet")
	}
	addRow(overview, "model", string(s.Model))
	addRow(overview, "dataset", s.Name)
	addRow(overview, "features", s.Features)
	addRow(overview, "fields", strings.Join(s.Fields, ", "))
	addRow(overview, "center_lat", s.Center.Latitude)
	addRow(overview, "center_lon", s.Center.Longitude)

	for _, l := range s.Legends {
		sheet, err := f.AddSheet(string(l.View))
		if err != nil {
			return eris.Wrapf(err, "report: add %s sheet", l.View)
		}
		addRow(sheet, "value", "position", "r", "g", "b", "a", "hex")
		for _, e := range l.Entries {
			addRow(sheet, e.Value, e.Position,
				int(e.Color[0]), int(e.Color[1]), int(e.Color[2]), int(e.Color[3]),
				e.Color.Hex())
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...any) {
	row := sheet.AddRow()
	for _, v := range values {
		cell := row.AddCell()
		switch x := v.(type) {
		case string:
			cell.SetString(x)
		case int:
			cell.SetInt(x)
		case float64:
			cell.SetFloat(x)
		default:
			cell.SetString(fmt.Sprint(x))
		}
	}
}
