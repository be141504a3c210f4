package report

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/velorisk/riskmap/internal/config"
	"github.com/velorisk/riskmap/internal/dataset"
	"github.com/velorisk/riskmap/internal/dataset/datasettest"
	"github.com/velorisk/riskmap/internal/mapview"
	"github.com/velorisk/riskmap/internal/projection"
)

func testSummary(t *testing.T) Summary {
	t.Helper()
	path := datasettest.WriteShapefile(t, t.TempDir(), "segment_model_final", datasettest.Grid(3, 2683000, 1247000), "")
	ds, err := dataset.Load(path)
	require.NoError(t, err)
	p, err := projection.New(config.LV95)
	require.NoError(t, err)
	prep, err := mapview.Prepare(ds, p)
	require.NoError(t, err)
	return Summarize(mapview.Segment, prep)
}

func TestSummarize(t *testing.T) {
	s := testSummary(t)

	assert.Equal(t, mapview.Segment, s.Model)
	assert.Equal(t, "segment_model_final", s.Name)
	assert.Equal(t, 3, s.Features)
	require.Len(t, s.Legends, 3)
	assert.Equal(t, mapview.Actual, s.Legends[0].View)
	assert.Equal(t, "fill_color_rc", s.Legends[0].Column)
	assert.Equal(t, "Reds", s.Legends[0].Ramp)
	assert.Len(t, s.Legends[0].Entries, 3)
	assert.Equal(t, "PiYG", s.Legends[2].Ramp)
	assert.Len(t, s.Legends[2].Entries, 2)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testSummary(t).WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "segment (Segment based)")
	assert.Contains(t, out, "FEATURES")
	assert.Contains(t, out, "risk_cat, pred, delta, slope, street")
	assert.Contains(t, out, "fill_color_delta on PiYG")
	assert.Contains(t, out, "#fff5f0")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legend.xlsx")
	require.NoError(t, WriteWorkbook(path, testSummary(t)))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 4)
	assert.Equal(t, "overview", f.Sheets[0].Name)

	overview := f.Sheet["overview"]
	require.NotNil(t, overview)
	assert.Equal(t, "dataset", overview.Rows[1].Cells[0].String())
	assert.Equal(t, "segment_model_final", overview.Rows[1].Cells[1].String())

	delta := f.Sheet["delta"]
	require.NotNil(t, delta)
	require.Len(t, delta.Rows, 3)
	assert.Equal(t, "hex", delta.Rows[0].Cells[6].String())
	assert.Equal(t, "#8e0152", delta.Rows[1].Cells[6].String())
}

func TestWriteWorkbook_BadPath(t *testing.T) {
	err := WriteWorkbook(filepath.Join(t.TempDir(), "missing", "legend.xlsx"), testSummary(t))
	assert.Error(t, err)
}
