package dashboard

import (
	"embed"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed web/layout.yaml web/index.html
var webFS embed.FS

// Layout describes the page: titles, selector labels and the static images
// shown in each tab.
type Layout struct {
	Title     string       `yaml:"title"`
	Modelling ModellingTab `yaml:"modelling"`
	Analysis  AnalysisTab  `yaml:"analysis"`
}

// ModellingTab is the interactive map tab.
type ModellingTab struct {
	Tab        string          `yaml:"tab"`
	ModelLabel string          `yaml:"model_label"`
	ViewLabel  string          `yaml:"view_label"`
	Comparison ComparisonPanel `yaml:"comparison"`
}

// ComparisonPanel is the collapsible panel of model evaluation charts.
// Each row is rendered side by side.
type ComparisonPanel struct {
	Title string     `yaml:"title"`
	Rows  [][]string `yaml:"rows"`
}

// AnalysisTab is the static accident data tab.
type AnalysisTab struct {
	Tab    string   `yaml:"tab"`
	Header string   `yaml:"header"`
	Images []string `yaml:"images"`
}

// DefaultLayout returns the embedded layout.
func DefaultLayout() (*Layout, error) {
	data, err := webFS.ReadFile("web/layout.yaml")
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: read embedded layout")
	}
	return parseLayout(data)
}

// LoadLayout reads a layout file, or the embedded default when path is empty.
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: read layout %s", path)
	}
	return parseLayout(data)
}

func parseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, eris.Wrap(err, "dashboard: parse layout")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks that the layout has a title and that every image is a
// plain file name.
func (l *Layout) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return eris.New("dashboard: layout title is required")
	}
	for _, name := range l.Images() {
		if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
			return eris.Errorf("dashboard: invalid image name %q", name)
		}
	}
	return nil
}

// Images returns every image the layout references, in page order.
func (l *Layout) Images() []string {
	var out []string
	for _, row := range l.Modelling.Comparison.Rows {
		out = append(out, row...)
	}
	return append(out, l.Analysis.Images...)
}

// HasImage reports whether name is referenced by the layout.
func (l *Layout) HasImage(name string) bool {
	for _, img := range l.Images() {
		if img == name {
			return true
		}
	}
	return false
}
