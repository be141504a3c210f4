// Package colormap assigns categorical fill colors to attribute values by
// sampling continuous color gradients.
package colormap

import (
	"image/color"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot/palette/brewer"
)

// LUTSize is the number of discrete samples a Ramp resolves to.
const LUTSize = 256

// Gradient names used by the dashboard.
const (
	Reds = "Reds"
	PiYG = "PiYG"
)

// Ramp is a continuous gradient built from evenly spaced anchor colors.
// Sampling is quantized to LUTSize steps and each step is linearly
// interpolated between its neighbouring anchors.
type Ramp struct {
	Name    string
	anchors [][3]float64
}

// NewRamp builds a ramp from anchor colors. At least two anchors are required.
func NewRamp(name string, anchors []color.Color) (Ramp, error) {
	if len(anchors) < 2 {
		return Ramp{}, eris.Errorf("colormap: ramp %q needs at least 2 anchors, got %d", name, len(anchors))
	}
	r := Ramp{Name: name, anchors: make([][3]float64, len(anchors))}
	for i, c := range anchors {
		nc := color.NRGBAModel.Convert(c).(color.NRGBA)
		r.anchors[i] = [3]float64{
			float64(nc.R) / 255,
			float64(nc.G) / 255,
			float64(nc.B) / 255,
		}
	}
	return r, nil
}

// Named resolves a ColorBrewer scheme (Reds, PiYG, Blues, RdYlGn, ...) at
// its largest class count. A "_r" suffix reverses the ramp.
func Named(name string) (Ramp, error) {
	base, reversed := strings.CutSuffix(name, "_r")

	var colors []color.Color
	for n := 12; n >= 3; n-- {
		p, err := brewer.GetPalette(brewer.TypeAny, base, n)
		if err == nil {
			colors = p.Colors()
			break
		}
	}
	if colors == nil {
		return Ramp{}, eris.Errorf("colormap: unknown gradient %q", name)
	}

	if reversed {
		rev := make([]color.Color, len(colors))
		for i, c := range colors {
			rev[len(colors)-1-i] = c
		}
		colors = rev
	}
	return NewRamp(name, colors)
}

// MustNamed is like Named but panics on an unknown name.
func MustNamed(name string) Ramp {
	r, err := Named(name)
	if err != nil {
		panic(err)
	}
	return r
}

// At samples the ramp at t in [0, 1] and returns red, green and blue in
// [0, 1]. Values outside the range are clamped.
func (r Ramp) At(t float64) [3]float64 {
	if math.IsNaN(t) {
		t = 0
	}
	t = min(max(t, 0), 1)
	idx := int(t * LUTSize)
	if idx > LUTSize-1 {
		idx = LUTSize - 1
	}

	pos := float64(idx) / float64(LUTSize-1) * float64(len(r.anchors)-1)
	lo := int(pos)
	if lo >= len(r.anchors)-1 {
		return r.anchors[len(r.anchors)-1]
	}
	frac := pos - float64(lo)

	var out [3]float64
	for ch := range out {
		a, b := r.anchors[lo][ch], r.anchors[lo+1][ch]
		out[ch] = a + (b-a)*frac
	}
	return out
}

// Anchors returns the number of anchor colors of the ramp.
func (r Ramp) Anchors() int { return len(r.anchors) }
