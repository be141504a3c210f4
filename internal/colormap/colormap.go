package colormap

import (
	"fmt"
	"math"
	"sort"
)

// channelEpsilon absorbs float error in c*255 for anchors that sit on an
// exact byte value, so truncation does not turn 245 into 244.
const channelEpsilon = 1e-9

// RGBA is a color as four 0-255 channels. It encodes to JSON as an array,
// which is the form deck.gl accessors expect.
type RGBA [4]uint8

// Hex returns the color as #rrggbb.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Entry pairs one distinct value with its color.
type Entry struct {
	Value    float64 `json:"value"`
	Position float64 `json:"position"`
	Color    RGBA    `json:"color"`
}

// ColorMap maps each distinct value of one attribute to a color.
type ColorMap struct {
	Ramp    string
	entries []Entry
	index   map[float64]int
}

// Build assigns the i-th of n sorted distinct values the ramp sample at
// i/max(n-1, 1). Channels are truncated to bytes and alpha is always 255.
// NaN values are ignored.
func Build(values []float64, ramp Ramp) ColorMap {
	distinct := make([]float64, 0, len(values))
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	sort.Float64s(distinct)

	denom := float64(max(len(distinct)-1, 1))
	cm := ColorMap{
		Ramp:    ramp.Name,
		entries: make([]Entry, len(distinct)),
		index:   make(map[float64]int, len(distinct)),
	}
	for i, v := range distinct {
		pos := float64(i) / denom
		cm.entries[i] = Entry{Value: v, Position: pos, Color: toRGBA(ramp.At(pos))}
		cm.index[v] = i
	}
	return cm
}

func toRGBA(c [3]float64) RGBA {
	var out RGBA
	for i, ch := range c {
		out[i] = uint8(min(max(int(ch*255+channelEpsilon), 0), 255))
	}
	out[3] = 255
	return out
}

// Lookup returns the color assigned to v.
func (m ColorMap) Lookup(v float64) (RGBA, bool) {
	i, ok := m.index[v]
	if !ok {
		return RGBA{}, false
	}
	return m.entries[i].Color, true
}

// Entries returns the value/color pairs in ascending value order.
func (m ColorMap) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of distinct values.
func (m ColorMap) Len() int { return len(m.entries) }
