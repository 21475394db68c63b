package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/tabula-cli/internal/cluster"
)

// ErrTooFewPoints indicates fewer than MinPoints plottable rows.
var ErrTooFewPoints = errors.New("not enough numeric points to plot (need at least 5)")

// MinPoints is the smallest scatter worth drawing.
const MinPoints = 5

// Tableau 10.
var palette = []color.RGBA{
	{R: 0x4e, G: 0x79, B: 0xa7, A: 0xff},
	{R: 0xf2, G: 0x8e, B: 0x2b, A: 0xff},
	{R: 0xe1, G: 0x57, B: 0x59, A: 0xff},
	{R: 0x76, G: 0xb7, B: 0xb2, A: 0xff},
	{R: 0x59, G: 0xa1, B: 0x4f, A: 0xff},
	{R: 0xed, G: 0xc9, B: 0x48, A: 0xff},
	{R: 0xb0, G: 0x7a, B: 0xa1, A: 0xff},
	{R: 0xff, G: 0x9d, B: 0xa7, A: 0xff},
	{R: 0x9c, G: 0x75, B: 0x5f, A: 0xff},
	{R: 0xba, G: 0xb0, B: 0xac, A: 0xff},
}

var (
	plainColor       = color.RGBA{R: 0x6a, G: 0xa9, B: 0xff, A: 0xd9}
	unclusteredColor = color.RGBA{R: 0xa9, G: 0xac, B: 0xb5, A: 0x8c}
)

// ScatterSpec describes one x/y chart.
type ScatterSpec struct {
	Title  string
	X, Y   string
	Rows   cluster.RowSource
	Width  vg.Length
	Height vg.Length
	// Labels colors points by cluster; cluster.Sentinel rows are drawn as unclustered.
	Labels []int
	// Centroids, with the feature order in Features, are drawn as crosses
	// when both X and Y are among Features.
	Centroids [][]float64
	Features  []string
}

// FormatFromPath maps an output file extension to a plot format.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "png", "svg", "pdf", "jpg", "jpeg":
		return ext, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q (use .png, .svg, .pdf or .jpg)", ext)
	}
}

// Scatter renders spec to w in the given format.
func Scatter(spec ScatterSpec, w io.Writer, format string) error {
	p, err := buildScatter(spec)
	if err != nil {
		return err
	}
	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = 6 * vg.Inch
	}
	if height <= 0 {
		height = 4 * vg.Inch
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func buildScatter(spec ScatterSpec) (*plot.Plot, error) {
	if spec.X == "" || spec.Y == "" {
		return nil, errors.New("choose X and Y fields")
	}
	if spec.Labels != nil && len(spec.Labels) != spec.Rows.Len() {
		return nil, fmt.Errorf("labels length %d does not match %d rows", len(spec.Labels), spec.Rows.Len())
	}

	// group -1 holds unclustered rows, or every row when Labels is nil
	groups := map[int]plotter.XYs{}
	maxLabel := -1
	total := 0
	for i := 0; i < spec.Rows.Len(); i++ {
		x, okx := spec.Rows.Value(i, spec.X)
		y, oky := spec.Rows.Value(i, spec.Y)
		if !okx || !oky || !finite(x) || !finite(y) {
			continue
		}
		g := cluster.Sentinel
		if spec.Labels != nil {
			g = spec.Labels[i]
		}
		groups[g] = append(groups[g], plotter.XY{X: x, Y: y})
		if g > maxLabel {
			maxLabel = g
		}
		total++
	}
	if total < MinPoints {
		return nil, ErrTooFewPoints
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.X
	p.Y.Label.Text = spec.Y
	p.Add(plotter.NewGrid())

	if pts, ok := groups[cluster.Sentinel]; ok {
		c := unclusteredColor
		name := "unclustered"
		if spec.Labels == nil {
			c, name = plainColor, ""
		}
		if err := addSeries(p, pts, c, name); err != nil {
			return nil, err
		}
	}
	for g := 0; g <= maxLabel; g++ {
		pts, ok := groups[g]
		if !ok {
			continue
		}
		if err := addSeries(p, pts, palette[g%len(palette)], fmt.Sprintf("cluster %d", g)); err != nil {
			return nil, err
		}
	}

	if err := addCentroids(p, spec); err != nil {
		return nil, err
	}
	return p, nil
}

func addSeries(p *plot.Plot, pts plotter.XYs, c color.Color, name string) error {
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s)
	if name != "" {
		p.Legend.Add(name, s)
	}
	return nil
}

func addCentroids(p *plot.Plot, spec ScatterSpec) error {
	if len(spec.Centroids) == 0 {
		return nil
	}
	xi, yi := indexOf(spec.Features, spec.X), indexOf(spec.Features, spec.Y)
	if xi < 0 || yi < 0 {
		return nil
	}
	pts := make(plotter.XYs, len(spec.Centroids))
	for c, v := range spec.Centroids {
		pts[c] = plotter.XY{X: v[xi], Y: v[yi]}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("centroids: %w", err)
	}
	s.GlyphStyle.Color = color.Black
	s.GlyphStyle.Shape = draw.CrossGlyph{}
	s.GlyphStyle.Radius = vg.Points(5)
	p.Add(s)
	p.Legend.Add("centroid", s)
	return nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
