// Package report renders the avalanche statistics to PNG charts: the
// log-log size distribution with its power-law fit, the ranked
// avalanche sizes, and the raw size series in drop order.
package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"sandpile/stats"
)

var (
	scatterColor = color.RGBA{R: 0, G: 200, B: 220, A: 255}
	fitColor     = color.RGBA{R: 220, G: 40, B: 40, A: 255}
)

// WriteAll renders every chart into dir and returns the file paths.
func WriteAll(dir string, res stats.Result, sizes []int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	var paths []string

	p, err := writeDistribution(dir, res)
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeRanked(dir, sizes)
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeSeries(dir, sizes)
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	return paths, nil
}

// writeDistribution plots the non-empty histogram bins on log-log axes
// and overlays the fitted line when the fit succeeded.
func writeDistribution(dir string, res stats.Result) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Avalanche Size Distribution - %d Avalanches, %d Drops", res.Avalanches, res.Drops)
	p.X.Label.Text = "Avalanche Size (s)"
	p.Y.Label.Text = "Frequency N(s)"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	pts := make(plotter.XYs, 0, len(res.Points))
	for _, pt := range res.Points {
		pts = append(pts, plotter.XY{X: pt.Center, Y: float64(pt.Count)})
	}

	if len(pts) > 0 {
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return "", fmt.Errorf("distribution scatter: %w", err)
		}
		scatter.GlyphStyle.Color = scatterColor
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("counts", scatter)
	}

	if res.Status == stats.StatusOK {
		first := res.Points[0].Center
		last := res.Points[len(res.Points)-1].Center
		fitPts := plotter.XYs{
			{X: first, Y: math.Pow(10, res.Intercept+res.Slope*math.Log10(first))},
			{X: last, Y: math.Pow(10, res.Intercept+res.Slope*math.Log10(last))},
		}
		line, err := plotter.NewLine(fitPts)
		if err != nil {
			return "", fmt.Errorf("fit line: %w", err)
		}
		line.Color = fitColor
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("fit (slope %.2f, tau %.2f)", res.Slope, res.Tau), line)
	}

	p.Legend.Top = true

	path := filepath.Join(dir, "distribution.png")
	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save distribution plot: %w", err)
	}
	return path, nil
}

// writeRanked plots avalanche sizes sorted descending against rank.
func writeRanked(dir string, sizes []int) (string, error) {
	sorted := make([]int, len(sizes))
	copy(sorted, sizes)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	p := plot.New()
	p.Title.Text = "Ranked Avalanche Sizes"
	p.X.Label.Text = "Rank"
	p.Y.Label.Text = "Size"
	if len(sorted) > 0 {
		p.X.Scale = plot.LogScale{}
		p.Y.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

		pts := make(plotter.XYs, len(sorted))
		for i, s := range sorted {
			pts[i] = plotter.XY{X: float64(i + 1), Y: float64(s)}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return "", fmt.Errorf("ranked scatter: %w", err)
		}
		scatter.GlyphStyle.Color = scatterColor
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
	}

	path := filepath.Join(dir, "ranked.png")
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save ranked plot: %w", err)
	}
	return path, nil
}

// writeSeries plots the avalanche size series in drop order.
func writeSeries(dir string, sizes []int) (string, error) {
	p := plot.New()
	p.Title.Text = "Avalanche Size Series"
	p.X.Label.Text = "Avalanche #"
	p.Y.Label.Text = "Size"

	if len(sizes) > 0 {
		pts := make(plotter.XYs, len(sizes))
		for i, s := range sizes {
			pts[i] = plotter.XY{X: float64(i), Y: float64(s)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", fmt.Errorf("series line: %w", err)
		}
		line.Color = scatterColor
		line.Width = vg.Points(1)
		p.Add(line)
	}

	path := filepath.Join(dir, "series.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save series plot: %w", err)
	}
	return path, nil
}
