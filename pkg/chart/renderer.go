package chart

import (
	"image/color"
	"math"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/gocapm/pkg/reading"
)

var (
	gridColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	traceColor  = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	stableColor = color.RGBA{R: 100, G: 220, B: 100, A: 255} // Green
	bandColor   = color.RGBA{R: 0, G: 100, B: 200, A: 60}    // Translucent blue
	recordColor = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
)

// chartRenderer renders the chart widget.
type chartRenderer struct {
	chart *ChartWidget

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plot is the drawing area and its axis ranges.
type plot struct {
	x, y, w, h float32
	yMin, yMax float64
	xMin, xMax time.Time
}

func (p plot) px(t time.Time) float32 {
	span := p.xMax.Sub(p.xMin).Seconds()
	if span <= 0 {
		return p.x
	}
	return p.x + float32(t.Sub(p.xMin).Seconds()/span)*p.w
}

func (p plot) py(v float64) float32 {
	span := p.yMax - p.yMin
	if span <= 0 {
		return p.y + p.h
	}
	return p.y + p.h - float32((v-p.yMin)/span)*p.h
}

// MinSize returns the minimum size of the widget.
func (r *chartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *chartRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.chart.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the canvas objects from the current data.
func (r *chartRenderer) Refresh() {
	c := r.chart
	c.mu.RLock()
	readings := c.display
	records := c.records
	nominal, tolPct := c.nominal, c.tolPct
	stable := c.stable
	p := plot{yMin: c.yMin, yMax: c.yMax, xMin: c.xMin, xMax: c.xMax}
	c.mu.RUnlock()

	size := c.Size()
	r.objects = []fyne.CanvasObject{r.bg}
	if size.Width == 0 || size.Height == 0 {
		return
	}

	const marginLeft, marginRight, marginTop, marginBottom = 70, 20, 20, 40
	p.x, p.y = marginLeft, marginTop
	p.w = size.Width - marginLeft - marginRight
	p.h = size.Height - marginTop - marginBottom

	if nominal > 0 {
		r.drawBand(p, nominal, tolPct)
	}
	r.drawGrid(p)
	r.drawRecords(p, records)
	r.drawTrace(p, readings, stable)
}

// drawBand shades the pass band around the nominal value.
func (r *chartRenderer) drawBand(p plot, nominal, tolPct float64) {
	lo, hi := band(nominal, tolPct)
	top, bottom := p.py(hi), p.py(lo)

	rect := canvas.NewRectangle(bandColor)
	rect.Move(fyne.NewPos(p.x, top))
	rect.Resize(fyne.NewSize(p.w, bottom-top))
	r.objects = append(r.objects, rect)

	line := canvas.NewLine(recordColor)
	line.Position1 = fyne.NewPos(p.x, p.py(nominal))
	line.Position2 = fyne.NewPos(p.x+p.w, p.py(nominal))
	line.StrokeWidth = 1
	r.objects = append(r.objects, line)
}

// drawGrid draws horizontal capacitance lines and vertical time lines.
func (r *chartRenderer) drawGrid(p plot) {
	const numHLines, numVLines = 8, 10

	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/numHLines
		r.addLine(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))

		value := p.yMax - float64(i)*(p.yMax-p.yMin)/numHLines
		r.addText(formatNF(value), 10, fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))
	}

	span := p.xMax.Sub(p.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/numVLines
		r.addLine(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))

		offset := time.Duration(float64(span) * float64(i) / numVLines)
		r.addText(formatSeconds(offset), 10, fyne.TextAlignCenter, fyne.NewPos(x-20, p.y+p.h+5))
	}
}

// drawRecords marks every stored record as a tick on the right edge.
func (r *chartRenderer) drawRecords(p plot, records []float64) {
	for i, v := range records {
		if v == 0 {
			continue
		}
		y := p.py(v)
		r.addLine(recordColor, 2, fyne.NewPos(p.x+p.w-12, y), fyne.NewPos(p.x+p.w, y))
		r.addText("#"+strconv.Itoa(i+1), 9, fyne.TextAlignTrailing, fyne.NewPos(p.x+p.w-14, y-6))
	}
}

// drawTrace connects consecutive present readings. Gaps without a
// capacitor break the line.
func (r *chartRenderer) drawTrace(p plot, readings []reading.Reading, stable bool) {
	clr := traceColor
	if stable {
		clr = stableColor
	}

	for i := 1; i < len(readings); i++ {
		a, b := readings[i-1], readings[i]
		if !a.Present || !b.Present {
			continue
		}
		r.addLine(clr, 1.5,
			fyne.NewPos(p.px(a.Timestamp), p.py(a.Capacitance)),
			fyne.NewPos(p.px(b.Timestamp), p.py(b.Capacitance)))
	}
}

func (r *chartRenderer) addLine(clr color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(clr)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *chartRenderer) addText(s string, size float32, align fyne.TextAlign, pos fyne.Position) {
	text := canvas.NewText(s, labelColor)
	text.TextSize = size
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *chartRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *chartRenderer) Destroy() {}

// Helper functions for formatting

func formatNF(v float64) string {
	return strconv.FormatFloat(v, 'f', precision(v), 64) + "nF"
}

// precision picks decimals so small capacitances keep three significant
// digits.
func precision(v float64) int {
	switch a := math.Abs(v); {
	case a >= 100:
		return 1
	case a >= 1:
		return 2
	default:
		return 3
	}
}

func formatSeconds(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}
