package chart

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gocapm/pkg/reading"
)

// ChartWidget plots capacitance over time together with the record log and
// the pass band around the nominal value.
type ChartWidget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu      sync.RWMutex
	records []float64
	nominal float64 // nF, 0 hides the band
	tolPct  float64
	stable  bool

	// Display buffer (reused for downsampling)
	display []reading.Reading

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a chart showing at least window of history.
func New(window time.Duration) *ChartWidget {
	if window <= 0 {
		window = 10 * time.Second
	}
	c := &ChartWidget{
		window:           window,
		display:          make([]reading.Reading, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	c.ExtendBaseWidget(c)
	c.updateAutoScale()
	c.Refresh()
	return c
}

// UpdateData replaces the plotted readings.
// This should be called from the history callback using fyne.Do().
func (c *ChartWidget) UpdateData(readings []reading.Reading, stable bool) {
	c.mu.Lock()
	c.display = reading.Downsample(c.display, readings, c.maxDisplayPoints)
	if len(readings) > 0 {
		c.records = readings[len(readings)-1].Records
	}
	c.stable = stable
	c.updateAutoScale()
	c.mu.Unlock()

	c.Refresh()
}

// SetBand sets the nominal value and tolerance drawn as the pass band.
func (c *ChartWidget) SetBand(nominal, tolerancePct float64) {
	c.mu.Lock()
	c.nominal = nominal
	c.tolPct = tolerancePct
	c.updateAutoScale()
	c.mu.Unlock()

	c.Refresh()
}

// updateAutoScale calculates the axis ranges from current data.
func (c *ChartWidget) updateAutoScale() {
	c.yMin, c.yMax = valueRange(c.display, c.records, c.nominal, c.tolPct)
	c.xMin, c.xMax = timeRange(c.display, c.window, time.Now())
}

// band returns the pass band limits around nominal.
func band(nominal, tolPct float64) (lo, hi float64) {
	d := math.Abs(nominal) * tolPct / 100
	return nominal - d, nominal + d
}

// valueRange returns the Y range covering present readings, non-zero
// records and the pass band, with a 10% margin.
func valueRange(readings []reading.Reading, records []float64, nominal, tolPct float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	include := func(v float64) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	for _, r := range readings {
		if r.Present {
			include(r.Capacitance)
		}
	}
	for _, v := range records {
		if v != 0 {
			include(v)
		}
	}
	if nominal > 0 {
		bl, bh := band(nominal, tolPct)
		include(bl)
		include(bh)
	}

	if math.IsInf(lo, 1) {
		return 0, 1
	}

	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(hi), 1)
	}
	margin := span * 0.1
	return lo - margin, hi + margin
}

// timeRange returns the X range of readings, at least window wide.
func timeRange(readings []reading.Reading, window time.Duration, now time.Time) (time.Time, time.Time) {
	if len(readings) == 0 {
		return now, now.Add(window)
	}
	start := readings[0].Timestamp
	end := readings[len(readings)-1].Timestamp
	if end.Sub(start) < window {
		end = start.Add(window)
	}
	return start, end
}

// CreateRenderer creates the widget renderer.
func (c *ChartWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &chartRenderer{
		chart:   c,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}
