// Package plot provides a Fyne widget drawing the distance and speed traces
// of a session.
package plot

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gospeed/pkg/config"
	"github.com/itohio/gospeed/pkg/session"
)

// Widget is a custom Fyne widget with oscilloscope-style distance and speed graphs.
type Widget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu      sync.RWMutex
	display []session.Point // downsampled, reused between updates
	latest  session.Point
	hasData bool
	resets  int

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Duration
}

// New creates a new plot widget.
func New(cfg *config.Config) *Widget {
	maxPoints := cfg.Plot.MaxPoints
	if maxPoints <= 0 {
		maxPoints = 1000
	}
	w := &Widget{
		cfg:     cfg,
		display: make([]session.Point, 0, maxPoints),
	}
	w.updateAutoScale()
	w.ExtendBaseWidget(w)
	w.Refresh()
	return w
}

// UpdateData replaces the plotted points.
// This should be called from the session callback using fyne.Do().
func (w *Widget) UpdateData(points []session.Point, resets int) {
	w.mu.Lock()
	w.display = Downsample(w.display, points, w.cfg.Plot.MaxPoints)
	w.hasData = len(points) > 0
	if w.hasData {
		w.latest = points[len(points)-1]
	}
	w.resets = resets
	w.updateAutoScale()
	w.mu.Unlock()

	// Refresh outside the lock, the renderer takes a read lock
	w.Refresh()
}

// updateAutoScale calculates the axis ranges from the display buffer.
func (w *Widget) updateAutoScale() {
	w.yMin, w.yMax = valueRange(w.display)
	w.xMin, w.xMax = timeRange(w.display, w.cfg.PlotWindow())
}

// valueRange returns the y range covering distance and speed with a 10% margin.
func valueRange(points []session.Point) (float64, float64) {
	if len(points) == 0 {
		return 0, 1
	}

	lo, hi := points[0].Distance, points[0].Distance
	for _, p := range points {
		lo = min(lo, p.Distance, p.Speed)
		hi = max(hi, p.Distance, p.Speed)
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	return lo - margin, hi + margin
}

// timeRange returns the x range, at least window wide.
func timeRange(points []session.Point, window time.Duration) (time.Duration, time.Duration) {
	if len(points) == 0 {
		return 0, window
	}
	xMin := points[0].Time
	xMax := points[len(points)-1].Time
	if xMax-xMin < window {
		xMax = xMin + window
	}
	if xMax == xMin {
		xMax = xMin + time.Second
	}
	return xMin, xMax
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &renderer{
		plot:       w,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}
