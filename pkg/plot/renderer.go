package plot

import (
	"image/color"
	"math"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gospeed/pkg/session"
)

var (
	gridColor     = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor    = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	distanceColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // orange
	speedColor    = color.RGBA{R: 100, G: 200, B: 255, A: 255} // light blue
	resetColor    = color.RGBA{R: 220, G: 80, B: 80, A: 255}
)

type renderer struct {
	plot *Widget

	background *canvas.Rectangle
	objects    []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plotArea is the inner rectangle of the graph in widget coordinates.
type plotArea struct {
	x, y, width, height float32
}

func (r *renderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *renderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.plot.BaseWidget.Refresh()
	}
}

func (r *renderer) Refresh() {
	r.plot.mu.RLock()
	points := make([]session.Point, len(r.plot.display))
	copy(points, r.plot.display)
	latest, hasData, resets := r.plot.latest, r.plot.hasData, r.plot.resets
	yMin, yMax := r.plot.yMin, r.plot.yMax
	xMin, xMax := r.plot.xMin, r.plot.xMax
	r.plot.mu.RUnlock()

	size := r.plot.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.background}

	const (
		marginLeft   = 60
		marginRight  = 20
		marginTop    = 20
		marginBottom = 40
	)
	area := plotArea{
		x:      marginLeft,
		y:      marginTop,
		width:  size.Width - marginLeft - marginRight,
		height: size.Height - marginTop - marginBottom,
	}

	r.drawGrid(area, yMin, yMax, xMin, xMax)

	project := func(t time.Duration, v float64) fyne.Position {
		x := area.x + float32(float64(t-xMin)/float64(xMax-xMin))*area.width
		y := area.y + area.height - float32((v-yMin)/(yMax-yMin))*area.height
		return fyne.NewPos(x, y)
	}

	r.drawTrace(points, func(p session.Point) fyne.Position { return project(p.Time, p.Distance) }, distanceColor, 1.5)
	r.drawTrace(points, func(p session.Point) fyne.Position { return project(p.Time, p.Speed) }, speedColor, 2.5)

	if hasData {
		r.drawLegend(area, latest, resets)
	}
}

// drawGrid draws the oscilloscope-style grid with axis labels.
func (r *renderer) drawGrid(area plotArea, yMin, yMax float64, xMin, xMax time.Duration) {
	const numHLines = 8
	for i := range numHLines + 1 {
		y := area.y + float32(i)*area.height/numHLines
		r.addLine(fyne.NewPos(area.x, y), fyne.NewPos(area.x+area.width, y), gridColor, 1)

		value := yMax - float64(i)*(yMax-yMin)/numHLines
		r.addText(formatValue(value), fyne.NewPos(area.x-5, y-6), labelColor, 10, fyne.TextAlignTrailing)
	}

	const numVLines = 10
	for i := range numVLines + 1 {
		x := area.x + float32(i)*area.width/numVLines
		r.addLine(fyne.NewPos(x, area.y), fyne.NewPos(x, area.y+area.height), gridColor, 1)

		offset := time.Duration(i) * (xMax - xMin) / numVLines
		r.addText(formatTime(xMin+offset), fyne.NewPos(x-20, area.y+area.height+5), labelColor, 10, fyne.TextAlignCenter)
	}
}

// drawTrace draws connected line segments through the projected points.
func (r *renderer) drawTrace(points []session.Point, pos func(session.Point) fyne.Position, c color.Color, width float32) {
	for i := range len(points) - 1 {
		r.addLine(pos(points[i]), pos(points[i+1]), c, width)
	}
}

// drawLegend prints the latest values in the top-left corner.
func (r *renderer) drawLegend(area plotArea, latest session.Point, resets int) {
	left := area.x + 10
	r.addText("distance "+formatFloat(latest.Distance, 2)+" cm", fyne.NewPos(left, area.y+5), distanceColor, 12, fyne.TextAlignLeading)
	r.addText("speed "+formatFloat(latest.Speed, 2)+" cm/s", fyne.NewPos(left, area.y+22), speedColor, 12, fyne.TextAlignLeading)
	if resets > 0 {
		r.addText("time resets: "+strconv.Itoa(resets), fyne.NewPos(left, area.y+39), resetColor, 11, fyne.TextAlignLeading)
	}
}

func (r *renderer) addLine(from, to fyne.Position, c color.Color, width float32) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *renderer) addText(s string, pos fyne.Position, c color.Color, size float32, align fyne.TextAlign) {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

func (r *renderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *renderer) Destroy() {}

func formatValue(v float64) string {
	if math.Abs(v) < 0.01 {
		return "0"
	}
	return formatFloat(v, 1)
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return formatFloat(d.Seconds(), 2) + "s"
	}
	return formatFloat(d.Seconds(), 1) + "s"
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
