package pi

import (
	"fmt"
	"image"
	"log"
	"strconv"

	"github.com/itohio/gospeed/pkg/frame"
	"github.com/itohio/gospeed/pkg/speed"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// lineHeight matches basicfont.Face7x13.
const lineHeight = 13

// drawer is the part of ssd1306.Dev the display uses.
type drawer interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// Display shows controller output on a 128x64 SSD1306 OLED.
// The top line holds the mode, the lines below the latest reading.
type Display struct {
	dev   drawer
	img   *image1bit.VerticalLSB
	mode  string
	lines [3]string
}

var _ speed.Sink = (*Display)(nil)

// NewDisplay opens an SSD1306 on bus at the default address.
func NewDisplay(bus i2c.Bus) (*Display, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	return newDisplay(dev), nil
}

func newDisplay(dev drawer) *Display {
	return &Display{
		dev:  dev,
		img:  image1bit.NewVerticalLSB(dev.Bounds()),
		mode: speed.Standard.String(),
	}
}

func (d *Display) ShowSpeed(v float32) {
	d.show("Speed:", formatCm(v)+" cm/s", "")
}

func (d *Display) ShowMode(text string) {
	d.mode = text
	d.show("", "", "")
}

func (d *Display) ShowCalibrationTarget(distance float32) {
	d.show("Hold object at", formatCm(distance)+" cm", "then press Plot")
}

func (d *Display) EmitFrame(f frame.Frame) {
	d.show(
		"d "+strconv.FormatFloat(f.Distance, 'f', 2, 64)+" cm",
		"v "+strconv.FormatFloat(f.Speed, 'f', 2, 64)+" cm/s",
		"t "+strconv.FormatInt(f.ElapsedMs, 10)+" ms",
	)
}

// show redraws the whole screen; draw errors are logged since sinks cannot fail.
func (d *Display) show(lines ...string) {
	copy(d.lines[:], lines)
	if err := d.render(); err != nil {
		log.Printf("display: %v", err)
	}
}

func (d *Display) render() error {
	for i := range d.img.Pix {
		d.img.Pix[i] = 0
	}

	text := &font.Drawer{
		Dst:  d.img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	text.Dot = fixed.P(0, lineHeight)
	text.DrawString(d.mode)
	for i, line := range d.lines {
		text.Dot = fixed.P(0, lineHeight*(i+2)+2)
		text.DrawString(line)
	}

	return d.dev.Draw(d.dev.Bounds(), d.img, image.Point{})
}

func formatCm(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 2, 32)
}
