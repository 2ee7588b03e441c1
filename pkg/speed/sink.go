package speed

import (
	"io"
	"strconv"

	"github.com/itohio/gospeed/pkg/frame"
)

// Sink receives everything the controller wants to show.
type Sink interface {
	ShowSpeed(speed float32)
	ShowMode(text string)
	ShowCalibrationTarget(distance float32)
	EmitFrame(f frame.Frame)
}

// WriterSink renders controller output as text lines on a serial link or console.
// Plot frames go out in wire format; everything else is plain text that frame
// readers discard.
type WriterSink struct {
	w   io.Writer
	buf []byte
}

var _ Sink = (*WriterSink)(nil)

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, buf: make([]byte, 0, 64)}
}

func (s *WriterSink) ShowSpeed(speed float32) {
	b := append(s.buf[:0], "Speed: "...)
	b = strconv.AppendFloat(b, float64(speed), 'f', 2, 32)
	s.flush(append(b, " cm/s\n"...))
}

func (s *WriterSink) ShowMode(text string) {
	b := append(s.buf[:0], "Mode: "...)
	b = append(b, text...)
	s.flush(append(b, '\n'))
}

func (s *WriterSink) ShowCalibrationTarget(distance float32) {
	b := append(s.buf[:0], "Hold object at "...)
	b = strconv.AppendFloat(b, float64(distance), 'f', 2, 32)
	s.flush(append(b, " cm, press capture\n"...))
}

func (s *WriterSink) EmitFrame(f frame.Frame) {
	s.flush(frame.Append(s.buf[:0], f))
}

// flush writes b; output errors are ignored since the loop has nowhere to report them.
func (s *WriterSink) flush(b []byte) {
	s.buf = b
	_, _ = s.w.Write(b)
}

// MultiSink fans controller output out to several sinks, in order.
type MultiSink []Sink

var _ Sink = MultiSink(nil)

func (m MultiSink) ShowSpeed(speed float32) {
	for _, s := range m {
		s.ShowSpeed(speed)
	}
}

func (m MultiSink) ShowMode(text string) {
	for _, s := range m {
		s.ShowMode(text)
	}
}

func (m MultiSink) ShowCalibrationTarget(distance float32) {
	for _, s := range m {
		s.ShowCalibrationTarget(distance)
	}
}

func (m MultiSink) EmitFrame(f frame.Frame) {
	for _, s := range m {
		s.EmitFrame(f)
	}
}
