// Package frame implements the line protocol streamed by the controller in Plot mode.
//
// A frame is a single line: "<" distance "  " speed "  " elapsedMs ">" "\n".
// Distance and speed are printed with two decimals, elapsedMs is the controller
// clock in milliseconds.
package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	Start     = '<'
	End       = '>'
	Separator = "  "
)

// ErrMalformed is wrapped by every Parse error.
var ErrMalformed = errors.New("malformed frame")

// Frame is a single Plot mode measurement.
type Frame struct {
	Distance  float64 // cm
	Speed     float64 // cm/s
	ElapsedMs int64   // controller clock
}

// Append appends the encoded frame, including the trailing newline, to dst.
func Append(dst []byte, f Frame) []byte {
	dst = append(dst, Start)
	dst = strconv.AppendFloat(dst, f.Distance, 'f', 2, 32)
	dst = append(dst, Separator...)
	dst = strconv.AppendFloat(dst, f.Speed, 'f', 2, 32)
	dst = append(dst, Separator...)
	dst = strconv.AppendInt(dst, f.ElapsedMs, 10)
	dst = append(dst, End, '\n')
	return dst
}

// String returns the encoded frame without the trailing newline.
func (f Frame) String() string {
	b := Append(nil, f)
	return string(b[:len(b)-1])
}

// Parse decodes a single line. Surrounding whitespace is ignored; anything else
// outside the delimiters, a missing delimiter, or a field that fails to parse is an error.
func Parse(line string) (Frame, error) {
	line = strings.TrimSpace(line)
	if len(line) < 2 || line[0] != Start || line[len(line)-1] != End {
		return Frame{}, fmt.Errorf("%w: missing delimiters in %q", ErrMalformed, line)
	}

	parts := strings.Split(line[1:len(line)-1], Separator)
	if len(parts) != 3 {
		return Frame{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformed, len(parts))
	}

	distance, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: invalid distance: %w", ErrMalformed, err)
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: invalid speed: %w", ErrMalformed, err)
	}
	elapsed, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: invalid elapsed time: %w", ErrMalformed, err)
	}

	return Frame{Distance: distance, Speed: speed, ElapsedMs: elapsed}, nil
}
