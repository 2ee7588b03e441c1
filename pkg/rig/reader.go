package rig

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/itohio/gospeed/pkg/frame"
)

// maxLineLength bounds a single line. Frames are a few dozen bytes; anything longer
// is line noise (wrong baud rate, binary garbage) and is skipped up to the next newline.
const maxLineLength = 512

// readFrames reads r line by line and forwards every valid frame to out.
// Unframed lines (standard mode text, mode banners) are dropped quietly; lines that
// look like frames but fail to parse are logged, as are overlong lines. It returns
// when r is exhausted or ctx is cancelled, and reports how many frames were dropped
// on a full channel.
func readFrames(ctx context.Context, r io.Reader, out chan<- frame.Frame) (dropped int) {
	reader := bufio.NewReaderSize(r, maxLineLength)
	overlong := false
	for {
		chunk, err := reader.ReadSlice('\n')
		if ctx.Err() != nil {
			return dropped
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			if !overlong {
				log.Printf("Dropping line longer than %d bytes", maxLineLength)
			}
			overlong = true
			continue
		case overlong:
			// tail of an overlong line
			overlong = false
		default:
			if !sendLine(ctx, string(chunk), out, &dropped) {
				return dropped
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("Error reading frames: %v", err)
			}
			return dropped
		}
	}
}

// sendLine parses line and forwards it without blocking. It returns false once ctx is done.
func sendLine(ctx context.Context, line string, out chan<- frame.Frame, dropped *int) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	f, err := frame.Parse(line)
	if err != nil {
		if line[0] == frame.Start {
			log.Printf("Dropping malformed frame %q: %v", line, err)
		}
		return true
	}

	// Send frame to channel (non-blocking)
	select {
	case out <- f:
	case <-ctx.Done():
		return false
	default:
		*dropped++
		log.Printf("Frames channel full, dropping frame")
	}
	return true
}
