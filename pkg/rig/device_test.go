package rig

import (
	"context"
	"strings"
	"testing"

	"github.com/itohio/gospeed/pkg/frame"
	"github.com/stretchr/testify/assert"
)

func TestReadFrames(t *testing.T) {
	stream := strings.Join([]string{
		"Mode: Standard",
		"Speed: 3.20 cm/s",
		"Mode: Plot",
		"<12.50  3.20  1500>",
		"",
		"<12.50  3.20",
		"<13.00  5.00  1600>\r",
		"<garbage>",
		"<13.50  5.00  1700>",
	}, "\n")

	out := make(chan frame.Frame, 10)
	dropped := readFrames(context.Background(), strings.NewReader(stream), out)
	close(out)

	var got []frame.Frame
	for f := range out {
		got = append(got, f)
	}

	assert.Equal(t, 0, dropped)
	assert.Equal(t, []frame.Frame{
		{Distance: 12.5, Speed: 3.2, ElapsedMs: 1500},
		{Distance: 13, Speed: 5, ElapsedMs: 1600},
		{Distance: 13.5, Speed: 5, ElapsedMs: 1700},
	}, got)
}

func TestReadFrames_OverlongLineSkipped(t *testing.T) {
	stream := strings.Repeat("x", 70*1024) + "\n<12.5  3.2  1500>\n" +
		strings.Repeat("<", 2*maxLineLength) + "\n<13  5  1600>\n"

	out := make(chan frame.Frame, 10)
	readFrames(context.Background(), strings.NewReader(stream), out)
	close(out)

	var got []frame.Frame
	for f := range out {
		got = append(got, f)
	}
	assert.Equal(t, []frame.Frame{
		{Distance: 12.5, Speed: 3.2, ElapsedMs: 1500},
		{Distance: 13, Speed: 5, ElapsedMs: 1600},
	}, got)
}

func TestReadFrames_FullChannelDrops(t *testing.T) {
	stream := "<1.00  0.00  1>\n<2.00  0.00  2>\n<3.00  0.00  3>\n"

	out := make(chan frame.Frame, 1)
	dropped := readFrames(context.Background(), strings.NewReader(stream), out)

	assert.Equal(t, 2, dropped)
	assert.Equal(t, int64(1), (<-out).ElapsedMs, "oldest frame is kept")
}

func TestReadFrames_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan frame.Frame, 10)
	readFrames(ctx, strings.NewReader("<1.00  0.00  1>\n"), out)

	assert.Empty(t, out)
}

func TestNew(t *testing.T) {
	dev := New("COM3", 115200, 100)
	assert.NotNil(t, dev)
	assert.Equal(t, "COM3", dev.port)
	assert.Equal(t, 115200, dev.baudRate)
	assert.Equal(t, 100, dev.bufSize)
	assert.NotNil(t, dev.frames)
	assert.False(t, dev.IsConnected())
}

func TestNew_Defaults(t *testing.T) {
	dev := New("COM3", 0, 0)
	assert.NotNil(t, dev)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestSerial_CloseWithoutConnect(t *testing.T) {
	dev := New("COM3", 115200, 100)
	assert.NoError(t, dev.Close())
	assert.False(t, dev.IsConnected())
}
