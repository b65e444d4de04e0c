package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log/slog"
	"sync"
)

const jpegQuality = 95

// Snapshot is an encoded still frame.
type Snapshot struct {
	Data     []byte
	MIMEType string
	Facing   Facing
}

// DataURI returns the snapshot as a base64 data URI.
func (s Snapshot) DataURI() string {
	return "data:" + s.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}

// Capture holds at most one stream from its device.
type Capture struct {
	device Device
	logger *slog.Logger
	stream Stream
	facing Facing
	mu     sync.Mutex
}

// New creates a capture component over device. The first stream faces the rear.
func New(device Device, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{device: device, logger: logger, facing: FacingRear}
}

// Activate opens a stream with the current facing mode. It is a no-op when
// a stream is already open.
func (c *Capture) Activate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return nil
	}
	return c.openLocked(ctx, c.facing)
}

// Toggle releases the current stream and opens one with the opposite facing.
// On failure no stream is held.
func (c *Capture) Toggle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return ErrUnavailable
	}
	next := c.facing.Opposite()
	c.releaseLocked()
	return c.openLocked(ctx, next)
}

// Snapshot grabs the current frame as a JPEG and releases the stream,
// whether or not the grab succeeded.
func (c *Capture) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return Snapshot{}, ErrUnavailable
	}
	defer c.releaseLocked()

	frame, err := c.stream.Frame(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("grab frame: %w", err)
	}

	facing := c.stream.Facing()
	if facing == FacingFront {
		frame = Mirror(frame)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Snapshot{}, fmt.Errorf("encode frame: %w", err)
	}

	return Snapshot{Data: buf.Bytes(), MIMEType: "image/jpeg", Facing: facing}, nil
}

// Facing returns the facing mode of the current or next stream.
func (c *Capture) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// Active reports whether a stream is held.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// Close releases the stream if one is held. Safe to call repeatedly.
func (c *Capture) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
}

func (c *Capture) openLocked(ctx context.Context, facing Facing) error {
	stream, err := c.device.Open(ctx, Constraints{
		Facing: facing,
		Width:  PreferredWidth,
		Height: PreferredHeight,
	})
	if err != nil {
		return err
	}
	c.stream = stream
	c.facing = facing
	c.logger.Debug("Camera stream opened", "facing", facing)
	return nil
}

func (c *Capture) releaseLocked() {
	if c.stream == nil {
		return
	}
	if err := c.stream.Close(); err != nil {
		c.logger.Warn("Failed to close camera stream", "error", err)
	}
	c.stream = nil
	c.logger.Debug("Camera stream released")
}

// Mirror flips img horizontally.
func Mirror(img image.Image) image.Image {
	b := img.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for l, r := 0, w-1; l < r; l, r = l+1, r-1 {
			li, ri := l*4, r*4
			for k := 0; k < 4; k++ {
				row[li+k], row[ri+k] = row[ri+k], row[li+k]
			}
		}
	}
	return src
}
