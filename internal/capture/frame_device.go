package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
)

// FrameDevice is a camera whose frames are pushed by a transport, such as
// a Telegram photo or a websocket frame. It serves one stream at a time.
type FrameDevice struct {
	mu     sync.Mutex
	denied bool
	stream *frameStream
}

// NewFrameDevice creates a device with no frames and access allowed.
func NewFrameDevice() *FrameDevice {
	return &FrameDevice{}
}

// Deny records that the client refused camera access. Subsequent opens fail
// with ErrPermissionDenied until Allow is called.
func (d *FrameDevice) Deny() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied = true
}

// Allow clears a previous Deny.
func (d *FrameDevice) Allow() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied = false
}

// Open starts a stream. Frames pushed before Open are not delivered.
func (d *FrameDevice) Open(_ context.Context, c Constraints) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.denied {
		return nil, ErrPermissionDenied
	}
	if d.stream != nil {
		return nil, fmt.Errorf("%w: stream already open", ErrUnavailable)
	}

	facing := c.Facing
	if facing == "" {
		facing = FacingRear
	}
	d.stream = &frameStream{
		device: d,
		facing: facing,
		ready:  make(chan struct{}),
		closed: make(chan struct{}),
	}
	return d.stream, nil
}

// Push delivers a frame to the open stream.
func (d *FrameDevice) Push(img image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return ErrUnavailable
	}
	d.stream.latest = img
	select {
	case <-d.stream.ready:
	default:
		close(d.stream.ready)
	}
	return nil
}

// PushEncoded decodes a JPEG or PNG and delivers it to the open stream.
func (d *FrameDevice) PushEncoded(data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	return d.Push(img)
}

// Streaming reports whether a stream is open.
func (d *FrameDevice) Streaming() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stream != nil
}

type frameStream struct {
	device *FrameDevice
	facing Facing
	latest image.Image
	ready  chan struct{}
	closed chan struct{}
}

// Frame returns the latest pushed frame. It fails at once when the stream
// is closed or nothing has been pushed yet.
func (s *frameStream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-s.closed:
		return nil, ErrUnavailable
	default:
	}
	select {
	case <-s.ready:
	default:
		return nil, fmt.Errorf("%w: no frame received", ErrUnavailable)
	}

	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	return s.latest, nil
}

func (s *frameStream) Facing() Facing { return s.facing }

func (s *frameStream) Close() error {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()

	if s.device.stream != s {
		return nil
	}
	s.device.stream = nil
	close(s.closed)
	return nil
}
