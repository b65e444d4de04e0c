package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"sync"
)

// FileDevice reads the latest still per facing mode from disk, as written
// by a webcam daemon. It serves one stream at a time.
type FileDevice struct {
	paths map[Facing]string
	mu    sync.Mutex
	open  bool
}

// NewFileDevice creates a device reading rearPath and frontPath.
func NewFileDevice(rearPath, frontPath string) *FileDevice {
	return &FileDevice{paths: map[Facing]string{
		FacingRear:  rearPath,
		FacingFront: frontPath,
	}}
}

// Open checks that the still for the requested facing mode is readable.
func (d *FileDevice) Open(_ context.Context, c Constraints) (Stream, error) {
	facing := c.Facing
	if facing == "" {
		facing = FacingRear
	}
	path := d.paths[facing]
	if path == "" {
		return nil, fmt.Errorf("%w: no %s camera configured", ErrUnavailable, facing)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	f.Close()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return nil, fmt.Errorf("%w: stream already open", ErrUnavailable)
	}
	d.open = true
	return &fileStream{device: d, path: path, facing: facing}, nil
}

func classifyOpenError(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

type fileStream struct {
	device *FileDevice
	path   string
	facing Facing
	once   sync.Once
	closed bool
	mu     sync.Mutex
}

func (s *fileStream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrUnavailable
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return img, nil
}

func (s *fileStream) Facing() Facing { return s.facing }

func (s *fileStream) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.device.mu.Lock()
		s.device.open = false
		s.device.mu.Unlock()
	})
	return nil
}
