// Package capture owns the camera: at most one open stream, a front/rear
// toggle and JPEG snapshots of the current frame.
package capture

import (
	"context"
	"errors"
	"image"
)

// Facing is the camera facing mode.
type Facing string

const (
	FacingRear  Facing = "environment"
	FacingFront Facing = "user"
)

// Opposite returns the other facing mode.
func (f Facing) Opposite() Facing {
	if f == FacingFront {
		return FacingRear
	}
	return FacingFront
}

// Preferred capture resolution.
const (
	PreferredWidth  = 1920
	PreferredHeight = 1080
)

var (
	// ErrPermissionDenied means the user or the platform refused camera access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrUnavailable means no camera could be opened, or the stream is gone.
	ErrUnavailable = errors.New("camera unavailable")
)

// Constraints are the requested stream properties. Devices may deliver a
// different resolution.
type Constraints struct {
	Facing Facing
	Width  int
	Height int
}

// Device opens camera streams.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is a live camera stream. Close releases the hardware.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Facing() Facing
	Close() error
}
