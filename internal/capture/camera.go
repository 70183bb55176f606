// Package capture provides frame sources for recognition sessions. A
// source is bound to a callback that receives encoded JPEG frames; at
// most one binding is active at a time.
package capture

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyBound indicates the source already has an active binding.
	ErrAlreadyBound = errors.New("capture source already bound")

	// ErrNotBound indicates an operation that requires an active binding.
	ErrNotBound = errors.New("capture source not bound")

	// ErrNoAlternateCamera indicates a flip was requested but only one
	// device is configured.
	ErrNoAlternateCamera = errors.New("no alternate camera configured")
)

// FrameFunc receives one encoded frame. Implementations must not retain
// the slice after returning.
type FrameFunc func(frame []byte)

// Source is a camera-like frame producer.
type Source interface {
	// Bind opens the device and starts delivering frames to fn until the
	// context is cancelled or Unbind is called. It returns an error if
	// the device cannot be opened.
	Bind(ctx context.Context, fn FrameFunc) error

	// Unbind stops frame delivery and releases the device. It is a no-op
	// when the source is not bound.
	Unbind()

	// Flip switches to the alternate device while bound.
	Flip() error

	// Close releases all resources. The source cannot be reused after.
	Close() error
}
