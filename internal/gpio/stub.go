//go:build !linux && !tinygo

package gpio

import "errors"

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chipName string, pins Pins) (*RealReader, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (Levels, error) {
	return AllReleased(), errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// EvdevReader is not available on non-Linux platforms.
type EvdevReader struct{}

// NewEvdevReader returns an error on non-Linux platforms.
func NewEvdevReader(path string) (*EvdevReader, error) {
	return nil, errors.New("evdev: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *EvdevReader) Read() (Levels, error) {
	return AllReleased(), errors.New("evdev: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *EvdevReader) Close() error {
	return nil
}
