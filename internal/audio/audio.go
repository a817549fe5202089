package audio

import "context"

// Capture defines the interface for audio capture
type Capture interface {
	// Start streams mono float32 chunks into out until ctx is done or the
	// stream fails, then closes out.
	Start(ctx context.Context, deviceID string, sampleRate int, out chan<- []float32) error
	Stop() error
	ListDevices() ([]AudioDevice, error)
	Close() error
}

// Player plays synthesized audio files through the local output device.
type Player interface {
	// Play starts playback in the background. A playback already in
	// progress is stopped first.
	Play(ctx context.Context, path string) error
	// Wait blocks until the current playback ends or ctx is done.
	Wait(ctx context.Context) error
	Stop() error
	Close() error
}

// AudioDevice represents an audio input device
type AudioDevice struct {
	ID      string
	Name    string
	Default bool
}
