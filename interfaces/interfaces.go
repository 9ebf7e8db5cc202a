// Package interfaces defines interfaces for various application components.
package interfaces

import (
	"context"
	"errors"
)

// ErrNoSpeech means the recognizer heard nothing usable. It is an expected
// outcome of a listening cycle, not a failure.
var ErrNoSpeech = errors.New("no speech recognized")

// ErrNoMatch means no reference identity matched the probe image.
var ErrNoMatch = errors.New("no matching face")

// SpeechToText is the interface for the speech-to-text module.
type SpeechToText interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

// ReplySource resolves a spoken query to a short reply.
type ReplySource interface {
	Reply(ctx context.Context, query string) (string, error)
}

// Synthesizer is the interface for the text-to-speech module. The returned
// audio is LINEAR16 PCM at the synthesizer's sample rate.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	SampleRate() int
}

// FaceComparer compares a reference face image against a probe frame and
// reports the similarity score along with whether it clears the threshold.
type FaceComparer interface {
	Compare(ctx context.Context, reference, probe []byte) (float64, bool, error)
}

// FrameSource captures a single camera frame as JPEG bytes.
type FrameSource interface {
	Capture(ctx context.Context) ([]byte, error)
}
