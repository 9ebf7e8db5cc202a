// Package audio handles microphone capture and speaker playback through
// PortAudio, with WebRTC voice activity detection segmenting utterances.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/kirtilabs/kirti/interfaces"
)

const (
	// frameMillis is the VAD frame length; WebRTC VAD accepts 10, 20 or 30ms.
	frameMillis = 30

	// vadMode is the VAD aggressiveness (0-3).
	vadMode = 2

	defaultSilenceTail  = 600 * time.Millisecond
	defaultListenWindow = 8 * time.Second
	defaultMaxUtterance = 15 * time.Second
)

// Recorder captures single utterances from the default microphone. Listen
// waits for speech to start, then records until a trailing stretch of
// silence.
type Recorder struct {
	sampleRate   int
	vad          *webrtcvad.VAD
	silenceTail  time.Duration
	listenWindow time.Duration
	maxUtterance time.Duration
}

// NewRecorder initializes PortAudio and the VAD. sampleRate must be one of
// 8000, 16000, 32000 or 48000 Hz.
func NewRecorder(sampleRate int) (*Recorder, error) {
	switch sampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("invalid sample rate %d for VAD", sampleRate)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	vad, err := webrtcvad.New()
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to create VAD: %w", err)
	}
	if err := vad.SetMode(vadMode); err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to set VAD mode: %w", err)
	}

	return &Recorder{
		sampleRate:   sampleRate,
		vad:          vad,
		silenceTail:  defaultSilenceTail,
		listenWindow: defaultListenWindow,
		maxUtterance: defaultMaxUtterance,
	}, nil
}

// Close releases PortAudio.
func (r *Recorder) Close() error {
	return portaudio.Terminate()
}

// Listen blocks until one utterance has been captured and returns it as
// LINEAR16 PCM. If no speech starts within the listen window it returns
// interfaces.ErrNoSpeech.
func (r *Recorder) Listen(ctx context.Context) ([]byte, error) {
	frameSize := r.sampleRate * frameMillis / 1000
	buffer := make([]int16, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.sampleRate), frameSize, buffer)
	if err != nil {
		return nil, fmt.Errorf("could not open input stream: %w", err)
	}
	defer func() { _ = stream.Close() }()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("could not start input stream: %w", err)
	}
	defer func() { _ = stream.Stop() }()

	var utterance bytes.Buffer
	voiced := false
	silentFrames := 0
	tailFrames := int(r.silenceTail / (frameMillis * time.Millisecond))
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("could not read from microphone: %w", err)
		}
		frame := int16ToBytes(buffer)

		active, err := r.vad.Process(r.sampleRate, frame)
		if err != nil {
			return nil, fmt.Errorf("VAD processing failed: %w", err)
		}

		switch {
		case active:
			voiced = true
			silentFrames = 0
			utterance.Write(frame)
		case voiced:
			silentFrames++
			utterance.Write(frame)
			if silentFrames >= tailFrames {
				return utterance.Bytes(), nil
			}
		default:
			if time.Since(start) > r.listenWindow {
				return nil, interfaces.ErrNoSpeech
			}
		}

		if voiced && time.Since(start) > r.maxUtterance {
			return utterance.Bytes(), nil
		}
	}
}

func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
