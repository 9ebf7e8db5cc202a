package audio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const playbackFrames = 1024

// Playback plays LINEAR16 PCM through the default output device. It assumes
// PortAudio has been initialized by the Recorder (or PlaybackStandalone).
type Playback struct {
	mu      sync.Mutex
	playing bool
}

// NewPlayback creates a playback instance.
func NewPlayback() *Playback {
	return &Playback{}
}

// Play blocks until the audio has been played. data may carry a RIFF/WAV
// header, which is stripped.
func (p *Playback) Play(data []byte, sampleRate int) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return fmt.Errorf("already playing")
	}
	p.playing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	}()

	pcm := StripWAVHeader(data)
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	buffer := make([]int16, playbackFrames)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), playbackFrames, buffer)
	if err != nil {
		return fmt.Errorf("could not open output stream: %w", err)
	}
	defer func() { _ = stream.Close() }()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("could not start output stream: %w", err)
	}
	defer func() { _ = stream.Stop() }()

	for offset := 0; offset < len(samples); offset += playbackFrames {
		end := offset + playbackFrames
		if end > len(samples) {
			end = len(samples)
		}
		n := copy(buffer, samples[offset:end])
		for i := n; i < playbackFrames; i++ {
			buffer[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("could not write to output stream: %w", err)
		}
	}
	return nil
}

// StripWAVHeader removes a RIFF header when present, returning the raw PCM
// payload.
func StripWAVHeader(data []byte) []byte {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return data
	}
	// Walk chunks to find "data"; headers are not always exactly 44 bytes.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		if chunkID == "data" {
			start := offset + 8
			end := start + chunkSize
			if end > len(data) {
				end = len(data)
			}
			return data[start:end]
		}
		offset += 8 + chunkSize
	}
	return data
}
