package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/kirtilabs/kirti/interfaces"
)

// Client is the speech-to-text client backed by Google Cloud Speech.
type Client struct {
	speechClient *speech.Client
	language     string
	sampleRate   int
}

// NewClient creates a new Google Cloud Speech client. It relies on
// Application Default Credentials for authentication.
func NewClient(ctx context.Context, language string, sampleRate int) (*Client, error) {
	speechClient, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &Client{speechClient: speechClient, language: language, sampleRate: sampleRate}, nil
}

// Close cleans up the speech client connection.
func (c *Client) Close() {
	if c.speechClient != nil {
		_ = c.speechClient.Close()
	}
}

// Transcribe recognizes one captured utterance of LINEAR16 PCM and returns
// the lowercased best transcript. A recognition miss is reported as
// interfaces.ErrNoSpeech.
func (c *Client) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", interfaces.ErrNoSpeech
	}

	resp, err := c.speechClient.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(c.sampleRate),
			LanguageCode:    c.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		return "", fmt.Errorf("could not recognize speech: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript)
		}
	}

	text := strings.ToLower(strings.TrimSpace(transcript.String()))
	if text == "" {
		return "", interfaces.ErrNoSpeech
	}
	return text, nil
}
