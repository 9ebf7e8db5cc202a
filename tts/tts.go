package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// Client is the text-to-speech client backed by Google Cloud TTS.
type Client struct {
	ttsClient  *texttospeech.Client
	language   string
	voice      string
	sampleRate int
}

// NewClient creates a new Google Cloud Text-to-Speech client. It relies on
// Application Default Credentials for authentication.
func NewClient(ctx context.Context, language, voice string, sampleRate int) (*Client, error) {
	ttsClient, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &Client{ttsClient: ttsClient, language: language, voice: voice, sampleRate: sampleRate}, nil
}

// Close cleans up the client connection.
func (c *Client) Close() {
	if c.ttsClient != nil {
		_ = c.ttsClient.Close()
	}
}

// SampleRate returns the synthesis output sample rate.
func (c *Client) SampleRate() int { return c.sampleRate }

// Synthesize converts text to LINEAR16 audio. The returned bytes are a WAV
// payload; the audio package strips the RIFF header before playback.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.ttsClient.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: c.language,
			Name:         c.voice,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: int32(c.sampleRate),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}
