package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// briefAnswerSuffix keeps spoken replies short enough to sit through.
const briefAnswerSuffix = "\n\nPlease answer briefly in 1-2 lines."

const defaultTimeout = 15 * time.Second

// Client is the generative reply source backed by the Gemini API.
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewClient creates a Gemini client for the given model name.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{
		client:  c,
		model:   c.GenerativeModel(model),
		timeout: defaultTimeout,
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}

// Reply sends the query and returns the generated text. Callers treat any
// error as "use the apology line" rather than propagating it.
func (c *Client) Reply(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(query+briefAnswerSuffix))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	var reply strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				reply.WriteString(string(text))
			}
		}
		break // first candidate only
	}

	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", errors.New("gemini returned an empty completion")
	}
	return text, nil
}
