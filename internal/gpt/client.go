package gpt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	model          = "gpt-4o-mini"
)

// FallbackReply is returned whenever the backend cannot produce a reply.
const FallbackReply = "Sorry, I couldn't process that."

// Client talks to the OpenAI chat completions API
type Client struct {
	apiKey  string
	baseURL string
	client  *resty.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new generative backend client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client: resty.New().
			SetTimeout(60 * time.Second).
			SetHeader("User-Agent", "twitta/1.0"),
	}
}

// Generate produces reply text for the given prompt. It never fails:
// any backend problem is logged and surfaces as FallbackReply so the
// caller always has something to work with.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	body := chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.baseURL + "/chat/completions")

	if err != nil {
		logrus.Errorf("Error getting response from OpenAI: %v", err)
		return FallbackReply
	}

	if resp.StatusCode() != 200 {
		logrus.Errorf("OpenAI API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
		return FallbackReply
	}

	var chatResp chatResponse
	if err := json.Unmarshal(resp.Body(), &chatResp); err != nil {
		logrus.Errorf("Failed to parse OpenAI response: %v", err)
		return FallbackReply
	}

	if len(chatResp.Choices) == 0 {
		logrus.Error("No response received from OpenAI.")
		return FallbackReply
	}

	return chatResp.Choices[0].Message.Content
}
