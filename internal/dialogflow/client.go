package dialogflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const detectIntentPath = "/chatbot/detectIntentByText"

// Client talks to the chatbot server that fronts the Dialogflow CX agent.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type detectIntentRequest struct {
	Message string `json:"message"`
}

// DetectIntentByText sends one user utterance to the agent and returns its reply.
func (c *Client) DetectIntentByText(ctx context.Context, message string) (*DetectIntentResponse, error) {
	payload, err := json.Marshal(detectIntentRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+detectIntentPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detectIntent request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading detectIntent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result DetectIntentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}
	return &result, nil
}
