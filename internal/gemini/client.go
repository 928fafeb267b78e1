package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Alpha4Coders/DevTrack/internal"
)

// FallbackMessage is used whenever the model is unreachable or returns
// nothing usable.
const FallbackMessage = "Keep up the great work! Every day of consistent coding brings you closer to your goals. 🚀"

type MotivationStats struct {
	Streak        int
	LastActive    string
	LastStartTime string
	UserGoal      string
	ProjectName   string
}

// Motivator phrases a short motivational body from a compact stats payload.
// Implementations never fail: on any error they return a static fallback.
type Motivator interface {
	Motivation(ctx context.Context, stats MotivationStats) string
}

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  internal.Logger
}

func NewClient(baseURL, apiKey string, logger internal.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   "gemini-2.0-flash",
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Motivation(ctx context.Context, stats MotivationStats) string {
	prompt := buildPrompt(stats)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return FallbackMessage
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		c.logger.Errorf("gemini: failed to build request: %v", err)
		return FallbackMessage
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Errorf("gemini: request failed: %v", err)
		return FallbackMessage
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Errorf("gemini: api returned %d", resp.StatusCode)
		return FallbackMessage
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Errorf("gemini: failed to decode response: %v", err)
		return FallbackMessage
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return FallbackMessage
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return FallbackMessage
	}
	return text
}

func buildPrompt(stats MotivationStats) string {
	prompt := fmt.Sprintf(`You are a coding mentor inside a developer consistency tracker.
Generate a short (2-3 sentences) motivational message for this developer:
- Current streak: %d days
- Last active: %s
- Goal: %s`, stats.Streak, orUnknown(stats.LastActive), orUnknown(stats.UserGoal))
	if stats.ProjectName != "" {
		prompt += fmt.Sprintf("\n- Dormant project worth reviving: %s", stats.ProjectName)
	}
	prompt += "\nMake it personal, encouraging, and specific to their progress. Keep it under 100 words."
	return prompt
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

var _ Motivator = (*Client)(nil)
