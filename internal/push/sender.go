package push

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Alpha4Coders/DevTrack/internal"
)

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Result classifies a single delivery attempt. ShouldRemove tells the token
// registry the provider no longer recognizes the token.
type Result struct {
	Success      bool   `json:"success"`
	MessageID    string `json:"messageId,omitempty"`
	Err          string `json:"error,omitempty"`
	ShouldRemove bool   `json:"-"`
}

// Sender makes exactly one outbound provider call per Send; retrying is the
// caller's decision on a later tick.
type Sender interface {
	Send(ctx context.Context, token string, n Notification, data map[string]string) Result
}

type Client struct {
	url        string
	serviceKey string
	clickLink  string
	http       *http.Client
	logger     internal.Logger
}

func NewClient(url, serviceKey, clickLink string, logger internal.Logger) *Client {
	return &Client{
		url:        url,
		serviceKey: serviceKey,
		clickLink:  clickLink,
		http:       &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type sendRequest struct {
	Message message `json:"message"`
}

type message struct {
	Token        string            `json:"token"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Webpush      *webpushConfig    `json:"webpush,omitempty"`
}

type webpushConfig struct {
	FCMOptions struct {
		Link string `json:"link,omitempty"`
	} `json:"fcm_options"`
}

type sendResponse struct {
	Name  string `json:"name"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Send(ctx context.Context, token string, n Notification, data map[string]string) Result {
	payload := map[string]string{"click_action": "OPEN_APP"}
	for k, v := range data {
		payload[k] = v
	}

	msg := message{Token: token, Notification: n, Data: payload}
	if c.clickLink != "" {
		wp := &webpushConfig{}
		wp.FCMOptions.Link = c.clickLink
		msg.Webpush = wp
	}

	body, err := json.Marshal(sendRequest{Message: msg})
	if err != nil {
		return Result{Err: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		c.logger.Errorf("push: failed to build request: %v", err)
		return Result{Err: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Errorf("push: delivery failed: %v", err)
		return Result{Err: err.Error()}
	}
	defer resp.Body.Close()

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && resp.StatusCode == http.StatusOK {
		c.logger.Errorf("push: failed to decode provider response: %v", err)
		return Result{Err: "malformed provider response"}
	}

	if resp.StatusCode == http.StatusOK {
		return Result{Success: true, MessageID: parsed.Name}
	}

	status := ""
	errMsg := "provider error"
	if parsed.Error != nil {
		status = parsed.Error.Status
		if parsed.Error.Message != "" {
			errMsg = parsed.Error.Message
		}
	}
	c.logger.Errorf("push: provider returned %d (%s)", resp.StatusCode, status)

	// UNREGISTERED and INVALID_ARGUMENT are the provider's ways of saying
	// the token is dead; the registry should drop it.
	if status == "UNREGISTERED" || status == "INVALID_ARGUMENT" || resp.StatusCode == http.StatusNotFound {
		return Result{Err: "invalid_token", ShouldRemove: true}
	}
	return Result{Err: errMsg}
}

var _ Sender = (*Client)(nil)
