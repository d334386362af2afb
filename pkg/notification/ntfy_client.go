package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultLinkBase turns client routes into links that open the web client
const DefaultLinkBase = "https://discord.com"

// NtfyClient publishes notifications to an ntfy server
type NtfyClient struct {
	server   string
	topic    string
	linkBase string
	client   *http.Client
}

// NewNtfyClient creates a client for the given server and topic
func NewNtfyClient(server, topic string) *NtfyClient {
	return &NtfyClient{
		server:   strings.TrimSuffix(server, "/"),
		topic:    topic,
		linkBase: DefaultLinkBase,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SetLinkBase changes the prefix used to turn message routes into click URLs
func (c *NtfyClient) SetLinkBase(base string) {
	c.linkBase = strings.TrimSuffix(base, "/")
}

type ntfyMessage struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
	Click    string   `json:"click,omitempty"`
	Icon     string   `json:"icon,omitempty"`
	Priority int      `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Send publishes the payload using ntfy's JSON API
func (c *NtfyClient) Send(p Payload) error {
	msg := ntfyMessage{
		Topic:   c.topic,
		Title:   p.Header,
		Message: p.Body,
		Icon:    p.AvatarURL,
		Tags:    []string{"speech_balloon"},
	}
	if p.Link != "" {
		msg.Click = c.linkBase + p.Link
	}
	if p.Urgent {
		msg.Priority = 4
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode ntfy message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.server+"/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
