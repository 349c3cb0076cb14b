package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type client struct {
	base string
	key  string
	http *http.Client
}

func newClient(base, key string) *client {
	// no client timeout: a poll call lasts as long as the relay's budget
	return &client{base: strings.TrimRight(base, "/"), key: key, http: &http.Client{}}
}

// normalizeTarget adds a scheme when missing and rejects obviously bad input.
func normalizeTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	return raw, nil
}

func (c *client) poll(ctx context.Context, target string) (int, []byte, error) {
	body, err := json.Marshal(map[string]string{"webhook_url": target})
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/poll-webhook/", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) history(ctx context.Context, limit int) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/polls?limit=%d", c.base, limit), nil)
	if err != nil {
		return 0, nil, err
	}
	return c.do(req)
}

func (c *client) do(req *http.Request) (int, []byte, error) {
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("contact relay: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read relay response: %w", err)
	}
	return resp.StatusCode, b, nil
}

// pretty re-indents JSON bodies and leaves anything else alone.
func pretty(b []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return string(b)
	}
	return out.String()
}
