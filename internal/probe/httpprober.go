package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/pollrelay/internal/domain"
)

const (
	defaultMaxBodyBytes        = 10 << 20
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// ErrBodyTooLarge marks an attempt whose response body did not fit under the
// cap. Partial bodies are never relayed.
var ErrBodyTooLarge = errors.New("response body too large")

type HTTPProber struct {
	Client       *http.Client
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

// NewHTTPProber returns a prober with a pooled transport shared by every
// poll sequence. The per-attempt timeout is applied through the request
// context rather than http.Client.Timeout.
func NewHTTPProber(timeout time.Duration, maxBodyBytes int64, userAgent string) *HTTPProber {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &HTTPProber{
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		Timeout:      timeout,
		MaxBodyBytes: maxBodyBytes,
		UserAgent:    userAgent,
	}
}

func (h *HTTPProber) Probe(ctx context.Context, target string) domain.AttemptOutcome {
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failure(start, fmt.Errorf("build request: %w", err))
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return failure(start, err)
	}
	defer resp.Body.Close()

	// one byte past the cap tells an oversized body apart from one that fits
	body, err := io.ReadAll(io.LimitReader(resp.Body, h.MaxBodyBytes+1))
	if err != nil {
		return failure(start, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > h.MaxBodyBytes {
		return failure(start, fmt.Errorf("%w: body exceeds %d bytes", ErrBodyTooLarge, h.MaxBodyBytes))
	}

	return domain.AttemptOutcome{
		Kind:        domain.OutcomeResponse,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Latency:     time.Since(start),
	}
}

// Close drops idle pooled connections.
func (h *HTTPProber) Close() {
	if h == nil || h.Client == nil {
		return
	}
	h.Client.CloseIdleConnections()
}

func failure(start time.Time, err error) domain.AttemptOutcome {
	return domain.AttemptOutcome{
		Kind:    domain.OutcomeTransportFailure,
		Err:     err,
		Latency: time.Since(start),
	}
}
