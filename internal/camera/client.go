// Package camera captures evidence stills from the ESP32 gate cameras.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrExhausted is returned when every capture attempt in the retry budget
// failed. The caller can distinguish "never tried" (config error) from
// "transient" from "permanent" by the wrapped cause.
var ErrExhausted = errors.New("capture attempts exhausted")

const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
	requestTimeout  = 4 * time.Second
)

// Client fetches a still image from a camera's /capture endpoint and saves
// it under the capture directory. Retries are bounded with a fixed delay;
// failures past the budget surface as ErrExhausted.
type Client struct {
	httpClient *http.Client
	captureDir string
	attempts   int
	delay      time.Duration
	logger     *log.Logger
}

func New(captureDir string, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		captureDir: captureDir,
		attempts:   defaultAttempts,
		delay:      defaultDelay,
		logger:     logger,
	}
}

// Capture GETs http://<addr>/capture and writes the body to
// <captureDir>/<label>_<timestamp>_<id>.jpg, returning the file path.
func (c *Client) Capture(ctx context.Context, addr, label string) (string, error) {
	if addr == "" {
		return "", fmt.Errorf("%w: no camera address configured", ErrExhausted)
	}

	if err := os.MkdirAll(c.captureDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir capture dir: %w", err)
	}

	url := fmt.Sprintf("http://%s/capture", addr)
	filename := fmt.Sprintf("%s_%s_%s.jpg",
		label,
		time.Now().UTC().Format("20060102_150405"),
		uuid.NewString()[:8],
	)
	path := filepath.Join(c.captureDir, filename)

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrExhausted, ctx.Err())
			}
		}

		if err := c.fetch(ctx, url, path); err != nil {
			lastErr = err
			c.logger.Printf("capture attempt %d/%d failed: %v", attempt, c.attempts, err)
			continue
		}
		return path, nil
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrExhausted, c.attempts, lastErr)
}

func (c *Client) fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("camera returned %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write capture file: %w", err)
	}
	return nil
}
