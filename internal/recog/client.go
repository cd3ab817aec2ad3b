// Package recog is the client for the external plate-recognition service.
// The detection/OCR pipeline itself is opaque to this server; only the
// documented contract is consumed.
package recog

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"
)

// Status codes reported for a recognition attempt. Anything other than
// StatusSuccess means "plate unresolved", never an abort.
type Status string

const (
	StatusSuccess     Status = "Success"
	StatusNotReady    Status = "NotReady"
	StatusReadError   Status = "ReadError"
	StatusNoDetection Status = "NoDetection"
	StatusFailed      Status = "RecognitionFailed"
)

const (
	requestTimeout = 10 * time.Second
	readinessTTL   = 30 * time.Second
)

// result mirrors the recognizer's response: the best detection first,
// empty when nothing was found in the frame.
type result struct {
	Plate      string  `json:"plate"`
	Confidence float64 `json:"confidence"`
}

type response struct {
	Results []result `json:"results"`
}

// Client talks to the recognition service. Readiness is probed lazily and
// cached; while the service is down every attempt reports StatusNotReady so
// admission degrades to unresolved plates instead of crashing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu        sync.Mutex
	ready     bool
	lastProbe time.Time
}

func New(baseURL string, logger *log.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Ready reports whether the recognition service answered its health probe
// recently. A BaseURL-less client is permanently not ready.
func (c *Client) Ready(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}

	c.mu.Lock()
	if time.Since(c.lastProbe) < readinessTTL {
		ready := c.ready
		c.mu.Unlock()
		return ready
	}
	c.mu.Unlock()

	ready := c.probe(ctx)

	c.mu.Lock()
	c.ready = ready
	c.lastProbe = time.Now()
	c.mu.Unlock()

	return ready
}

func (c *Client) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("recognizer health probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Recognize posts the captured image and returns the best plate text.
func (c *Client) Recognize(ctx context.Context, imagePath string) (string, Status) {
	if !c.Ready(ctx) {
		return "", StatusNotReady
	}

	img, err := os.ReadFile(imagePath)
	if err != nil {
		c.logger.Printf("read capture %s: %v", imagePath, err)
		return "", StatusReadError
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/recognize", bytes.NewReader(img))
	if err != nil {
		return "", StatusFailed
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("recognize request failed: %v", err)
		return "", StatusFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", StatusFailed
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Printf("recognize decode failed: %v", err)
		return "", StatusFailed
	}

	if len(body.Results) == 0 || body.Results[0].Plate == "" {
		return "", StatusNoDetection
	}
	return body.Results[0].Plate, StatusSuccess
}
