package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClassifier sends an image to a remote inference endpoint and decodes
// its label list.
type HTTPClassifier struct {
	url   string
	httpc *http.Client
}

// NewHTTPClassifier builds a classifier client for the given endpoint.
func NewHTTPClassifier(url string) *HTTPClassifier {
	return &HTTPClassifier{
		url:   url,
		httpc: &http.Client{Timeout: 15 * time.Second},
	}
}

// Classify POSTs the raw image bytes and expects a JSON array of
// {"label","confidence"} objects.
func (c *HTTPClassifier) Classify(ctx context.Context, image []byte) ([]Label, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier: status %s, body %s", resp.Status, string(msg))
	}

	var labels []Label
	if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
		return nil, fmt.Errorf("classifier: decode: %w", err)
	}
	return labels, nil
}
