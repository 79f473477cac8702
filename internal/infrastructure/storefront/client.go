// Package storefront delivers document sync notifications to the external
// storefront. Delivery is best-effort: the documents that triggered a sync
// are already committed and a failed push only schedules a retry.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client pushes a committed document to the storefront.
type Client interface {
	SyncDocument(ctx context.Context, documentID int64, documentNumber string) error
}

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a storefront HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type syncRequest struct {
	DocumentID     int64  `json:"documentId"`
	DocumentNumber string `json:"documentNumber"`
}

// SyncDocument implements Client.
func (c *HTTPClient) SyncDocument(ctx context.Context, documentID int64, documentNumber string) error {
	body, err := json.Marshal(syncRequest{DocumentID: documentID, DocumentNumber: documentNumber})
	if err != nil {
		return fmt.Errorf("marshal sync request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/sync/documents", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push document %s: %w", documentNumber, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("push document %s: storefront returned %d", documentNumber, resp.StatusCode)
	}
	return nil
}
