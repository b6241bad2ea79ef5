package rules

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/comigor/tenant-console/internal/logger"
)

// StatusError is returned when the endpoint answers outside the 2xx range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// HTTPCreator posts prompts to the rule-creation REST endpoint.
type HTTPCreator struct {
	url    string
	client *http.Client
}

// NewHTTPCreator creates a new HTTPCreator
func NewHTTPCreator(url string, client *http.Client) *HTTPCreator {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPCreator{url: url, client: client}
}

// Create sends one request and decodes the reply. It does not retry.
func (c *HTTPCreator) Create(ctx context.Context, r Request) (Reply, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return Reply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Reply{}, err
	}
	defer resp.Body.Close()

	logger.L.Debug("rule endpoint responded", "status", resp.StatusCode, "tenant_id", r.TenantID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Reply{}, &StatusError{StatusCode: resp.StatusCode}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, err
	}
	reply, err := decodeReply(payload)
	if err != nil {
		return Reply{}, fmt.Errorf("decode rule reply: %w", err)
	}
	return reply, nil
}
