// Package httpapi posts session summaries and interaction events to the
// external session API over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hypermage/shardcore/internal/report"
	"github.com/hypermage/shardcore/internal/session"
)

const defaultTimeout = 5 * time.Second

// Client talks to the session API. Delivery is fire-and-forget with a short
// timeout so disconnect handling never stalls on a slow backend.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a session API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// SendSummary posts a session summary to /session-summary.
func (c *Client) SendSummary(ctx context.Context, summary session.Summary) bool {
	if err := c.post(ctx, "/session-summary", report.NewSummaryPayload(summary)); err != nil {
		log.Printf("httpapi: send session summary %s: %v", summary.SessionID, err)
		return false
	}
	return true
}

// SendEvents posts each interaction event to /interaction-events. A failed
// event is logged and does not stop the rest of the batch.
func (c *Client) SendEvents(ctx context.Context, events []session.Event) bool {
	ok := true
	for _, event := range events {
		if err := c.post(ctx, "/interaction-events", report.NewEventPayload(event)); err != nil {
			log.Printf("httpapi: send interaction event %s: %v", event.ID, err)
			ok = false
		}
	}
	return ok
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
