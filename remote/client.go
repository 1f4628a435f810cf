/*
Package remote provides BatchActions implementations.

PURPOSE:
  The payslip computation itself lives in a remote payroll service; this
  package supplies the two ways the engine reaches it:

  - Client: HTTP JSON client against a real service
  - Local:  in-process simulator so the demo server and tests run
            without any external dependency (local.go)

PROTOCOL (Client):
  POST {base}/batches/{id}/generate            -> {"generatedCount": n, "message": "..."}
  POST {base}/batches/{id}/verify
  POST {base}/batches/{id}/pay      {"actorId": "..."}
  POST {base}/batches/{id}/post     {"actorId": "...", "journalRef": "..."}
  POST {base}/batches/{id}/rollback

  Non-2xx responses surface the remote "message" field verbatim when the
  body carries one, generic fallback text otherwise. No automatic retry;
  timeouts belong to the injected http.Client.
*/
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HTTP CLIENT
// =============================================================================

// Client calls a remote payroll action service over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with a 30s request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ payroll.BatchActions = (*Client)(nil)

// actionResponse is the wire shape of every action endpoint's reply.
type actionResponse struct {
	GeneratedCount int    `json:"generatedCount"`
	Message        string `json:"message"`
}

func (c *Client) Generate(ctx context.Context, id payroll.BatchID) (payroll.ActionResult, error) {
	return c.post(ctx, id, payroll.ActionGenerate, nil)
}

func (c *Client) Verify(ctx context.Context, id payroll.BatchID) (payroll.ActionResult, error) {
	return c.post(ctx, id, payroll.ActionVerify, nil)
}

func (c *Client) Pay(ctx context.Context, id payroll.BatchID, actorID string) (payroll.ActionResult, error) {
	return c.post(ctx, id, payroll.ActionPay, map[string]string{"actorId": actorID})
}

func (c *Client) Post(ctx context.Context, id payroll.BatchID, actorID, journalRef string) (payroll.ActionResult, error) {
	return c.post(ctx, id, payroll.ActionPost, map[string]string{
		"actorId":    actorID,
		"journalRef": journalRef,
	})
}

func (c *Client) Rollback(ctx context.Context, id payroll.BatchID) (payroll.ActionResult, error) {
	return c.post(ctx, id, payroll.ActionRollback, nil)
}

func (c *Client) post(ctx context.Context, id payroll.BatchID, action payroll.Action, body map[string]string) (payroll.ActionResult, error) {
	url := fmt.Sprintf("%s/batches/%s/%s", c.BaseURL, id, action)

	payload := []byte("{}")
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return payroll.ActionResult{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return payroll.ActionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return payroll.ActionResult{}, &payroll.RemoteActionError{
			BatchID: id,
			Action:  action,
			Message: err.Error(),
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	var decoded actionResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := decoded.Message
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("remote service returned status %d", resp.StatusCode)
		}
		return payroll.ActionResult{}, &payroll.RemoteActionError{
			BatchID: id,
			Action:  action,
			Message: msg,
		}
	}
	if decodeErr != nil {
		return payroll.ActionResult{}, &payroll.RemoteActionError{
			BatchID: id,
			Action:  action,
			Message: "malformed remote response",
			Cause:   decodeErr,
		}
	}

	return payroll.ActionResult{
		GeneratedCount: decoded.GeneratedCount,
		Message:        decoded.Message,
	}, nil
}
