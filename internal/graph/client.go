// Package graph is the authenticated client for the device-management REST
// API. Every call is fail-fast: any transport error or non-success status is
// returned to the caller, which treats it as fatal to the run.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tenantmove/internal/model"
)

var errUnexpectedStatusCode = errors.New("unexpected response status code")

type Client struct {
	http          *http.Client
	baseURL       string
	authorization string
	log           zerolog.Logger
}

func NewClient(baseURL string, tok model.Token, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = model.GraphBaseURL
	}
	return &Client{
		http:          &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		authorization: tok.Authorization(),
		log:           log,
	}
}

// do issues a single request and decodes a 2xx JSON response into out when
// out is non-nil. There is no retry path.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("graph request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %w: %d, response: %s",
			method, path, errUnexpectedStatusCode, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}
