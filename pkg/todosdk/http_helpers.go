package todosdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// send performs one HTTP request. in is JSON encoded when non-nil; bearer is
// attached when non-empty.
func (c *Client) send(ctx context.Context, method, path string, in any, bearer string) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, unknownError(fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, unknownError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, unknownError(fmt.Errorf("send request: %w", err))
	}
	return resp, nil
}

// readResponse consumes resp. Any 2xx decodes into out (when out is non-nil
// and there is a body); anything else becomes an *APIError.
func readResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return unknownError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp, body)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return unknownError(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// call is send followed by readResponse, for requests that never refresh.
func (c *Client) call(ctx context.Context, method, path string, in, out any, bearer string) error {
	resp, err := c.send(ctx, method, path, in, bearer)
	if err != nil {
		return err
	}
	return readResponse(resp, out)
}
