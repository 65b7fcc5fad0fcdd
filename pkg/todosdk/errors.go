package todosdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the single error shape returned by the SDK. Transport and
// decode failures carry StatusCode 0, the message "Unknown error" and the
// cause in Err.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "%d ", e.StatusCode)
	}
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether the server answered 401.
func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

func unknownError(err error) *APIError {
	return &APIError{Message: "Unknown error", Err: err}
}

// parseErrorResponse turns a non-2xx response into an APIError, using the
// server's {"error": ...} message when present.
func parseErrorResponse(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
	} else if len(body) > 0 {
		apiErr.Details = strings.TrimSpace(string(body))
	}

	if apiErr.Message == "" {
		apiErr.Message = "Unknown error"
	}
	return apiErr
}
