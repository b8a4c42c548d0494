package libre

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// TransportError reports that a request could not be completed on the wire.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that does not have the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is an HTTP error status returned by the service.
type APIError struct {
	Op         string
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: translation API error: %s: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: translation API error: %s", e.Op, e.Status)
}

// LibreTranslate reports failures as {"error": "..."}.
type errorBody struct {
	Error string `json:"error"`
}

func newAPIError(op string, resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status}
	if apiErr.Status == "" {
		apiErr.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		apiErr.Message = eb.Error
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		apiErr.Message = text
	}
	return apiErr
}
