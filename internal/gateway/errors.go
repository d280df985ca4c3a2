package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx reply from the gateway. Handlers propagate Status and
// Message verbatim to their own callers; no status code is invented.
type Error struct {
	Status    int
	ErrorCode string
	Message   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("gateway: %d %s: %s", e.Status, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("gateway: %d: %s", e.Status, e.Message)
}

// decodeError maps the gateway's {status, message, errorCode} error document
// onto *Error, falling back to the HTTP status text for undecodable bodies.
func decodeError(status int, body []byte) *Error {
	var doc struct {
		Status    int    `json:"status"`
		ErrorCode string `json:"errorCode"`
		Message   string `json:"message"`
	}
	gerr := &Error{Status: status, Message: http.StatusText(status)}
	if err := json.Unmarshal(body, &doc); err == nil {
		if strings.TrimSpace(doc.Message) != "" {
			gerr.Message = doc.Message
		}
		gerr.ErrorCode = doc.ErrorCode
	}
	return gerr
}
