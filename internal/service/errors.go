package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TransportError means the analytics API could not be reached
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("epi: %s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError means no response arrived within the request timeout
type TimeoutError struct {
	Op      string
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("epi: %s: %s", e.Op, e.message())
}

func (e *TimeoutError) message() string {
	if e.Timeout <= 0 {
		return "request deadline exceeded"
	}
	return fmt.Sprintf("timeout of %s exceeded", e.Timeout)
}

// HTTPError is a non-2xx response. Message comes from the body's detail
// field when the server sent one, else from the status text.
type HTTPError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("epi: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// SchemaError means the response decoded but lacked a required field
type SchemaError struct {
	Op    string
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("epi: %s: invalid response format: missing %q", e.Op, e.Field)
}

// UserMessage extracts the human-readable part of a client error
func UserMessage(err error) string {
	var (
		httpErr    *HTTPError
		timeoutErr *TimeoutError
		transErr   *TransportError
		schemaErr  *SchemaError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &httpErr):
		return httpErr.Message
	case errors.As(err, &timeoutErr):
		return timeoutErr.message()
	case errors.As(err, &schemaErr):
		return fmt.Sprintf("Invalid response format from %s endpoint", schemaErr.Op)
	case errors.As(err, &transErr):
		return transErr.Err.Error()
	default:
		return err.Error()
	}
}

// errorBody mirrors the analytics API error payload. FastAPI sends detail
// either as a string or as a list of validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func newHTTPError(op string, status int, body []byte) *HTTPError {
	msg := detailMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}
	return &HTTPError{Op: op, StatusCode: status, Message: msg}
}

func detailMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}

	var list []validationDetail
	if err := json.Unmarshal(eb.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, d := range list {
			if d.Msg == "" {
				continue
			}
			if field := locField(d.Loc); field != "" {
				msgs = append(msgs, field+": "+d.Msg)
			} else {
				msgs = append(msgs, d.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	if string(eb.Detail) == "null" {
		return ""
	}
	return string(eb.Detail)
}

// locField picks the parameter name out of a FastAPI location like ["query", "state_ut"]
func locField(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}
