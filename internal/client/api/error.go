package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cybermorph/morphcli/internal/common"
)

// Error is the single normalized failure shape for all transport outcomes.
// StatusCode 0 means the request never reached the server (DNS/connection
// failure); callers therefore never need to distinguish "rejected" from
// "unreachable" in their own taxonomy.
type Error struct {
	StatusCode int
	Message    string
	RawBody    []byte
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api: %s", e.Message)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// Is maps transport failures onto the shared sentinels so callers can use
// errors.Is without inspecting status codes.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrUnavailable:
		return e.StatusCode == 0
	case common.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case common.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// IsStatus reports whether err is a transport Error with the given status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == statusCode
}

// newStatusError builds an Error from a non-success response. The message
// prefers the server's structured detail/message field and falls back to the
// generic status text.
func newStatusError(statusCode int, body []byte) *Error {
	message := http.StatusText(statusCode)

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			message = payload.Detail
		} else if payload.Message != "" {
			message = payload.Message
		}
	}

	return &Error{StatusCode: statusCode, Message: message, RawBody: body}
}

// newNetworkError builds the statusCode-0 failure for requests that produced
// no response at all.
func newNetworkError() *Error {
	return &Error{StatusCode: 0, Message: "network unavailable"}
}
