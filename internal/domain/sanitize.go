package domain

import (
	"errors"
	"regexp"
	"strings"
)

// Fixed user-facing messages. Raw transport or framework error text must
// never reach the UI; every error shown to the user goes through UserMessage.
const (
	MsgUnreachable = "Unable to reach the server. Please check your connection and try again."
	MsgNotFound    = "The requested item was not found."
	MsgFallback    = "Something went wrong. Please try again."
)

// leadingStatusError matches strings like "404 Not Found error".
var leadingStatusError = regexp.MustCompile(`(?i)^\d+\s+\w+\s+error`)

// technicalFragments is the denylist of substrings that mark a message as a
// technical/transport leak. Any match forces the fallback.
var technicalFragments = []string{
	"http failure",
	"unknown error",
	"failure response",
	"status code",
	"network error",
}

func looksTechnical(msg string) bool {
	lower := strings.ToLower(msg)
	for _, frag := range technicalFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return leadingStatusError.MatchString(msg)
}

// UserMessage resolves err to a safe, user-facing message. Priority order:
// unreachable server, 404, a clean structured backend message, then the
// caller-supplied fallback. Empty fallback defaults to MsgFallback.
func UserMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = MsgFallback
	}
	if err == nil {
		return fallback
	}

	var unreachable *ErrUnreachable
	if errors.As(err, &unreachable) {
		return MsgUnreachable
	}

	var notFound *ErrNotFound
	if errors.As(err, &notFound) {
		return MsgNotFound
	}
	var status *ErrStatus
	if errors.As(err, &status) && status.Status == 404 {
		return MsgNotFound
	}

	if msg, ok := backendMessage(err); ok {
		return msg
	}

	return fallback
}

// backendMessage extracts a displayable message from structured or
// client-originated errors, rejecting anything on the denylist.
func backendMessage(err error) (string, bool) {
	var candidate string

	var apiErr *APIError
	var unauthorized *ErrUnauthorized
	var validation *ErrValidation
	switch {
	case errors.As(err, &apiErr):
		candidate = apiErr.Message
	case errors.As(err, &unauthorized):
		candidate = unauthorized.Message
	case errors.As(err, &validation):
		candidate = validation.Message
	default:
		return "", false
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" || looksTechnical(candidate) {
		return "", false
	}
	return candidate, true
}
