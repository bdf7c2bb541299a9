// Package uxerror turns errors from the backend, the push channel and the
// dashboard into short operator-facing messages with recovery hints.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"rfid-console/internal/adapter/tui/theme"
	"rfid-console/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string
	Message string
	Hints   []string
	Raw     string
}

// Short is the one-line form used in the status bar.
func (fe FriendlyError) Short() string {
	if fe.Message == "" {
		return fe.Title
	}
	return fe.Title + ": " + fe.Message
}

// Render formats the error with its hints on separate lines.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Local rejections carry their own detail.
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrBusy) },
		produce: func(err error) FriendlyError {
			return FriendlyError{Title: "Still Working", Message: "That request is already in progress.", Raw: err.Error()}
		},
	},
	{
		match: func(err error) bool {
			return errors.Is(err, domain.ErrEmptyCart) || errors.Is(err, domain.ErrNoProduct) ||
				errors.Is(err, domain.ErrInsufficientStock)
		},
		produce: func(err error) FriendlyError {
			return FriendlyError{Title: "Sale", Message: detail(err), Raw: err.Error()}
		},
	},
	{
		match: func(err error) bool {
			var apiErr *domain.APIError
			return errors.As(err, &apiErr) && apiErr.Message != ""
		},
		produce: func(err error) FriendlyError {
			return FriendlyError{Title: "Rejected by Backend", Message: domain.MessageOf(err, ""), Raw: err.Error()}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrInvalidInput) },
		produce: func(err error) FriendlyError {
			return FriendlyError{Title: "Invalid Input", Message: detail(err), Raw: err.Error()}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrAuthInvalid) },
		produce: constantError("Authentication Failed", "The backend rejected the API token.",
			[]string{"Check backend.auth_token in config", "Re-encrypt the token if RFIDCONSOLE_CONFIG_KEY changed"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrRateLimit) },
		produce: constantError("Rate Limited", "Too many requests were sent to the backend.",
			[]string{"Wait a moment before retrying", "Raise backend.rate_limit in config"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrTimeout) },
		produce: constantError("Request Timed Out", "The backend took too long to answer.",
			[]string{"Check the backend is healthy", "Increase backend.timeout in config"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrUnavailable) },
		produce: constantError("Backend Unavailable", "The inventory backend could not be reached.",
			[]string{"Check the backend is running", "Verify backend.base_url in config"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrConfigLoad) || errors.Is(err, domain.ErrDecryption) },
		produce: constantError("Configuration Error", "The configuration could not be loaded.",
			[]string{"Run 'rfid-console doctor' for details", "Check RFIDCONSOLE_CONFIG_KEY for encrypted values"}),
	},

	// External errors that only show up as text.
	{
		match: containsAny("connection refused", "dial tcp", "no such host", "push websocket dial"),
		produce: constantError("Connection Failed", "Could not reach the server.",
			[]string{"Check the backend is running", "Verify push.url and backend.base_url in config", "Check if a firewall is blocking the connection"}),
	},
	{
		match: containsAny("deadline exceeded", "timeout"),
		produce: constantError("Request Timed Out", "The request took too long to complete.",
			[]string{"Check your network connection", "Increase the timeout in config"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}
	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}
	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Set logger.level to debug and check the log file"},
		Raw:     err.Error(),
	}
}

// detail returns the DomainError detail, or the whole message.
func detail(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) && de.Detail != "" {
		return de.Detail
	}
	return err.Error()
}

func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{Title: title, Message: message, Hints: hints, Raw: err.Error()}
	}
}
