// Package errmsg maps technical errors to user-friendly messages with codes.
//
// # Error Codes Reference
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Bad status: the data file could not be retrieved
//	         Action: Check that result.csv has been published
//	         Patterns: "http error! status"
//
//	SRC002 - Connection refused: the data host is unreachable
//	         Action: Please try again in a few moments
//	         Patterns: "connection refused"
//
//	SRC003 - Too large: the data file exceeds the configured size limit
//	         Action: Raise SOURCE_MAX_BYTES or trim the file
//	         Patterns: "csv too large"
//
//	SRC004 - Timeout: the data file took too long to arrive
//	         Action: Please try again later
//	         Patterns: "deadline exceeded", "timeout"
//
//	SRC005 - Missing file: the local data file does not exist
//	         Action: Check SOURCE_LOCATION
//	         Patterns: "no such file"
//
// # View Errors (VIEW001-VIEW099)
//
//	VIEW001 - Not found: the page session expired or never existed
//	VIEW002 - Not ready: data has not loaded yet
//	VIEW003 - Busy: too many open views
//	VIEW004 - Unmounted: the page session was closed
//	VIEW005 - Unknown row: the toggled row does not exist
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the server log for the original
// error; every handler error is logged with its request_id.
//
// Patterns are matched case-insensitively with strings.Contains, first match
// wins, so specific patterns come before general ones.
package errmsg

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Source errors
	{
		pattern: "http error! status",
		msg: UserMessage{
			Message: "The data file could not be retrieved",
			Action:  "Check that result.csv has been published",
			Code:    "SRC001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The data host is unreachable",
			Action:  "Please try again in a few moments",
			Code:    "SRC002",
		},
	},
	{
		pattern: "csv too large",
		msg: UserMessage{
			Message: "The data file exceeds the size limit",
			Action:  "Raise SOURCE_MAX_BYTES or trim the file",
			Code:    "SRC003",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "The data file took too long to arrive",
			Action:  "Please try again later",
			Code:    "SRC004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The data file took too long to arrive",
			Action:  "Please try again later",
			Code:    "SRC004",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The data file does not exist",
			Action:  "Check SOURCE_LOCATION",
			Code:    "SRC005",
		},
	},

	// View errors
	{
		pattern: "view not found",
		msg: UserMessage{
			Message: "This page session has expired",
			Action:  "Reload the page",
			Code:    "VIEW001",
		},
	},
	{
		pattern: "view not ready",
		msg: UserMessage{
			Message: "Data is still loading",
			Action:  "Wait for the table to appear",
			Code:    "VIEW002",
		},
	},
	{
		pattern: "too many open views",
		msg: UserMessage{
			Message: "The server is busy",
			Action:  "Please wait a moment and try again",
			Code:    "VIEW003",
		},
	},
	{
		pattern: "view unmounted",
		msg: UserMessage{
			Message: "This page session was closed",
			Action:  "Reload the page",
			Code:    "VIEW004",
		},
	},
	{
		pattern: "unknown row",
		msg: UserMessage{
			Message: "That row no longer exists",
			Action:  "Reload the page",
			Code:    "VIEW005",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
