package core

// errors.go maps technical errors to user-friendly messages with stable
// codes users can quote to support staff.
//
// Error codes:
//
//	SES001 - File session not found or expired; re-upload required
//	UPL001 - Chunked upload session not found or expired
//	UPL002 - Upload incomplete; a chunk is missing
//	UPL003 - Total chunk count never declared
//	FILE001 - File too large
//	FILE002 - Malformed database file
//	FILE003 - Invalid filename
//	TBL001 - Table not found in the uploaded file
//	DL001  - Remote download failed
//	PRS001 - Too many concurrent parses
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//	ERR000 - Fallback for anything unmatched
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so more specific patterns come before general ones.

import (
	"errors"
	"strings"
)

// ErrDownloadFailure indicates a remote fetch returned a non-2xx status or
// failed at the transport level.
var ErrDownloadFailure = errors.New("download failed")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error substrings (case-insensitive) to user
// messages. Order matters: first match wins.
var errorPatterns = []errorPattern{
	{"upload session not found", UserMessage{
		Message: "Upload session not found or expired",
		Action:  "Start a new chunked upload",
		Code:    "UPL001",
	}},
	{"upload incomplete", UserMessage{
		Message: "The upload is missing one or more chunks",
		Action:  "Check the upload status and resend the missing chunks",
		Code:    "UPL002",
	}},
	{"total chunk count", UserMessage{
		Message: "The total chunk count was never declared",
		Action:  "Send at least one chunk with totalChunks set, then complete",
		Code:    "UPL003",
	}},
	{"session not found", UserMessage{
		Message: "Session not found or expired",
		Action:  "Upload the file again to start a new session",
		Code:    "SES001",
	}},
	{"request body too large", UserMessage{
		Message: "The file exceeds the maximum upload size",
		Action:  "Use the chunked upload endpoints for large files",
		Code:    "FILE001",
	}},
	{"malformed database", UserMessage{
		Message: "The file could not be read as a database",
		Action:  "Verify the file is a valid database and re-export it if needed",
		Code:    "FILE002",
	}},
	{"invalid filename", UserMessage{
		Message: "The filename is invalid",
		Action:  "Use a plain filename without path separators",
		Code:    "FILE003",
	}},
	{"table not found", UserMessage{
		Message: "The requested table does not exist in the uploaded file",
		Action:  "List the tables and verify the table name",
		Code:    "TBL001",
	}},
	{"download failed", UserMessage{
		Message: "The remote file could not be downloaded",
		Action:  "Verify the URL is reachable and try again",
		Code:    "DL001",
	}},
	{"too many concurrent parse", UserMessage{
		Message: "The server is busy parsing other files",
		Action:  "Wait a moment and try again",
		Code:    "PRS001",
	}},
	{"context canceled", UserMessage{
		Message: "The request was cancelled",
		Action:  "Try again",
		Code:    "REQ001",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "The request timed out",
		Action:  "Try a smaller table or check your connection",
		Code:    "REQ002",
	}},
}

// defaultUserMessage is returned when no pattern matches.
var defaultUserMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Try again or contact support with the error code",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(msg, p.pattern) {
			return p.msg
		}
	}
	return defaultUserMessage
}
