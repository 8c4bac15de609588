package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users quote the code; support staff look it up here.
//
// # Sync Errors (SYNC001-SYNC099)
//
//	SYNC001 - Sync in progress: Another sync is already running
//	          Patterns: ErrSyncInProgress, "sync already in progress"
//
//	SYNC002 - Unknown source: The requested source is not configured
//	          Patterns: ErrUnknownSource, "unknown source"
//
//	SYNC003 - Sync state unavailable: The stored sync position could not be read
//	          Patterns: "failed to fetch sync metadata"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Sheet not found: The workbook has no sheet with the expected name
//	         Patterns: source.ErrSheetNotFound, "sheet not found"
//
//	SRC002 - Not configured: Google Sheets id or credentials are missing
//	         Patterns: "not configured", "no credentials configured"
//
//	SRC003 - Access denied: The service account cannot read the spreadsheet
//	         Patterns: "error 403", "permission_denied"
//
//	SRC004 - Spreadsheet not found: The spreadsheet id or range is wrong
//	         Patterns: "error 404", "unable to parse range"
//
//	SRC005 - Invalid workbook: The file is not a readable Excel workbook
//	         Patterns: "not a valid zip file", "open workbook"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Unable to connect to database
//	DB002 - Connection reset: Database connection was interrupted
//	DB003 - Server selection: No MongoDB server is reachable
//	DB004 - Timeout: Operation timed out
//	DB005 - Deadlock: Database was busy with conflicting operations
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing sub-project: subProject query parameter is required
//	VAL002 - Invalid limit: limit must be a positive number
//
// # Request Errors (REQ001-REQ099), Auth (AUTH001) and Rate Limiting (RATE001)
//
//	REQ001 - Request cancelled ("context canceled")
//	REQ002 - Request timeout ("context deadline exceeded")
//	AUTH001 - Missing or invalid API key ("api key")
//	RATE001 - Too many requests ("rate limit")
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the application logs for
// the original technical error.
//
// # Matching
//
// Sentinel errors are checked first with errors.Is. Otherwise patterns are
// matched case-insensitively using strings.Contains and the first match
// wins, so more specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/impact-tracker/internal/source"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgSyncInProgress = UserMessage{
		Message: "A sync is already running",
		Action:  "Wait for the current sync to finish and try again",
		Code:    "SYNC001",
	}
	msgUnknownSource = UserMessage{
		Message: "Unknown sync source",
		Action:  "Use one of the configured sources",
		Code:    "SYNC002",
	}
	msgSheetNotFound = UserMessage{
		Message: "The workbook has no Tracker sheet",
		Action:  "Rename the data sheet to Tracker or pass the sheet name",
		Code:    "SRC001",
	}
)

// sentinels are matched with errors.Is before any pattern.
var sentinels = []struct {
	err error
	msg UserMessage
}{
	{ErrSyncInProgress, msgSyncInProgress},
	{ErrUnknownSource, msgUnknownSource},
	{source.ErrSheetNotFound, msgSheetNotFound},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Sync Errors (SYNC001-SYNC003)
	// =========================================================================
	{pattern: "sync already in progress", msg: msgSyncInProgress},
	{pattern: "unknown source", msg: msgUnknownSource},
	{
		pattern: "failed to fetch sync metadata",
		msg: UserMessage{
			Message: "Could not read the sync state",
			Action:  "Check the database connection and try again",
			Code:    "SYNC003",
		},
	},

	// =========================================================================
	// Source Errors (SRC001-SRC005)
	// =========================================================================
	{pattern: "sheet not found", msg: msgSheetNotFound},
	{
		pattern: "no credentials configured",
		msg: UserMessage{
			Message: "Google Sheets credentials are not configured",
			Action:  "Set the service account credentials and restart",
			Code:    "SRC002",
		},
	},
	{
		pattern: "not configured",
		msg: UserMessage{
			Message: "Google Sheets is not configured",
			Action:  "Set the spreadsheet id and restart",
			Code:    "SRC002",
		},
	},
	{
		pattern: "error 403",
		msg: UserMessage{
			Message: "Access to the spreadsheet was denied",
			Action:  "Share the spreadsheet with the service account email",
			Code:    "SRC003",
		},
	},
	{
		pattern: "permission_denied",
		msg: UserMessage{
			Message: "Access to the spreadsheet was denied",
			Action:  "Share the spreadsheet with the service account email",
			Code:    "SRC003",
		},
	},
	{
		pattern: "error 404",
		msg: UserMessage{
			Message: "Spreadsheet not found",
			Action:  "Verify the spreadsheet id",
			Code:    "SRC004",
		},
	},
	{
		pattern: "unable to parse range",
		msg: UserMessage{
			Message: "The configured sheet range does not exist",
			Action:  "Verify the sheet range, for example Tracker!A:Z",
			Code:    "SRC004",
		},
	},
	{
		pattern: "not a valid zip file",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Save the file as .xlsx and try again",
			Code:    "SRC005",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The workbook could not be opened",
			Action:  "Check the file path and format",
			Code:    "SRC005",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB001-DB005)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "server selection error",
		msg: UserMessage{
			Message: "No database server is reachable",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB004",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL002)
	// =========================================================================
	{
		pattern: "subproject query parameter is required",
		msg: UserMessage{
			Message: "A sub-project is required",
			Action:  "Pass the subProject query parameter",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid limit",
		msg: UserMessage{
			Message: "Invalid limit",
			Action:  "Use a positive whole number",
			Code:    "VAL002",
		},
	},

	// =========================================================================
	// Request, Auth and Rate Limiting
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "api key",
		msg: UserMessage{
			Message: "Missing or invalid API key",
			Action:  "Send a valid key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(ErrSyncInProgress)
//	// msg.Code == "SYNC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.msg
		}
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

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
