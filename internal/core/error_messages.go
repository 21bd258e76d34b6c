package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A property with this ID already exists
//	DB002 - Unique constraint: This value must be unique but already exists
//	DB003 - Value too long: A value exceeds its column size
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//	DB007 - Deadlock: Database was busy with conflicting operations
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	FILE002 - Invalid workbook: File is not a readable .xlsx workbook
//	FILE004 - No file: No file was selected
//	FILE005 - Empty file: The uploaded file is empty
//	FILE006 - Wrong format: Only .xlsx files are supported
//	FILE007 - Processing failed: The workbook could not be processed
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	UPL003 - Not found: Upload not found
//	UPL004 - Request cancelled: Request was cancelled
//	UPL005 - Request timeout: Request timed out
//	UPL006 - Invalid filter: Unknown upload status
//
// # Property Errors (PRP001-PRP099)
//
//	PRP001 - Not found: Property not found
//	PRP002 - Invalid status: Status is not a lifecycle status
//	PRP003 - Invalid id: Property id is not an integer
//
// # Request Errors (REQ001)
//
//	REQ001 - Bad body: The request body is not valid JSON
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// application logs for the original technical error.
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so more specific patterns come first. Database
// patterns precede FILE007 so that a failed final write reports its cause.

import "strings"

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
	// =========================================================================
	// Database (DB001-DB007)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A property with this ID already exists",
			Action:  "Remove the Property ID column value or use a new ID",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your workbook",
			Code:    "DB002",
		},
	},
	{
		pattern: "value too long",
		msg: UserMessage{
			Message: "A value exceeds its column size",
			Action:  "Shorten the value and upload again",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Upload (UPL002-UPL005)
	// =========================================================================
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "Too many uploads in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "upload not found",
		msg: UserMessage{
			Message: "Upload not found",
			Action:  "Check the upload ID returned when the file was submitted",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},

	{
		pattern: "invalid upload status",
		msg: UserMessage{
			Message: "Unknown upload status filter",
			Action:  "Use one of: PROCESSING, COMPLETED, FAILED",
			Code:    "UPL006",
		},
	},

	// =========================================================================
	// Property administration (PRP001-PRP003)
	// =========================================================================
	{
		pattern: "property not found",
		msg: UserMessage{
			Message: "Property not found",
			Action:  "Verify the property ID is correct",
			Code:    "PRP001",
		},
	},
	{
		pattern: "invalid property status",
		msg: UserMessage{
			Message: "Status is not a valid lifecycle status",
			Action:  "Use one of: ACTIVE, INACTIVE, PENDING, APPROVED, REJECTED",
			Code:    "PRP002",
		},
	},
	{
		pattern: "invalid property id",
		msg: UserMessage{
			Message: "Property ID must be a whole number",
			Action:  "Verify the property ID is correct",
			Code:    "PRP003",
		},
	},

	// =========================================================================
	// File (FILE001-FILE007)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the workbook into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "not a valid zip file",
		msg: UserMessage{
			Message: "File is not a readable .xlsx workbook",
			Action:  "Save the file as an Excel Workbook (.xlsx) and upload again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an .xlsx file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "file is empty",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a workbook with data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "only .xlsx files are supported",
		msg: UserMessage{
			Message: "Only .xlsx files are supported",
			Action:  "Save the file as an Excel Workbook (.xlsx) and upload again",
			Code:    "FILE006",
		},
	},
	{
		pattern: "failed to process excel file",
		msg: UserMessage{
			Message: "The workbook could not be processed",
			Action:  "Check the file opens in Excel, then try again or contact support",
			Code:    "FILE007",
		},
	},

	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body could not be read",
			Action:  "Send a JSON body such as {\"status\":\"APPROVED\"}",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// Rate limiting (RATE001)
	// =========================================================================
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
// It returns the first pattern match, or the ERR000 fallback.
//
// Example:
//
//	msg := MapError(fmt.Errorf("%w: 42", ErrPropertyNotFound))
//	// msg.Code == "PRP001"
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

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
