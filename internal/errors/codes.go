// Package errors provides structured, coded errors for server-preflight.
//
// Tool error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk)
//   - 3XX: Network errors (search index probe)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
//
// Preflight findings use the short operator-facing codes printed in
// validator messages (INDEX001, HOST002, ...). They are always fatal.
package errors

import "strings"

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates network-related errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates preflight validation failures.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the dependent services must not start.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Tool error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeSettings       = "ERR_103_SETTINGS_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeMarkerLocked   = "ERR_203_MARKER_LOCKED"

	// Network errors (300-399)
	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"
	ErrCodeBadStatus          = "ERR_303_BAD_STATUS"
	ErrCodeMalformedResponse  = "ERR_304_MALFORMED_RESPONSE"

	// Validation errors (400-499)
	ErrCodeInvalidInput       = "ERR_401_INVALID_INPUT"
	ErrCodeMissingCredentials = "ERR_402_MISSING_CREDENTIALS"
	ErrCodePreflightFailed    = "ERR_410_PREFLIGHT_FAILED"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// Preflight finding codes reported by validators.
const (
	CodeReindexSleep      = "INDEX001"
	CodeSystemMemory      = "INDEX003"
	CodeHeapSize          = "INDEX004"
	CodeInternalIndex     = "INDEX005"
	CodeExternalURL       = "INDEX006"
	CodeQueueMode         = "INDEX007"
	CodeHostDiskSpace     = "HOST001"
	CodeHostFileDescLimit = "HOST002"
)

// IsFindingCode reports whether code is a validator finding code
// rather than a tool error code.
func IsFindingCode(code string) bool {
	return strings.HasPrefix(code, "INDEX") || strings.HasPrefix(code, "HOST")
}

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if IsFindingCode(code) {
		return CategoryValidation
	}
	if len(code) < 7 || !strings.HasPrefix(code, "ERR_") {
		return CategoryInternal
	}

	// Numeric portion, e.g. "101" from "ERR_101_CONFIG_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	if IsFindingCode(code) || code == ErrCodePreflightFailed {
		return SeverityFatal
	}

	// Retryable network errors get warning severity
	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeNetworkTimeout, ErrCodeNetworkUnavailable, ErrCodeBadStatus, ErrCodeMalformedResponse:
		return true
	default:
		return false
	}
}
