package preflight

import (
	"fmt"
	"strings"
)

// Status represents the result of a preflight check.
type Status int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed and dependent services must not start.
	StatusFail
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status in lower case for JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText parses a status written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "PASS":
		*s = StatusPass
	case "WARN":
		*s = StatusWarn
	case "FAIL":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Outcome is the result of one check.
type Outcome struct {
	Check   string `json:"check"`
	Status  Status `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Pass returns a passing outcome.
func Pass() Outcome {
	return Outcome{Status: StatusPass}
}

// Passf returns a passing outcome with an informational message.
func Passf(format string, args ...any) Outcome {
	return Outcome{Status: StatusPass, Message: fmt.Sprintf(format, args...)}
}

// Warn returns a warning outcome.
func Warn(code, message string) Outcome {
	return Outcome{Status: StatusWarn, Code: code, Message: message}
}

// Fail returns a failing outcome.
func Fail(code, message string) Outcome {
	return Outcome{Status: StatusFail, Code: code, Message: message}
}

// Headline returns the first non-empty line of the message.
func (o Outcome) Headline() string {
	for _, line := range strings.Split(o.Message, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}
