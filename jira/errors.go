package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrUninitialized is returned by NewClient when any credential is missing.
var ErrUninitialized = errors.New("jira client is not initialized: base URL, username and API token are required")

// Sentinels matched by errors.Is against *Error values of the same kind.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrNotFound             = errors.New("not found")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrRemote               = errors.New("remote error")
	ErrTransportFailure     = errors.New("transport failure")
)

// Kind classifies a failed call. It is decided once, at the HTTP boundary.
type Kind int

const (
	KindRemoteError Kind = iota
	KindAuthenticationFailed
	KindPermissionDenied
	KindNotFound
	KindInvalidRequest
	KindTransportFailure
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationFailed:
		return "AuthenticationFailed"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindNotFound:
		return "NotFound"
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindTransportFailure:
		return "TransportFailure"
	default:
		return "RemoteError"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindAuthenticationFailed:
		return ErrAuthenticationFailed
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindNotFound:
		return ErrNotFound
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindTransportFailure:
		return ErrTransportFailure
	default:
		return ErrRemote
	}
}

// Operation names the purpose of a call and drives the user-facing prefix.
type Operation string

const (
	OpValidateCredentials Operation = "validate credentials"
	OpCheckPermissions    Operation = "check permissions"
	OpListProjects        Operation = "fetch projects"
	OpListIssues          Operation = "fetch issues"
	OpCreateIssue         Operation = "create issue"
	OpLogWork             Operation = "log work"
)

// Error is the failure type returned by every Client operation that reached
// (or tried to reach) the remote service.
type Error struct {
	Kind   Kind
	Op     Operation
	Status int    // HTTP status; 0 for transport failures
	Detail string // most specific text obtainable from the response body
	Err    error  // low-level cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("Failed to ")
	b.WriteString(string(e.Op))
	b.WriteString(". ")

	switch e.Kind {
	case KindTransportFailure:
		b.WriteString("Could not reach Jira")
		if e.Err != nil {
			b.WriteString(": ")
			b.WriteString(e.Err.Error())
		}
		return b.String()
	case KindRemoteError:
		detail := e.Detail
		if detail == "" && e.Err != nil {
			detail = e.Err.Error()
		}
		if detail == "" {
			detail = http.StatusText(e.Status)
		}
		b.WriteString(detail)
		if e.Status != 0 {
			fmt.Fprintf(&b, " (status %d)", e.Status)
		}
		return b.String()
	}

	b.WriteString(e.kindMessage())
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) kindMessage() string {
	switch e.Kind {
	case KindAuthenticationFailed:
		return "Authentication failed. Please check your username and API token."
	case KindPermissionDenied:
		switch e.Op {
		case OpCreateIssue:
			return "You don't have permission to create issues. Please check your Jira permissions."
		case OpLogWork:
			return "You don't have permission to log work on this issue. Please check your Jira permissions."
		default:
			return "You don't have permission for this operation. Please check your Jira permissions."
		}
	case KindNotFound:
		return "Issue not found. The issue may have been deleted or you don't have access to it."
	case KindInvalidRequest:
		switch e.Op {
		case OpCreateIssue:
			return "Bad request. The issue data is invalid."
		case OpLogWork:
			return "Bad request. The time format or work log data is invalid."
		default:
			return "Bad request."
		}
	}
	return ""
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, e.g. errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of a *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var jiraErr *Error
	if errors.As(err, &jiraErr) {
		return jiraErr.Kind, true
	}
	return 0, false
}

func classifyStatus(op Operation, status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthenticationFailed
	case http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusBadRequest:
		return KindInvalidRequest
	case http.StatusNotFound:
		if op == OpLogWork {
			return KindNotFound
		}
	}
	return KindRemoteError
}

type errorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
	Message       string            `json:"message"`
}

// errorDetail extracts the message list, field errors or message field from a
// Jira error body, falling back to the raw text.
func errorDetail(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return ""
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return raw
	}

	messages := make([]string, 0, len(parsed.ErrorMessages))
	for _, message := range parsed.ErrorMessages {
		if message = strings.TrimSpace(message); message != "" {
			messages = append(messages, message)
		}
	}
	if len(messages) > 0 {
		return strings.Join(messages, ". ")
	}

	if len(parsed.Errors) > 0 {
		fields := make([]string, 0, len(parsed.Errors))
		for field := range parsed.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		items := make([]string, 0, len(fields))
		for _, field := range fields {
			items = append(items, fmt.Sprintf("%s: %s", field, parsed.Errors[field]))
		}
		return strings.Join(items, ". ")
	}

	if message := strings.TrimSpace(parsed.Message); message != "" {
		return message
	}
	return raw
}
