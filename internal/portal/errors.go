package portal

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Kind classifies workflow failures. The kind is assigned at the boundary
// where an operation fails; callers branch on it with errors.As instead of
// inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota

	// KindConfiguration means a required setting (URL, credentials) is
	// missing. Fatal, surfaced before any browser work starts.
	KindConfiguration

	// KindLogin covers navigation, field-fill, submit and landmark-wait
	// failures during authentication.
	KindLogin

	// KindExport and KindGroupSelection are export-workflow step failures.
	KindExport
	KindGroupSelection

	// KindImport and KindFolderExpansion are import-workflow step failures.
	KindImport
	KindFolderExpansion

	// KindDownloadTimeout marks a wait that expired (selector, download or
	// popup event). Retryable inside the bounded retry loops.
	KindDownloadTimeout

	// KindNavigation marks transient page/locator trouble. Retryable in the
	// sales polling loop.
	KindNavigation

	// KindFileSystem covers unzip/move/cleanup failures.
	KindFileSystem
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "Configuration Error"
	case KindLogin:
		return "Login Error"
	case KindExport:
		return "Export Error"
	case KindGroupSelection:
		return "Group Selection Error"
	case KindImport:
		return "Import Error"
	case KindFolderExpansion:
		return "Folder Expansion Error"
	case KindDownloadTimeout:
		return "Download Timeout"
	case KindNavigation:
		return "Navigation Error"
	case KindFileSystem:
		return "File System Error"
	default:
		return "Unknown Error"
	}
}

// Error is the single error type produced by workflow steps.
type Error struct {
	Kind Kind
	Op   string // failing step, e.g. "export.group-selection"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrap builds a workflow error, keeping the driver error in the chain so
// retry policies can still see expired waits via errors.Is.
func wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether the sales polling loop should sleep and retry
// instead of aborting. Only expired waits and transient navigation trouble
// qualify; everything else propagates immediately.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindDownloadTimeout, KindNavigation:
		return true
	}
	return errors.Is(err, playwright.ErrTimeout)
}
