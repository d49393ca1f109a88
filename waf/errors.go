package waf

import (
	"fmt"
)

// Kind classifies a fatal build error.
type Kind int

const (
	KindArchive Kind = iota + 1
	KindFileSystem
	KindClassification
	KindNaming
	KindTimestamp
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindArchive:
		return "ArchiveError"
	case KindFileSystem:
		return "FileSystemError"
	case KindClassification:
		return "ClassificationError"
	case KindNaming:
		return "NamingError"
	case KindTimestamp:
		return "TimestampError"
	case KindIndex:
		return "IndexError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a fatal error raised by one stage of the build. Path names the
// archive entry or file involved, when there is one.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNaming)
// works for every naming failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Path == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrArchive        = &Error{Kind: KindArchive}
	ErrFileSystem     = &Error{Kind: KindFileSystem}
	ErrClassification = &Error{Kind: KindClassification}
	ErrNaming         = &Error{Kind: KindNaming}
	ErrTimestamp      = &Error{Kind: KindTimestamp}
	ErrIndex          = &Error{Kind: KindIndex}
)

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// DiagnosticKind classifies a non-fatal problem.
type DiagnosticKind string

const (
	// ReferenceResolutionWarning: a coupled resource of the service record
	// does not match any dataset in the archive.
	ReferenceResolutionWarning DiagnosticKind = "ReferenceResolutionWarning"

	// TimestampWarning: a document had no dateStamp and the timestamp
	// policy is "warn".
	TimestampWarning DiagnosticKind = "TimestampWarning"

	// DuplicateServiceWarning: a later service record replaced an earlier
	// one under the "last" service policy.
	DuplicateServiceWarning DiagnosticKind = "DuplicateServiceWarning"

	// StaleFileWarning: the output folder holds an XML file the build did
	// not write, typically a dataset that has since been retitled.
	StaleFileWarning DiagnosticKind = "StaleFileWarning"
)

// Diagnostic is a problem that was reported and recovered from.
type Diagnostic struct {
	Kind    DiagnosticKind
	Subject string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}
