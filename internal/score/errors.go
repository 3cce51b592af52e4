package score

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformed marks an element whose shape matches no known pattern, or
	// that does not belong in the current context. Such elements are skipped.
	ErrMalformed = errors.New("score: malformed element")
	// ErrCharset marks a lyric that the singer's charset cannot represent.
	ErrCharset = errors.New("score: lyric charset")
	// ErrPercussionIndex marks a beat addressing a percussion outside the
	// list given to the call. It aborts the call before anything is written.
	ErrPercussionIndex = errors.New("score: percussion index out of range")
)

// Issue is a skipped element, or a skipped syllable inside one.
type Issue struct {
	Index int
	Err   error
}

func (i Issue) Error() string {
	return fmt.Sprintf("element %d: %v", i.Index, i.Err)
}

func (i Issue) Unwrap() error { return i.Err }

// PartialError reports that a sequence was rendered to the end but some
// elements were skipped.
type PartialError struct {
	Issues []Issue
}

func (e *PartialError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Error()
	}
	return fmt.Sprintf("score: %d element(s) skipped: %s", len(e.Issues), strings.Join(parts, "; "))
}

func (e *PartialError) Unwrap() []error {
	errs := make([]error, len(e.Issues))
	for i, is := range e.Issues {
		errs[i] = is
	}
	return errs
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func partial(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	return &PartialError{Issues: issues}
}
