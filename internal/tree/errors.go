package tree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNodeNotFound        = errors.New("the node cannot be found on the current tree")
	ErrProgramTreeNotFound = errors.New("program tree not found")
	ErrLinkNotFound        = errors.New("link not found")
)

// businessError marks errors caused by a business rule violation.
type businessError interface {
	error
	business()
}

// IsBusinessError reports whether err, or an error it wraps, is a business rule violation.
func IsBusinessError(err error) bool {
	var b businessError
	return errors.As(err, &b)
}

// BusinessError is a single business rule violation.
type BusinessError struct {
	Message string
	Err     error
}

func NewBusinessError(format string, args ...any) *BusinessError {
	return &BusinessError{Message: fmt.Sprintf(format, args...)}
}

func (e *BusinessError) Error() string { return e.Message }
func (e *BusinessError) Unwrap() error { return e.Err }
func (e *BusinessError) business() {}

// MultipleBusinessErrors gathers every violation found by a validator list.
type MultipleBusinessErrors struct {
	Errors []error
}

func (e *MultipleBusinessErrors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

func (e *MultipleBusinessErrors) Messages() []string {
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return messages
}

func (e *MultipleBusinessErrors) Unwrap() []error { return e.Errors }
func (e *MultipleBusinessErrors) business() {}

// BusinessWarnings are informational messages returned alongside a successful operation.
type BusinessWarnings struct {
	Messages []string
}

func (w *BusinessWarnings) Add(format string, args ...any) {
	w.Messages = append(w.Messages, fmt.Sprintf(format, args...))
}

// Empty reports whether w holds no message. A nil w is empty.
func (w *BusinessWarnings) Empty() bool {
	return w == nil || len(w.Messages) == 0
}

// CannotDetachLearningWhoIsPrerequisiteError is returned when detaching a learning
// unit still required by another unit of the tree.
type CannotDetachLearningWhoIsPrerequisiteError struct {
	Root ProgramTreeIdentity
	Node NodeIdentity
}

func (e *CannotDetachLearningWhoIsPrerequisiteError) Error() string {
	return fmt.Sprintf("Cannot detach due to prerequisites in %s: %s is a prerequisite", e.Root, e.Node.Code)
}

func (e *CannotDetachLearningWhoIsPrerequisiteError) business() {}

// CannotDetachChildrenWhoArePrerequisiteError is returned when a detached group
// holds learning units still required by other units of the tree.
type CannotDetachChildrenWhoArePrerequisiteError struct {
	Root  ProgramTreeIdentity
	Node  NodeIdentity
	Codes []string
}

func (e *CannotDetachChildrenWhoArePrerequisiteError) Error() string {
	return fmt.Sprintf("Cannot detach %s due to prerequisites in %s: %s",
		e.Node.Code, e.Root, strings.Join(e.Codes, ", "))
}

func (e *CannotDetachChildrenWhoArePrerequisiteError) business() {}
