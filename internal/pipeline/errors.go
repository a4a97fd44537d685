package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies what broke; the CLI maps each kind to its own exit code.
type Kind string

const (
	KindConfig       Kind = "config"       // bad wiring or parameters, caught before work starts
	KindValidation   Kind = "validation"   // the model's payload broke its contract
	KindCollaborator Kind = "collaborator" // backend, search or scrape failure
	KindPersistence  Kind = "persistence"  // artifact could not be written
)

// Error ties a failure to the stage it happened in. Stage is empty for
// failures raised before the first stage runs.
type Error struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the failure class of err when it carries one.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
