package usecase

import (
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrCycleDetected         = errors.New("league family cycle detected")
	ErrAlreadyRebuilding     = errors.New("league family is already rebuilding")
	// ErrAssetNotFound marks a well-formed reference to an asset the family
	// has never seen. A known asset without events is not an error.
	ErrAssetNotFound = fmt.Errorf("asset %w", ErrNotFound)
)

// Stage names one phase of a family rebuild.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageDecompose Stage = "decompose"
	StageResolve   Stage = "resolve"
	StagePersist   Stage = "persist"
)

// StageError reports the rebuild phase that failed. The stored lineage of
// the family is untouched when a rebuild fails.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("rebuild %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: crerr.WithStack(err)}
}

// FailedStage returns the stage recorded on err, if any.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}
