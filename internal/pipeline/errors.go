// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
)

// Configuration errors, fatal at orchestrator construction.
var (
	// ErrNoStages reports an explicitly empty enabled-agent set.
	ErrNoStages = errors.New("pipeline: no agents enabled")

	// ErrUnknownAgent reports an enabled-agent name outside the known set.
	ErrUnknownAgent = errors.New("pipeline: unknown agent")

	// ErrNoContentStage reports an enabled set with no content-producing
	// stage (researcher or editor): such a pipeline could never produce
	// a draft.
	ErrNoContentStage = errors.New("pipeline: no content-producing stage enabled")

	// ErrInvalidThreshold reports a convergence threshold outside [0,1].
	ErrInvalidThreshold = errors.New("pipeline: convergence threshold must be in [0,1]")

	// ErrInvalidIterations reports a negative iteration cap.
	ErrInvalidIterations = errors.New("pipeline: max iterations must be at least 1")
)

// StageError wraps a generation failure with the stage it occurred in.
// It aborts the run: the caller receives this error and no report.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
