package mono

import "errors"

// A Stage identifies which part of a pipeline produced a failure.
type Stage uint8

const (
	// StageCompute marks a failure of the initiating computation.
	StageCompute Stage = iota
	// StageTransform marks a failure of a Map, MapE or DoOnSuccess stage.
	StageTransform
	// StageRecover marks a failure of an OnErrorResume stage itself.
	StageRecover
)

func (s Stage) String() string {
	switch s {
	case StageCompute:
		return "compute"
	case StageTransform:
		return "transform"
	case StageRecover:
		return "recover"
	default:
		return "unknown"
	}
}

// A StageError is the failure of a pipeline, tagged with the [Stage] that
// produced it. It wraps the cause, so errors.Is and errors.As see through
// it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage.String() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// errNilResume is the cause reported when an OnErrorResume handler
// returns a nil Mono.
var errNilResume = errors.New("mono: OnErrorResume handler returned nil")
