package pipeline

import "fmt"

// Stage names the pipeline stage a failure is attributed to.
type Stage string

const (
	StageStaging       Stage = "staging"
	StageTranscription Stage = "transcription"
	StageGeneration    Stage = "generation"
)

// StageError is the caller-facing failure: which stage broke and the
// underlying reason, detail preserved. When transcription had already
// succeeded before the failure, Transcript carries its output so the
// expensive work is not lost with the error.
type StageError struct {
	Stage      Stage
	Err        error
	Transcript string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
