package pipeline

import "fmt"

// Stage names the pipeline stage an error originated from.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageGaps      Stage = "gaps"
	StageNarrative Stage = "narrative"
	StageAssemble  Stage = "assemble"
	StageVerify    Stage = "verify"
)

// StageError tags a failure with its originating stage. A failed stage
// halts the pipeline for that report; prior stages' outputs remain valid
// and the caller may retry from the failed stage with corrected input.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
