package pipeline

import (
	"fmt"

	"talentlens/internal/errors"
)

// Stage identifies one analysis stage of the candidate pipeline.
type Stage string

const (
	StageParse    Stage = "parse"
	StageDiscover Stage = "discover"
	StageFlag     Stage = "flag"
	StageMatch    Stage = "match"
)

// Stages lists every pipeline stage in dependency order.
var Stages = []Stage{StageParse, StageDiscover, StageFlag, StageMatch}

// ValidStage reports whether name is a known pipeline stage.
func ValidStage(name string) bool {
	switch Stage(name) {
	case StageParse, StageDiscover, StageFlag, StageMatch:
		return true
	}
	return false
}

// StageState is the caller-visible state a guard predicate evaluates.
// DiscoverySummary is nil until the discover stage has produced output.
type StageState struct {
	ResumeText       string
	DiscoverySummary *string
	JobDescription   string
}

// CanRun reports whether a stage's prerequisites are satisfied. The guard
// is advisory: callers evaluate it before invoking a stage, and a caller
// that skips the check gets DEPENDENCY_NOT_SATISFIED from the run methods.
func CanRun(stage Stage, state StageState) bool {
	switch stage {
	case StageParse:
		return true
	case StageDiscover:
		return true
	case StageFlag:
		return state.ResumeText != "" && state.DiscoverySummary != nil
	case StageMatch:
		return state.ResumeText != "" && state.JobDescription != ""
	default:
		return false
	}
}

// Requirements describes a stage's prerequisites for error messages and
// operator-facing output.
func Requirements(stage Stage) string {
	switch stage {
	case StageParse, StageDiscover:
		return "none"
	case StageFlag:
		return "resume text and a completed discovery summary"
	case StageMatch:
		return "resume text and a job description"
	default:
		return "unknown stage"
	}
}

func dependencyErr(stage Stage) *errors.AppError {
	return errors.NewPipelineError(
		errors.ErrCodeDependencyNotSatisfied,
		fmt.Sprintf("stage %s requires %s", stage, Requirements(stage)),
		nil,
	).WithContext("stage", string(stage))
}
