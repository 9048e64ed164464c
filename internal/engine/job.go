package engine

import (
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// EvaluateScenarioArgs contains the arguments for a scenario evaluation job
// submitted to River. Both fields are part of the unique key so that a sweep
// enqueues each scenario at most once while a later sweep (with a new run ID)
// can re-enqueue it.
type EvaluateScenarioArgs struct {
	// ScenarioID identifies the scenario to evaluate.
	ScenarioID int64 `json:"scenarioId" river:"unique"`
	// RunID is the sweep run that requested the evaluation.
	RunID string `json:"runId" river:"unique"`

	// maxAttempts configures the maximum number of times River should retry the job.
	maxAttempts int
}

// Kind returns the River job kind used to register and dispatch the evaluation worker.
func (args EvaluateScenarioArgs) Kind() string { return "EvaluateScenarioJob" }

// InsertOpts returns the River options that control how the job is enqueued.
// Uniqueness is enforced per scenario and run across the non-discarded states,
// so retriggering a sweep produces a fresh set of jobs without duplicating
// work inside a single run.
func (args EvaluateScenarioArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
