package discovery

import (
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobArgs contains the arguments for a discovery run job submitted to River.
// The (user, query, location) triple is the unique key so River can reject a
// duplicate run while an identical one is still in flight.
type JobArgs struct {
	// RunID is the discovery run record the worker will process and finalize.
	RunID uuid.UUID `json:"runId"`

	// UserID, Query and Location identify the run. They are marked unique so
	// River enforces one in-flight job per identical request.
	UserID   uuid.UUID `json:"userId"   river:"unique"`
	Query    string    `json:"query"    river:"unique"`
	Location string    `json:"location" river:"unique"`

	// maxAttempts configures the maximum number of times River should retry the job.
	maxAttempts int
	// uniqueJobPeriod defines the lookback window during which a job with the
	// same unique arguments is considered a duplicate across the specified states.
	uniqueJobPeriod time.Duration
}

// Kind returns the River job kind used to register and dispatch the discovery worker.
func (args JobArgs) Kind() string { return "DiscoveryRunJob" }

// InsertOpts returns the River options that control how the job is enqueued,
// including the maximum retry attempts and uniqueness constraints that reject
// duplicate in-flight runs for the same user and query.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		// one in-flight job per (user, query, location)
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: args.uniqueJobPeriod,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
