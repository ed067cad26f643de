package board

import "github.com/careercardinal/jobtracker/internal/tracker"

// Event is an input to Reduce: a user action or the result of an effect.
type Event interface {
	event()
}

type LoadRequested struct{}

type Loaded struct {
	Jobs []tracker.Job
}

type LoadFailed struct {
	Err error
}

type EditRequested struct {
	JobID int64
}

type DraftChanged struct {
	JobID int64
	Draft Draft
}

type UpdateRequested struct {
	JobID int64
}

type Updated struct {
	Job tracker.Job
}

type UpdateFailed struct {
	JobID int64
	Err   error
}

type EditCancelled struct {
	JobID int64
}

type DeleteRequested struct {
	JobID int64
}

type Deleted struct {
	JobID int64
}

type DeleteFailed struct {
	JobID int64
	Err   error
}

type DragStarted struct {
	JobID int64
}

type DragOver struct {
	Column string
}

type DragLeave struct {
	Column string
}

type Dropped struct {
	Column string
}

type MoveSucceeded struct {
	Job  tracker.Job
	From string
}

type MoveFailed struct {
	JobID int64
	Err   error
}

type AddToggled struct {
	Column string
}

type AddDraftChanged struct {
	Column string
	Draft  Draft
}

type AddSubmitted struct {
	Column string
}

type Created struct {
	Column string
	Job    tracker.Job
}

type CreateFailed struct {
	Column string
	Err    error
}

type NoticeDismissed struct{}

func (LoadRequested) event()   {}
func (Loaded) event()          {}
func (LoadFailed) event()      {}
func (EditRequested) event()   {}
func (DraftChanged) event()    {}
func (UpdateRequested) event() {}
func (Updated) event()         {}
func (UpdateFailed) event()    {}
func (EditCancelled) event()   {}
func (DeleteRequested) event() {}
func (Deleted) event()         {}
func (DeleteFailed) event()    {}
func (DragStarted) event()     {}
func (DragOver) event()        {}
func (DragLeave) event()       {}
func (Dropped) event()         {}
func (MoveSucceeded) event()   {}
func (MoveFailed) event()      {}
func (AddToggled) event()      {}
func (AddDraftChanged) event() {}
func (AddSubmitted) event()    {}
func (Created) event()         {}
func (CreateFailed) event()    {}
func (NoticeDismissed) event() {}

// Effect is a backend call requested by Reduce. Each one resolves to
// exactly one result event.
type Effect interface {
	effect()
}

type LoadJobs struct{}

// SaveJob writes an edited record.
type SaveJob struct {
	Job tracker.Job
}

// MoveJob writes the record with its new status.
type MoveJob struct {
	Job  tracker.Job
	From string
}

type RemoveJob struct {
	JobID int64
}

type CreateJob struct {
	Column string
	Job    tracker.Job
}

func (LoadJobs) effect()  {}
func (SaveJob) effect()   {}
func (MoveJob) effect()   {}
func (RemoveJob) effect() {}
func (CreateJob) effect() {}
