package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/careercardinal/jobtracker/pkg/log"
)

// Tracker is the backend holding job records. *client.Client and
// *LocalStore both satisfy it.
type Tracker interface {
	ListJobs(ctx context.Context) ([]tracker.Job, error)
	CreateJob(ctx context.Context, job tracker.Job) (int64, error)
	UpdateJob(ctx context.Context, job tracker.Job) error
	DeleteJob(ctx context.Context, id int64) error
}

type Controller struct {
	tracker Tracker

	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

func NewController(columns tracker.Columns, t Tracker) *Controller {
	return &Controller{
		tracker: t,
		state:   NewState(columns),
		subs:    make(map[int]func(State)),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe registers fn to receive every new state. The returned func
// removes it.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Dispatch reduces ev into the current state, notifies subscribers and
// returns the effects still to be performed.
func (c *Controller) Dispatch(ev Event) []Effect {
	c.mu.Lock()
	next, effects := Reduce(c.state, ev)
	c.state = next
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(next.Clone())
	}
	return effects
}

// Perform runs one effect against the tracker and returns its result event.
func (c *Controller) Perform(ctx context.Context, eff Effect) Event {
	switch eff := eff.(type) {
	case LoadJobs:
		jobs, err := c.tracker.ListJobs(ctx)
		if err != nil {
			log.Warn("Board load failed: %v", err)
			return LoadFailed{Err: err}
		}
		return Loaded{Jobs: jobs}

	case SaveJob:
		if err := c.tracker.UpdateJob(ctx, eff.Job); err != nil {
			log.Warn("Board update of job %d failed: %v", eff.Job.ID, err)
			return UpdateFailed{JobID: eff.Job.ID, Err: err}
		}
		return Updated{Job: eff.Job}

	case MoveJob:
		if err := c.tracker.UpdateJob(ctx, eff.Job); err != nil {
			log.Warn("Board move of job %d to %s failed: %v", eff.Job.ID, eff.Job.Status, err)
			return MoveFailed{JobID: eff.Job.ID, Err: err}
		}
		return MoveSucceeded{Job: eff.Job, From: eff.From}

	case RemoveJob:
		if err := c.tracker.DeleteJob(ctx, eff.JobID); err != nil {
			log.Warn("Board delete of job %d failed: %v", eff.JobID, err)
			return DeleteFailed{JobID: eff.JobID, Err: err}
		}
		return Deleted{JobID: eff.JobID}

	case CreateJob:
		id, err := c.tracker.CreateJob(ctx, eff.Job)
		if err != nil {
			log.Warn("Board create in %s failed: %v", eff.Column, err)
			return CreateFailed{Column: eff.Column, Err: err}
		}
		job := eff.Job
		job.ID = id
		return Created{Column: eff.Column, Job: job}
	}
	panic(fmt.Sprintf("board: unknown effect %T", eff))
}

// Run dispatches ev and performs the resulting effects in order until none
// are left.
func (c *Controller) Run(ctx context.Context, ev Event) {
	pending := c.Dispatch(ev)
	for len(pending) > 0 {
		eff := pending[0]
		pending = append(pending[1:], c.Dispatch(c.Perform(ctx, eff))...)
	}
}

func (c *Controller) Load(ctx context.Context) {
	c.Run(ctx, LoadRequested{})
}
