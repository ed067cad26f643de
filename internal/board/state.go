// Package board holds the Kanban board state machine. Reduce is pure;
// the Controller performs the effects it asks for against a Tracker and
// feeds each result back in as an event.
package board

import (
	"slices"

	"github.com/careercardinal/jobtracker/internal/tracker"
)

// Draft holds the editable fields of a card or an add form.
type Draft struct {
	Title   string
	Company string
	Date    string
	Link    string
	Notes   string
}

func DraftFromJob(job tracker.Job) Draft {
	return Draft{
		Title:   job.Title,
		Company: job.Company,
		Date:    job.Date,
		Link:    job.Link,
		Notes:   job.Notes,
	}
}

// Apply copies the draft fields onto job, leaving id and status alone.
func (d Draft) Apply(job tracker.Job) tracker.Job {
	job.Title = d.Title
	job.Company = d.Company
	job.Date = d.Date
	job.Link = d.Link
	job.Notes = d.Notes
	return job
}

type Card struct {
	Job     tracker.Job
	Editing bool
	Draft   Draft
}

func newCard(job tracker.Job) Card {
	return Card{Job: job, Draft: DraftFromJob(job)}
}

type AddForm struct {
	Visible bool
	Draft   Draft
	Err     string
}

type Column struct {
	tracker.Column
	Cards []Card
	Form  AddForm
	Hover bool
}

// Drag is the single in-flight drag slot.
type Drag struct {
	JobID  int64
	Source string
}

type State struct {
	Columns      []Column
	Drag         *Drag
	Notice       string
	RenderErrors []string
	Loading      bool
}

func NewState(columns tracker.Columns) State {
	ret := State{Columns: make([]Column, 0, len(columns))}
	for _, c := range columns {
		ret.Columns = append(ret.Columns, Column{Column: c})
	}
	return ret
}

// Column returns the column with id, or nil.
func (s *State) Column(id string) *Column {
	for i := range s.Columns {
		if s.Columns[i].ID == id {
			return &s.Columns[i]
		}
	}
	return nil
}

// Find locates a card by job id.
func (s *State) Find(jobID int64) (col *Column, idx int, ok bool) {
	for i := range s.Columns {
		for j := range s.Columns[i].Cards {
			if s.Columns[i].Cards[j].Job.ID == jobID {
				return &s.Columns[i], j, true
			}
		}
	}
	return nil, -1, false
}

// Jobs returns every job on the board in column order.
func (s State) Jobs() []tracker.Job {
	ret := make([]tracker.Job, 0)
	for _, col := range s.Columns {
		for _, card := range col.Cards {
			ret = append(ret, card.Job)
		}
	}
	return ret
}

// Clone returns a deep copy so callers never share slices with the
// controller.
func (s State) Clone() State {
	ret := s
	ret.Columns = make([]Column, len(s.Columns))
	for i, col := range s.Columns {
		col.Cards = slices.Clone(col.Cards)
		ret.Columns[i] = col
	}
	if s.Drag != nil {
		d := *s.Drag
		ret.Drag = &d
	}
	ret.RenderErrors = slices.Clone(s.RenderErrors)
	return ret
}

func (c *Column) remove(idx int) {
	c.Cards = slices.Delete(c.Cards, idx, idx+1)
}
