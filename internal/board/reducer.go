package board

import (
	"fmt"
	"strings"

	"github.com/careercardinal/jobtracker/internal/tracker"
)

// Reduce applies ev to s and returns the next state plus the effects to
// perform. s is never modified.
func Reduce(s State, ev Event) (State, []Effect) {
	s = s.Clone()

	switch ev := ev.(type) {
	case LoadRequested:
		s.Loading = true
		return s, []Effect{LoadJobs{}}

	case Loaded:
		return load(s, ev.Jobs), nil

	case LoadFailed:
		s.Loading = false
		s.Notice = fmt.Sprintf("Failed to load jobs: %v", ev.Err)

	case EditRequested:
		// a card still editing after a failed update keeps its draft
		if col, idx, ok := s.Find(ev.JobID); ok && !col.Cards[idx].Editing {
			card := &col.Cards[idx]
			card.Editing = true
			card.Draft = DraftFromJob(card.Job)
		}

	case DraftChanged:
		if col, idx, ok := s.Find(ev.JobID); ok && col.Cards[idx].Editing {
			col.Cards[idx].Draft = ev.Draft
		}

	case UpdateRequested:
		col, idx, ok := s.Find(ev.JobID)
		if !ok || !col.Cards[idx].Editing {
			return s, nil
		}
		card := col.Cards[idx]
		return s, []Effect{SaveJob{Job: card.Draft.Apply(card.Job)}}

	case Updated:
		if col, idx, ok := s.Find(ev.Job.ID); ok {
			col.Cards[idx] = newCard(ev.Job)
		}

	case UpdateFailed:
		s.Notice = fmt.Sprintf("Failed to update job: %v", ev.Err)

	case EditCancelled:
		if col, idx, ok := s.Find(ev.JobID); ok {
			card := &col.Cards[idx]
			card.Editing = false
			card.Draft = DraftFromJob(card.Job)
		}

	case DeleteRequested:
		if _, _, ok := s.Find(ev.JobID); ok {
			return s, []Effect{RemoveJob{JobID: ev.JobID}}
		}

	case Deleted:
		if col, idx, ok := s.Find(ev.JobID); ok {
			col.remove(idx)
		}
		if s.Drag != nil && s.Drag.JobID == ev.JobID {
			s.Drag = nil
		}

	case DeleteFailed:
		s.Notice = fmt.Sprintf("Failed to delete job: %v", ev.Err)

	case DragStarted:
		if col, _, ok := s.Find(ev.JobID); ok {
			s.Drag = &Drag{JobID: ev.JobID, Source: col.ID}
		}

	case DragOver:
		if col := s.Column(ev.Column); col != nil {
			col.Hover = true
		}

	case DragLeave:
		if col := s.Column(ev.Column); col != nil {
			col.Hover = false
		}

	case Dropped:
		return drop(s, ev.Column)

	case MoveSucceeded:
		s.Drag = nil
		if col, idx, ok := s.Find(ev.Job.ID); ok {
			col.remove(idx)
		}
		if target := s.Column(ev.Job.Status); target != nil {
			target.Cards = append(target.Cards, newCard(ev.Job))
		}

	case MoveFailed:
		s.Drag = nil
		s.Notice = fmt.Sprintf("Failed to move job: %v", ev.Err)

	case AddToggled:
		if col := s.Column(ev.Column); col != nil {
			col.Form.Visible = !col.Form.Visible
			col.Form.Err = ""
		}

	case AddDraftChanged:
		if col := s.Column(ev.Column); col != nil {
			col.Form.Draft = ev.Draft
		}

	case AddSubmitted:
		col := s.Column(ev.Column)
		if col == nil || strings.TrimSpace(col.Form.Draft.Title) == "" {
			return s, nil
		}
		job := col.Form.Draft.Apply(tracker.Job{Status: col.ID})
		return s, []Effect{CreateJob{Column: col.ID, Job: job}}

	case Created:
		if col := s.Column(ev.Column); col != nil {
			col.Cards = append(col.Cards, newCard(ev.Job))
			col.Form = AddForm{}
		}

	case CreateFailed:
		if col := s.Column(ev.Column); col != nil {
			col.Form.Visible = true
			col.Form.Err = fmt.Sprintf("Failed to add job: %v", ev.Err)
		}

	case NoticeDismissed:
		s.Notice = ""
	}

	return s, nil
}

func load(s State, jobs []tracker.Job) State {
	s.Loading = false
	s.Drag = nil
	s.RenderErrors = nil
	for i := range s.Columns {
		s.Columns[i].Cards = nil
		s.Columns[i].Hover = false
	}
	for _, job := range jobs {
		col := s.Column(job.Status)
		if col == nil {
			s.RenderErrors = append(s.RenderErrors,
				fmt.Sprintf("job %d (%s) has unknown status %q", job.ID, job.Title, job.Status))
			continue
		}
		col.Cards = append(col.Cards, newCard(job))
	}
	return s
}

// drop ends a drag and clears every hover highlight. Dropping back onto
// the source column, or with nothing in flight, only clears the slot.
func drop(s State, target string) (State, []Effect) {
	for i := range s.Columns {
		s.Columns[i].Hover = false
	}
	drag := s.Drag
	if drag == nil || drag.Source == target || s.Column(target) == nil {
		s.Drag = nil
		return s, nil
	}
	col, idx, ok := s.Find(drag.JobID)
	if !ok {
		s.Drag = nil
		return s, nil
	}
	job := col.Cards[idx].Job
	job.Status = target
	return s, []Effect{MoveJob{Job: job, From: drag.Source}}
}
