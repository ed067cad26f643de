package board

import (
	"errors"
	"testing"

	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedState(t *testing.T, jobs ...tracker.Job) State {
	t.Helper()
	s, effects := Reduce(NewState(tracker.DefaultColumns()), Loaded{Jobs: jobs})
	require.Empty(t, effects)
	return s
}

func cardIDs(s State, column string) []int64 {
	ret := make([]int64, 0)
	for _, card := range s.Column(column).Cards {
		ret = append(ret, card.Job.ID)
	}
	return ret
}

func TestReduce_LoadGroupsByStatus(t *testing.T) {
	s, effects := Reduce(NewState(tracker.DefaultColumns()), LoadRequested{})
	assert.True(t, s.Loading)
	assert.Equal(t, []Effect{LoadJobs{}}, effects)

	s, _ = Reduce(s, Loaded{Jobs: []tracker.Job{
		{ID: 1, Title: "A", Status: "saved"},
		{ID: 2, Title: "B", Status: "applied"},
		{ID: 3, Title: "C", Status: "archived"},
		{ID: 4, Title: "D", Status: "saved"},
	}})
	assert.False(t, s.Loading)
	assert.Equal(t, []int64{1, 4}, cardIDs(s, "saved"))
	assert.Equal(t, []int64{2}, cardIDs(s, "applied"))
	require.Len(t, s.RenderErrors, 1)
	assert.Contains(t, s.RenderErrors[0], "archived")
}

func TestReduce_LoadFailedSetsNotice(t *testing.T) {
	s, _ := Reduce(NewState(tracker.DefaultColumns()), LoadFailed{Err: errors.New("offline")})
	assert.Contains(t, s.Notice, "offline")
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := loadedState(t, tracker.Job{ID: 1, Title: "A", Status: "saved"})
	_, _ = Reduce(s, MoveSucceeded{Job: tracker.Job{ID: 1, Title: "A", Status: "offer"}, From: "saved"})
	assert.Equal(t, []int64{1}, cardIDs(s, "saved"))
	assert.Empty(t, cardIDs(s, "offer"))
}

func TestReduce_EditUpdateFlow(t *testing.T) {
	job := tracker.Job{ID: 1, Title: "A", Company: "Acme", Status: "saved"}
	s := loadedState(t, job)

	s, effects := Reduce(s, EditRequested{JobID: 1})
	assert.Empty(t, effects)
	assert.True(t, s.Column("saved").Cards[0].Editing)

	// blank title is allowed on update
	s, _ = Reduce(s, DraftChanged{JobID: 1, Draft: Draft{Title: "", Company: "Acme Corp", Notes: "call back"}})
	s, effects = Reduce(s, UpdateRequested{JobID: 1})
	require.Len(t, effects, 1)
	want := tracker.Job{ID: 1, Company: "Acme Corp", Notes: "call back", Status: "saved"}
	assert.Equal(t, SaveJob{Job: want}, effects[0])
	assert.Equal(t, job, s.Column("saved").Cards[0].Job)

	failed, _ := Reduce(s, UpdateFailed{JobID: 1, Err: errors.New("boom")})
	card := failed.Column("saved").Cards[0]
	assert.True(t, card.Editing)
	assert.Equal(t, "Acme Corp", card.Draft.Company)
	assert.Equal(t, job, card.Job)
	assert.Contains(t, failed.Notice, "boom")

	s, _ = Reduce(s, Updated{Job: want})
	card = s.Column("saved").Cards[0]
	assert.False(t, card.Editing)
	assert.Equal(t, want, card.Job)
}

func TestReduce_CancelRestoresDraft(t *testing.T) {
	job := tracker.Job{ID: 1, Title: "A", Status: "saved"}
	s := loadedState(t, job)
	s, _ = Reduce(s, EditRequested{JobID: 1})
	s, _ = Reduce(s, DraftChanged{JobID: 1, Draft: Draft{Title: "changed"}})

	s, effects := Reduce(s, EditCancelled{JobID: 1})
	assert.Empty(t, effects)
	card := s.Column("saved").Cards[0]
	assert.False(t, card.Editing)
	assert.Equal(t, "A", card.Draft.Title)
}

func TestReduce_Delete(t *testing.T) {
	s := loadedState(t, tracker.Job{ID: 1, Status: "saved"}, tracker.Job{ID: 2, Status: "saved"})

	next, effects := Reduce(s, DeleteRequested{JobID: 2})
	assert.Equal(t, []Effect{RemoveJob{JobID: 2}}, effects)
	assert.Equal(t, []int64{1, 2}, cardIDs(next, "saved"))

	failed, _ := Reduce(next, DeleteFailed{JobID: 2, Err: errors.New("nope")})
	assert.Equal(t, []int64{1, 2}, cardIDs(failed, "saved"))
	assert.NotEmpty(t, failed.Notice)

	done, _ := Reduce(next, Deleted{JobID: 2})
	assert.Equal(t, []int64{1}, cardIDs(done, "saved"))
}

func TestReduce_DropOnSameColumnIsNoop(t *testing.T) {
	s := loadedState(t, tracker.Job{ID: 1, Status: "saved"}, tracker.Job{ID: 2, Status: "saved"})
	s, _ = Reduce(s, DragStarted{JobID: 1})
	require.NotNil(t, s.Drag)
	assert.Equal(t, Drag{JobID: 1, Source: "saved"}, *s.Drag)

	s, _ = Reduce(s, DragOver{Column: "saved"})
	assert.True(t, s.Column("saved").Hover)

	s, effects := Reduce(s, Dropped{Column: "saved"})
	assert.Empty(t, effects)
	assert.Nil(t, s.Drag)
	assert.False(t, s.Column("saved").Hover)
	assert.Equal(t, []int64{1, 2}, cardIDs(s, "saved"))
}

func TestReduce_CancelledMoveClearsEveryHover(t *testing.T) {
	s := loadedState(t, tracker.Job{ID: 1, Status: "saved"})
	s, _ = Reduce(s, DragStarted{JobID: 1})
	s, _ = Reduce(s, DragOver{Column: "saved"})
	s, _ = Reduce(s, DragLeave{Column: "saved"})
	s, _ = Reduce(s, DragOver{Column: "applied"})
	require.True(t, s.Column("applied").Hover)

	s, effects := Reduce(s, Dropped{Column: "saved"})
	assert.Empty(t, effects)
	assert.Nil(t, s.Drag)
	for _, col := range s.Columns {
		assert.False(t, col.Hover, col.ID)
	}
	assert.Equal(t, []int64{1}, cardIDs(s, "saved"))
}

func TestReduce_DropWithoutDragIsNoop(t *testing.T) {
	s := loadedState(t, tracker.Job{ID: 1, Status: "saved"})
	s, effects := Reduce(s, Dropped{Column: "applied"})
	assert.Empty(t, effects)
	assert.Equal(t, []int64{1}, cardIDs(s, "saved"))
}

func TestReduce_MoveSucceeded(t *testing.T) {
	s := loadedState(t,
		tracker.Job{ID: 1, Title: "Same", Status: "saved"},
		tracker.Job{ID: 2, Title: "Same", Status: "saved"},
		tracker.Job{ID: 3, Status: "interview"},
	)
	s, _ = Reduce(s, DragStarted{JobID: 2})
	s, effects := Reduce(s, Dropped{Column: "interview"})
	require.Len(t, effects, 1)
	move := effects[0].(MoveJob)
	assert.Equal(t, "interview", move.Job.Status)
	assert.Equal(t, "saved", move.From)
	// nothing moves until the backend confirms
	assert.Equal(t, []int64{1, 2}, cardIDs(s, "saved"))

	s, _ = Reduce(s, MoveSucceeded{Job: move.Job, From: move.From})
	assert.Nil(t, s.Drag)
	// removal matches by id, not by title
	assert.Equal(t, []int64{1}, cardIDs(s, "saved"))
	assert.Equal(t, []int64{3, 2}, cardIDs(s, "interview"))
	assert.Equal(t, "interview", s.Column("interview").Cards[1].Job.Status)
}

func TestReduce_MoveFailedKeepsCardAndClearsDrag(t *testing.T) {
	s := loadedState(t, tracker.Job{ID: 1, Status: "saved"})
	s, _ = Reduce(s, DragStarted{JobID: 1})
	s, effects := Reduce(s, Dropped{Column: "offer"})
	require.Len(t, effects, 1)

	s, _ = Reduce(s, MoveFailed{JobID: 1, Err: errors.New("503")})
	assert.Nil(t, s.Drag)
	assert.Equal(t, []int64{1}, cardIDs(s, "saved"))
	assert.Empty(t, cardIDs(s, "offer"))
	assert.Contains(t, s.Notice, "503")

	s, _ = Reduce(s, NoticeDismissed{})
	assert.Empty(t, s.Notice)
}

func TestReduce_DragStartReplacesSlot(t *testing.T) {
	s := loadedState(t, tracker.Job{ID: 1, Status: "saved"}, tracker.Job{ID: 2, Status: "applied"})
	s, _ = Reduce(s, DragStarted{JobID: 1})
	s, _ = Reduce(s, DragStarted{JobID: 2})
	assert.Equal(t, Drag{JobID: 2, Source: "applied"}, *s.Drag)
}

func TestReduce_AddFlow(t *testing.T) {
	s := loadedState(t, tracker.Job{ID: 1, Status: "applied"})

	s, _ = Reduce(s, AddToggled{Column: "applied"})
	assert.True(t, s.Column("applied").Form.Visible)

	s, _ = Reduce(s, AddDraftChanged{Column: "applied", Draft: Draft{Title: "   "}})
	_, effects := Reduce(s, AddSubmitted{Column: "applied"})
	assert.Empty(t, effects)

	s, _ = Reduce(s, AddDraftChanged{Column: "applied", Draft: Draft{Title: "Go Dev", Company: "Acme"}})
	s, effects = Reduce(s, AddSubmitted{Column: "applied"})
	require.Len(t, effects, 1)
	create := effects[0].(CreateJob)
	assert.Equal(t, tracker.Job{Title: "Go Dev", Company: "Acme", Status: "applied"}, create.Job)

	failed, _ := Reduce(s, CreateFailed{Column: "applied", Err: errors.New("down")})
	form := failed.Column("applied").Form
	assert.True(t, form.Visible)
	assert.Equal(t, "Go Dev", form.Draft.Title)
	assert.Contains(t, form.Err, "down")

	created := create.Job
	created.ID = 9
	s, _ = Reduce(s, Created{Column: "applied", Job: created})
	assert.Equal(t, []int64{1, 9}, cardIDs(s, "applied"))
	assert.Equal(t, AddForm{}, s.Column("applied").Form)
}
