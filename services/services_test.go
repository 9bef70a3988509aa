package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/model"
	"sitecrew/notify"
	"sitecrew/store"
	"sitecrew/store/storetest"
)

type recordingMirror struct {
	calls   int
	removed []string
	err     error
}

func (m *recordingMirror) MirrorAssignments(context.Context, []string, []string, string) error {
	m.calls++
	return m.err
}

func (m *recordingMirror) RemoveAssignment(_ context.Context, taskID, userID string) error {
	m.removed = append(m.removed, taskID+"/"+userID)
	return m.err
}

type fixture struct {
	store    *store.Store
	svc      *AssignmentService
	mirror   *recordingMirror
	messages []notify.Message
}

func newFixture(t *testing.T, notifyErr error) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:  store.New(storetest.Open(t), store.NewCache(64, time.Minute)),
		mirror: &recordingMirror{},
	}
	notifier := notify.Func(func(_ context.Context, msg notify.Message) error {
		f.messages = append(f.messages, msg)
		return notifyErr
	})
	f.svc = NewAssignmentService(f.store, f.mirror, notifier, zap.NewNop())

	u := &model.User{Name: "Alice", Email: "alice@crew.test", Role: access.RoleWorker, IsActive: true}
	u.ID = "u1"
	require.NoError(t, f.store.CreateUser(ctx, u))
	u2 := &model.User{Name: "Bob", Email: "bob@crew.test", Role: access.RoleWorker, IsActive: true}
	u2.ID = "u2"
	require.NoError(t, f.store.CreateUser(ctx, u2))

	p := &model.Project{Name: "Main St Remodel", Address: "1 Main St"}
	p.ID = "p1"
	require.NoError(t, f.store.CreateProject(ctx, p))
	for _, id := range []string{"t1", "t2", "t3"} {
		task := &model.Task{Title: "task " + id, ProjectID: "p1"}
		task.ID = id
		require.NoError(t, f.store.CreateTask(ctx, task))
	}
	cl := &model.Checklist{TaskID: "t1", Title: "Prep"}
	require.NoError(t, f.store.CreateChecklist(ctx, cl))
	item := &model.ChecklistItem{ChecklistID: cl.ID, Title: "Tarp the floor"}
	item.ID = "c1"
	require.NoError(t, f.store.AddChecklistItem(ctx, item))
	return f
}

func (f *fixture) assignments(t *testing.T, taskID string) []model.TaskWorkerAssignment {
	t.Helper()
	rows, err := f.store.ListTaskAssignments(context.Background(), taskID)
	require.NoError(t, err)
	return rows
}

func (f *fixture) countAssignments(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.store.DB().Model(&model.TaskWorkerAssignment{}).Count(&n).Error)
	return n
}

func TestAssignBulk(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	summary, err := f.svc.AssignBulk(ctx, AssignBulkRequest{
		WorkerID:         "u1",
		TaskIDs:          []string{"t1", "t2"},
		ChecklistItemIDs: []string{"c1"},
		ProjectID:        "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, &AssignSummary{Tasks: 2, ChecklistItems: 1, Worker: "Alice", Project: "Main St Remodel"}, summary)

	for _, id := range []string{"t1", "t2"} {
		rows := f.assignments(t, id)
		require.Len(t, rows, 1)
		assert.Equal(t, "u1", rows[0].UserID)
		assert.True(t, rows[0].IsPrimary)

		task, err := f.store.GetTask(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "u1", *task.AssignedTo)
	}
	item, err := f.store.GetChecklistItem(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "u1", *item.AssigneeID)

	assert.Equal(t, 1, f.mirror.calls)
	require.Len(t, f.messages, 1)
	assert.Equal(t, []string{"u1"}, f.messages[0].Recipients)
	assert.Contains(t, f.messages[0].Body, "Alice was assigned 2 task(s) and 1 checklist item(s) on Main St Remodel")
}

func TestAssignBulkIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	req := AssignBulkRequest{WorkerID: "u1", TaskIDs: []string{"t1", "t2", "t1"}, ChecklistItemIDs: []string{"c1"}}

	first, err := f.svc.AssignBulk(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.AssignBulk(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Tasks)
	assert.EqualValues(t, 2, f.countAssignments(t))
}

func TestAssignBulkReplacesPriorAssignee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.AssignBulk(ctx, AssignBulkRequest{WorkerID: "u1", TaskIDs: []string{"t1", "t3"}})
	require.NoError(t, err)
	_, err = f.svc.AssignBulk(ctx, AssignBulkRequest{WorkerID: "u2", TaskIDs: []string{"t1"}})
	require.NoError(t, err)

	rows := f.assignments(t, "t1")
	require.Len(t, rows, 1)
	assert.Equal(t, "u2", rows[0].UserID)

	rows = f.assignments(t, "t3")
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].UserID)
}

func TestAssignBulkValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tests := []struct {
		name string
		req  AssignBulkRequest
	}{
		{"empty worker", AssignBulkRequest{WorkerID: "", TaskIDs: []string{"t1"}, ChecklistItemIDs: []string{"c1"}}},
		{"blank worker", AssignBulkRequest{WorkerID: "  ", TaskIDs: []string{"t1"}}},
		{"no ids", AssignBulkRequest{WorkerID: "u1"}},
		{"only blank ids", AssignBulkRequest{WorkerID: "u1", TaskIDs: []string{""}, ChecklistItemIDs: []string{" "}}},
		{"unknown task", AssignBulkRequest{WorkerID: "u1", TaskIDs: []string{"t1", "nope"}}},
		{"unknown checklist item", AssignBulkRequest{WorkerID: "u1", TaskIDs: []string{"t1"}, ChecklistItemIDs: []string{"c1", "c9"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AssignBulk(ctx, tt.req)
			assert.True(t, apperr.Is(err, apperr.Validation), "got %v", err)
		})
	}

	assert.Zero(t, f.countAssignments(t))
	item, err := f.store.GetChecklistItem(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, item.AssigneeID)
	assert.Empty(t, f.messages)
}

func TestAssignBulkSurvivesNotificationFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, errors.New("webhook down"))
	f.mirror.err = errors.New("firestore unavailable")

	summary, err := f.svc.AssignBulk(ctx, AssignBulkRequest{WorkerID: "u1", TaskIDs: []string{"t1"}, ChecklistItemIDs: []string{"c1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Tasks)
	assert.Len(t, f.messages, 1)
	assert.Len(t, f.assignments(t, "t1"), 1)
}

func TestAssignBulkFallsBackToRawIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	summary, err := f.svc.AssignBulk(ctx, AssignBulkRequest{WorkerID: "u1", ChecklistItemIDs: []string{"c1"}, ProjectID: "p404"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", summary.Worker)
	assert.Equal(t, "p404", summary.Project)
	assert.Zero(t, f.mirror.calls)

	require.NoError(t, f.store.DB().Migrator().DropTable(&model.User{}))
	assert.Equal(t, "u2", f.svc.workerName(ctx, "u2"))
}

func TestAssignRejectsUnknownWorkers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.AssignBulk(ctx, AssignBulkRequest{WorkerID: "ghost", TaskIDs: []string{"t1"}, ChecklistItemIDs: []string{"c1"}})
	require.True(t, apperr.Is(err, apperr.Validation), "got %v", err)
	assert.Contains(t, err.Error(), "ghost")

	_, err = f.svc.AssignWorkersBulk(ctx, AssignWorkersRequest{TaskIDs: []string{"t2"}, WorkerIDs: []string{"u1", "nobody"}})
	require.True(t, apperr.Is(err, apperr.Validation), "got %v", err)
	assert.Contains(t, err.Error(), "nobody")

	_, err = f.svc.AssignWorkersBulk(ctx, AssignWorkersRequest{TaskIDs: []string{"t2"}, WorkerIDs: []string{"u1"}, PrimaryWorkerID: "ghost"})
	require.True(t, apperr.Is(err, apperr.Validation), "got %v", err)

	assert.Zero(t, f.countAssignments(t))
	task, err := f.store.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, task.AssignedTo)
	item, err := f.store.GetChecklistItem(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, item.AssigneeID)
	assert.Empty(t, f.messages)
	assert.Zero(t, f.mirror.calls)
}

func TestAssignBulkWriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.store.DB().Migrator().DropTable(&model.ChecklistItem{}))

	_, err := f.svc.AssignBulk(ctx, AssignBulkRequest{WorkerID: "u1", TaskIDs: []string{"t1"}, ChecklistItemIDs: []string{"c1"}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Persistence), "got %v", err)

	assert.Empty(t, f.assignments(t, "t1"))
	task, err := f.store.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, task.AssignedTo)
	assert.Empty(t, f.messages)
	assert.Zero(t, f.mirror.calls)
}

func TestAssignWorkersBulk(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	summary, err := f.svc.AssignWorkersBulk(ctx, AssignWorkersRequest{
		TaskIDs:         []string{"t1", "t2"},
		WorkerIDs:       []string{"u1"},
		PrimaryWorkerID: "u2",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Tasks)
	assert.Equal(t, []string{"Bob", "Alice"}, summary.Workers)
	assert.Equal(t, "Bob", summary.Primary)
	assert.Equal(t, "Main St Remodel", summary.Project)

	rows := f.assignments(t, "t2")
	require.Len(t, rows, 2)
	primaries := 0
	for _, r := range rows {
		if r.IsPrimary {
			primaries++
			assert.Equal(t, "u2", r.UserID)
		}
	}
	assert.Equal(t, 1, primaries)

	summary, err = f.svc.AssignWorkersBulk(ctx, AssignWorkersRequest{TaskIDs: []string{"t2"}, WorkerIDs: []string{"u1", "u2"}})
	require.NoError(t, err)
	assert.Equal(t, "Alice", summary.Primary)
	rows = f.assignments(t, "t2")
	require.Len(t, rows, 2)
	assert.Equal(t, "u1", rows[0].UserID)
	assert.True(t, rows[0].IsPrimary)

	_, err = f.svc.AssignWorkersBulk(ctx, AssignWorkersRequest{TaskIDs: []string{"t1"}})
	assert.True(t, apperr.Is(err, apperr.Validation))
	_, err = f.svc.AssignWorkersBulk(ctx, AssignWorkersRequest{WorkerIDs: []string{"u1"}})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestUnassignTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.AssignWorkersBulk(ctx, AssignWorkersRequest{TaskIDs: []string{"t1"}, WorkerIDs: []string{"u1", "u2"}})
	require.NoError(t, err)

	require.NoError(t, f.svc.UnassignTask(ctx, "t1", "u1"))
	rows := f.assignments(t, "t1")
	require.Len(t, rows, 1)
	assert.Equal(t, "u2", rows[0].UserID)
	assert.Equal(t, []string{"t1/u1"}, f.mirror.removed)

	task, err := f.store.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, task.AssignedTo)

	assert.True(t, apperr.Is(f.svc.UnassignTask(ctx, "t1", "u1"), apperr.NotFound))
	assert.True(t, apperr.Is(f.svc.UnassignTask(ctx, "", "u1"), apperr.Validation))
}
