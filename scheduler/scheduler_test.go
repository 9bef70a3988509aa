package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitecrew/access"
	"sitecrew/config"
	"sitecrew/model"
	"sitecrew/notify"
	"sitecrew/store"
	"sitecrew/store/storetest"
)

var today = time.Date(2024, 7, 15, 7, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (r *recorder) Notify(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func newScheduler(t *testing.T, n notify.Notifier) (*Scheduler, *store.Store) {
	t.Helper()
	st := store.New(storetest.Open(t), nil)
	s, err := New(st, n, zap.NewNop(), config.SchedulerEnv{ReminderSpec: "0 0 7 * * *", PurgeSpec: "0 30 3 * * *"})
	require.NoError(t, err)
	s.now = func() time.Time { return today }
	return s, st
}

func seedDueTask(t *testing.T, st *store.Store, projectID, title string, due time.Time, worker string) *model.Task {
	t.Helper()
	ctx := context.Background()
	task := &model.Task{Title: title, ProjectID: projectID, DueDate: &due}
	require.NoError(t, st.CreateTask(ctx, task))
	if worker != "" {
		require.NoError(t, st.ReplaceTaskAssignments(ctx, []string{task.ID}, []string{worker}, worker))
	}
	return task
}

func TestRemindDueTasks(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s, st := newScheduler(t, rec)

	alice := &model.User{Name: "Alice", Email: "alice@crew.test", Role: access.RoleWorker, IsActive: true}
	bob := &model.User{Name: "Bob", Email: "bob@crew.test", Role: access.RoleWorker, IsActive: true}
	require.NoError(t, st.CreateUser(ctx, alice))
	require.NoError(t, st.CreateUser(ctx, bob))
	p := &model.Project{Name: "Main St Remodel", Address: "1 Main St"}
	require.NoError(t, st.CreateProject(ctx, p))

	noon := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	seedDueTask(t, st, p.ID, "Frame walls", noon, alice.ID)
	seedDueTask(t, st, p.ID, "Hang drywall", noon.Add(time.Hour), alice.ID)
	seedDueTask(t, st, p.ID, "Pull permits", noon, bob.ID)
	seedDueTask(t, st, p.ID, "Next week", noon.AddDate(0, 0, 7), bob.ID)
	seedDueTask(t, st, p.ID, "Unassigned", noon, "")

	done := seedDueTask(t, st, p.ID, "Already done", noon, bob.ID)
	for _, next := range []model.TaskStatus{model.TaskInProgress, model.TaskReview, model.TaskCompleted} {
		_, err := st.SetTaskStatus(ctx, done.ID, next)
		require.NoError(t, err)
	}

	n, err := s.RemindDueTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, rec.msgs, 2)

	byUser := map[string]notify.Message{}
	for _, m := range rec.msgs {
		require.Len(t, m.Recipients, 1)
		byUser[m.Recipients[0]] = m
	}
	assert.Contains(t, byUser[alice.ID].Body, "2 task(s)")
	assert.Contains(t, byUser[alice.ID].Body, "Frame walls")
	assert.Contains(t, byUser[bob.ID].Body, "Pull permits")
	assert.NotContains(t, byUser[bob.ID].Body, "Already done")
	assert.Equal(t, "due_reminder", byUser[bob.ID].Data["type"])
}

func TestRemindDueTasksCountsOnlyDelivered(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{err: errors.New("webhook down")}
	s, st := newScheduler(t, rec)

	u := &model.User{Name: "Alice", Email: "alice@crew.test", Role: access.RoleWorker, IsActive: true}
	require.NoError(t, st.CreateUser(ctx, u))
	p := &model.Project{Name: "Main St Remodel", Address: "1 Main St"}
	require.NoError(t, st.CreateProject(ctx, p))
	seedDueTask(t, st, p.ID, "Frame walls", time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC), u.ID)

	n, err := s.RemindDueTasks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, rec.msgs, 1)
}

func TestNewRejectsBadSpec(t *testing.T) {
	st := store.New(storetest.Open(t), nil)
	_, err := New(st, notify.Nop{}, zap.NewNop(), config.SchedulerEnv{ReminderSpec: "every morning", PurgeSpec: "0 30 3 * * *"})
	assert.Error(t, err)
}
