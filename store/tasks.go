package store

import (
	"context"
	"time"

	"sitecrew/apperr"
	"sitecrew/model"
)

type TaskFilter struct {
	ProjectID  string
	PhaseID    string
	AssigneeID string
	Status     model.TaskStatus
}

func (s *Store) CreateTask(ctx context.Context, t *model.Task) error {
	if t.Status == "" {
		t.Status = model.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !t.Status.Valid() {
		return apperr.Validationf("invalid task status %q", t.Status)
	}
	if !t.Priority.Valid() {
		return apperr.Validationf("invalid task priority %q", t.Priority)
	}
	if _, err := s.GetProject(ctx, t.ProjectID); err != nil {
		return err
	}
	if t.PhaseID != nil {
		ph, err := s.GetPhase(ctx, *t.PhaseID)
		if err != nil {
			return err
		}
		if ph.ProjectID != t.ProjectID {
			return apperr.Validationf("phase %s does not belong to project %s", ph.ID, t.ProjectID)
		}
	}
	if err := s.conn(ctx).Create(t).Error; err != nil {
		return wrapWrite("task", err)
	}
	return nil
}

// QuickAddTask creates a todo task with only a title. The creator becomes
// its primary assignee so the task shows up in their list.
func (s *Store) QuickAddTask(ctx context.Context, projectID, title, createdBy string) (*model.Task, error) {
	t := &model.Task{
		Title:     title,
		ProjectID: projectID,
		CreatedBy: createdBy,
	}
	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.CreateTask(ctx, t); err != nil {
			return err
		}
		return tx.ReplaceTaskAssignments(ctx, []string{t.ID}, []string{createdBy}, createdBy)
	})
	if err != nil {
		return nil, err
	}
	t.AssignedTo = &createdBy
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task
	if err := s.conn(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, wrapRead("task", err)
	}
	return &t, nil
}

// TasksByIDs returns the tasks that exist among ids.
func (s *Store) TasksByIDs(ctx context.Context, ids []string) ([]model.Task, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, wrapRead("tasks", err)
	}
	return tasks, nil
}

func (s *Store) ListTasks(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	q := s.conn(ctx).Model(&model.Task{})
	if f.ProjectID != "" {
		q = q.Where("tasks.project_id = ?", f.ProjectID)
	}
	if f.PhaseID != "" {
		q = q.Where("tasks.phase_id = ?", f.PhaseID)
	}
	if f.Status != "" {
		q = q.Where("tasks.status = ?", f.Status)
	}
	if f.AssigneeID != "" {
		q = q.Where("tasks.id IN (?)",
			s.conn(ctx).Model(&model.TaskWorkerAssignment{}).Select("task_id").Where("user_id = ?", f.AssigneeID))
	}
	var tasks []model.Task
	if err := q.Order("tasks.created_at DESC").Find(&tasks).Error; err != nil {
		return nil, wrapRead("tasks", err)
	}
	return tasks, nil
}

// UpdateTask changes editable fields. Status goes through SetTaskStatus.
func (s *Store) UpdateTask(ctx context.Context, id string, updates map[string]any) (*model.Task, error) {
	if _, ok := updates["status"]; ok {
		return nil, apperr.Validationf("status must be changed through a status transition")
	}
	if p, ok := updates["priority"].(model.TaskPriority); ok && !p.Valid() {
		return nil, apperr.Validationf("invalid task priority %q", p)
	}
	res := s.conn(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, wrapWrite("task", res.Error)
	}
	return s.GetTask(ctx, id)
}

func (s *Store) SetTaskStatus(ctx context.Context, id string, next model.TaskStatus) (*model.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(next) {
		return nil, apperr.Validationf("cannot move task from %s to %s", t.Status, next)
	}
	if t.Status == next {
		return t, nil
	}
	// Guarded on the old status so a concurrent transition loses cleanly.
	res := s.conn(ctx).Model(&model.Task{}).
		Where("id = ? AND status = ?", id, t.Status).
		Update("status", next)
	if res.Error != nil {
		return nil, wrapWrite("task", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflictf("task status changed concurrently")
	}
	t.Status = next
	return t, nil
}

// TasksDueBetween lists unfinished tasks with a due date in [from, to).
func (s *Store) TasksDueBetween(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := s.conn(ctx).
		Where("due_date >= ? AND due_date < ? AND status <> ?", from, to, model.TaskCompleted).
		Order("due_date").
		Find(&tasks).Error
	if err != nil {
		return nil, wrapRead("tasks", err)
	}
	return tasks, nil
}
