package store

import (
	"context"

	"sitecrew/apperr"
	"sitecrew/model"
)

// ReplaceTaskAssignments deletes every assignment of taskIDs and inserts one
// row per (task, worker). primaryID is marked primary and copied into the
// legacy assigned_to column; it must be one of workerIDs. Callers that need
// all-or-nothing behaviour run this inside WithTx.
func (s *Store) ReplaceTaskAssignments(ctx context.Context, taskIDs, workerIDs []string, primaryID string) error {
	taskIDs = dedupe(taskIDs)
	workerIDs = dedupe(workerIDs)
	if len(taskIDs) == 0 {
		return nil
	}
	if len(workerIDs) == 0 {
		return apperr.Validationf("at least one worker is required")
	}
	found := false
	for _, w := range workerIDs {
		found = found || w == primaryID
	}
	if !found {
		return apperr.Validationf("primary worker %s is not among the assigned workers", primaryID)
	}

	db := s.conn(ctx)
	if err := db.Where("task_id IN ?", taskIDs).Delete(&model.TaskWorkerAssignment{}).Error; err != nil {
		return apperr.Persistencef(err, "failed to clear task assignments")
	}

	rows := make([]model.TaskWorkerAssignment, 0, len(taskIDs)*len(workerIDs))
	for _, t := range taskIDs {
		for _, w := range workerIDs {
			rows = append(rows, model.TaskWorkerAssignment{TaskID: t, UserID: w, IsPrimary: w == primaryID})
		}
	}
	if err := db.Create(&rows).Error; err != nil {
		return apperr.Persistencef(err, "failed to insert task assignments")
	}

	if err := db.Model(&model.Task{}).Where("id IN ?", taskIDs).Update("assigned_to", primaryID).Error; err != nil {
		return apperr.Persistencef(err, "failed to update assigned_to")
	}
	return nil
}

// AssignChecklistItems sets the assignee of every item in ids in one
// statement and reports how many rows matched.
func (s *Store) AssignChecklistItems(ctx context.Context, ids []string, workerID string) (int64, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.conn(ctx).Model(&model.ChecklistItem{}).Where("id IN ?", ids).Update("assignee_id", workerID)
	if res.Error != nil {
		return 0, apperr.Persistencef(res.Error, "failed to assign checklist items")
	}
	return res.RowsAffected, nil
}

// RemoveTaskAssignment drops one worker from a task and clears assigned_to
// when it pointed at that worker.
func (s *Store) RemoveTaskAssignment(ctx context.Context, taskID, userID string) error {
	return s.WithTx(ctx, func(tx *Store) error {
		db := tx.conn(ctx)
		res := db.Where("task_id = ? AND user_id = ?", taskID, userID).Delete(&model.TaskWorkerAssignment{})
		if res.Error != nil {
			return wrapDelete("task assignment", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFoundf("assignment not found")
		}
		err := db.Model(&model.Task{}).
			Where("id = ? AND assigned_to = ?", taskID, userID).
			Update("assigned_to", nil).Error
		if err != nil {
			return wrapWrite("task", err)
		}
		return nil
	})
}

func (s *Store) ListTaskAssignments(ctx context.Context, taskID string) ([]model.TaskWorkerAssignment, error) {
	var rows []model.TaskWorkerAssignment
	err := s.conn(ctx).Where("task_id = ?", taskID).Order("is_primary DESC, created_at").Find(&rows).Error
	if err != nil {
		return nil, wrapRead("task assignments", err)
	}
	return rows, nil
}

// PrimaryAssignees maps task id to its primary worker for the given tasks.
func (s *Store) PrimaryAssignees(ctx context.Context, taskIDs []string) (map[string]string, error) {
	taskIDs = dedupe(taskIDs)
	out := make(map[string]string, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	var rows []model.TaskWorkerAssignment
	if err := s.conn(ctx).Where("task_id IN ? AND is_primary = ?", taskIDs, true).Find(&rows).Error; err != nil {
		return nil, wrapRead("task assignments", err)
	}
	for _, r := range rows {
		out[r.TaskID] = r.UserID
	}
	return out, nil
}
