package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sitecrew/apperr"
	"sitecrew/model"
	"sitecrew/notify"
	"sitecrew/store"
)

type AssignBulkRequest struct {
	WorkerID         string   `json:"workerId"`
	TaskIDs          []string `json:"taskIds"`
	ChecklistItemIDs []string `json:"checklistItemIds"`
	ProjectID        string   `json:"projectId"`
}

type AssignSummary struct {
	Tasks          int    `json:"tasks"`
	ChecklistItems int    `json:"checklistItems"`
	Worker         string `json:"worker"`
	Project        string `json:"project"`
}

type AssignWorkersRequest struct {
	TaskIDs         []string `json:"taskIds"`
	WorkerIDs       []string `json:"workerIds"`
	PrimaryWorkerID string   `json:"primaryWorkerId"`
	ProjectID       string   `json:"projectId"`
}

type AssignWorkersSummary struct {
	Tasks   int      `json:"tasks"`
	Workers []string `json:"workers"`
	Primary string   `json:"primary"`
	Project string   `json:"project"`
}

// AssignmentService replaces the assignees of a set of tasks. Every call
// deletes the prior assignments of exactly the tasks it names and inserts
// the new set in one transaction, so repeating a call is harmless.
type AssignmentService struct {
	store         *store.Store
	mirror        AssignmentMirror
	notifier      notify.Notifier
	logger        *zap.Logger
	notifyTimeout time.Duration
}

func NewAssignmentService(st *store.Store, mirror AssignmentMirror, notifier notify.Notifier, logger *zap.Logger) *AssignmentService {
	if mirror == nil {
		mirror = NopMirror{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &AssignmentService{
		store:         st,
		mirror:        mirror,
		notifier:      notifier,
		logger:        logger,
		notifyTimeout: 10 * time.Second,
	}
}

// AssignBulk makes workerId the sole primary assignee of every task and the
// assignee of every checklist item in the request.
func (s *AssignmentService) AssignBulk(ctx context.Context, req AssignBulkRequest) (*AssignSummary, error) {
	workerID := strings.TrimSpace(req.WorkerID)
	taskIDs := uniqueIDs(req.TaskIDs)
	itemIDs := uniqueIDs(req.ChecklistItemIDs)

	if workerID == "" {
		return nil, apperr.Validationf("workerId is required")
	}
	if len(taskIDs) == 0 && len(itemIDs) == 0 {
		return nil, apperr.Validationf("taskIds or checklistItemIds required")
	}

	var tasks []model.Task
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := requireUsers(ctx, tx, []string{workerID}); err != nil {
			return err
		}
		var err error
		if tasks, err = requireTasks(ctx, tx, taskIDs); err != nil {
			return err
		}
		if err := tx.ReplaceTaskAssignments(ctx, taskIDs, []string{workerID}, workerID); err != nil {
			return err
		}
		n, err := tx.AssignChecklistItems(ctx, itemIDs, workerID)
		if err != nil {
			return err
		}
		if int(n) != len(itemIDs) {
			return apperr.Validationf("%d of %d checklist items do not exist", len(itemIDs)-int(n), len(itemIDs))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := &AssignSummary{
		Tasks:          len(taskIDs),
		ChecklistItems: len(itemIDs),
		Worker:         s.workerName(ctx, workerID),
		Project:        s.projectName(ctx, req.ProjectID, tasks),
	}
	s.logger.Info("bulk assignment committed",
		zap.String("worker_id", workerID),
		zap.Int("tasks", summary.Tasks),
		zap.Int("checklist_items", summary.ChecklistItems))

	s.afterCommit(ctx, taskIDs, []string{workerID}, workerID, notify.Message{
		Title:      "New work assigned",
		Body:       assignmentBody(summary.Worker, summary.Tasks, summary.ChecklistItems, summary.Project),
		Recipients: []string{workerID},
		Data: map[string]string{
			"type":       "assign_bulk",
			"worker_id":  workerID,
			"project_id": req.ProjectID,
			"task_ids":   strings.Join(taskIDs, ","),
		},
	})
	return summary, nil
}

// AssignWorkersBulk replaces the assignees of every task with workerIds.
// The primary worker defaults to the first worker and is added to the set
// when missing.
func (s *AssignmentService) AssignWorkersBulk(ctx context.Context, req AssignWorkersRequest) (*AssignWorkersSummary, error) {
	taskIDs := uniqueIDs(req.TaskIDs)
	primary := strings.TrimSpace(req.PrimaryWorkerID)
	workerIDs := req.WorkerIDs
	if primary != "" {
		workerIDs = append([]string{primary}, workerIDs...)
	}
	workerIDs = uniqueIDs(workerIDs)

	if len(taskIDs) == 0 {
		return nil, apperr.Validationf("taskIds is required")
	}
	if len(workerIDs) == 0 {
		return nil, apperr.Validationf("workerIds is required")
	}
	if primary == "" {
		primary = workerIDs[0]
	}

	var tasks []model.Task
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := requireUsers(ctx, tx, workerIDs); err != nil {
			return err
		}
		var err error
		if tasks, err = requireTasks(ctx, tx, taskIDs); err != nil {
			return err
		}
		return tx.ReplaceTaskAssignments(ctx, taskIDs, workerIDs, primary)
	})
	if err != nil {
		return nil, err
	}

	summary := &AssignWorkersSummary{
		Tasks:   len(taskIDs),
		Workers: make([]string, 0, len(workerIDs)),
		Primary: s.workerName(ctx, primary),
		Project: s.projectName(ctx, req.ProjectID, tasks),
	}
	for _, w := range workerIDs {
		summary.Workers = append(summary.Workers, s.workerName(ctx, w))
	}
	s.logger.Info("worker assignment committed",
		zap.Strings("worker_ids", workerIDs),
		zap.String("primary_id", primary),
		zap.Int("tasks", summary.Tasks))

	s.afterCommit(ctx, taskIDs, workerIDs, primary, notify.Message{
		Title:      "Crew assigned",
		Body:       fmt.Sprintf("%s and %d others were assigned %d task(s) on %s", summary.Primary, len(workerIDs)-1, summary.Tasks, summary.Project),
		Recipients: workerIDs,
		Data: map[string]string{
			"type":       "assign_workers_bulk",
			"primary_id": primary,
			"project_id": req.ProjectID,
			"task_ids":   strings.Join(taskIDs, ","),
		},
	})
	return summary, nil
}

func (s *AssignmentService) UnassignTask(ctx context.Context, taskID, userID string) error {
	if taskID == "" || userID == "" {
		return apperr.Validationf("task id and user id are required")
	}
	if err := s.store.RemoveTaskAssignment(ctx, taskID, userID); err != nil {
		return err
	}
	if err := s.mirror.RemoveAssignment(ctx, taskID, userID); err != nil {
		s.logger.Warn("assignment mirror failed", zap.String("task_id", taskID), zap.Error(err))
	}
	return nil
}

// afterCommit runs the best-effort side effects. Failures are logged only.
func (s *AssignmentService) afterCommit(ctx context.Context, taskIDs, workerIDs []string, primary string, msg notify.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if len(taskIDs) > 0 {
		if err := s.mirror.MirrorAssignments(ctx, taskIDs, workerIDs, primary); err != nil {
			s.logger.Warn("assignment mirror failed", zap.Strings("task_ids", taskIDs), zap.Error(err))
		}
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Warn("assignment notification failed", zap.Strings("recipients", msg.Recipients), zap.Error(err))
	}
}

func (s *AssignmentService) workerName(ctx context.Context, id string) string {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return id
	}
	return u.DisplayName()
}

// projectName prefers the requested project and falls back to the project
// of the first task, then to the raw id.
func (s *AssignmentService) projectName(ctx context.Context, projectID string, tasks []model.Task) string {
	if projectID == "" && len(tasks) > 0 {
		projectID = tasks[0].ProjectID
	}
	if projectID == "" {
		return ""
	}
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil || p.Name == "" {
		return projectID
	}
	return p.Name
}

func requireTasks(ctx context.Context, tx *store.Store, ids []string) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tasks, err := tx.TasksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tasks) == len(ids) {
		return tasks, nil
	}
	found := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		found[t.ID] = struct{}{}
	}
	return nil, apperr.Validationf("unknown task ids: %s", strings.Join(missingIDs(ids, found), ", "))
}

func requireUsers(ctx context.Context, tx *store.Store, ids []string) error {
	users, err := tx.UsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(users) == len(ids) {
		return nil
	}
	found := make(map[string]struct{}, len(users))
	for _, u := range users {
		found[u.ID] = struct{}{}
	}
	return apperr.Validationf("unknown worker ids: %s", strings.Join(missingIDs(ids, found), ", "))
}

func missingIDs(ids []string, found map[string]struct{}) []string {
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func assignmentBody(worker string, tasks, items int, project string) string {
	var parts []string
	if tasks > 0 {
		parts = append(parts, fmt.Sprintf("%d task(s)", tasks))
	}
	if items > 0 {
		parts = append(parts, fmt.Sprintf("%d checklist item(s)", items))
	}
	body := fmt.Sprintf("%s was assigned %s", worker, strings.Join(parts, " and "))
	if project != "" {
		body += " on " + project
	}
	return body
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
