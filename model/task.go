package model

import (
	"time"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskReview     TaskStatus = "review"
	TaskCompleted  TaskStatus = "completed"
)

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskTodo:       {TaskInProgress},
	TaskInProgress: {TaskTodo, TaskReview},
	TaskReview:     {TaskInProgress, TaskCompleted},
	TaskCompleted:  {TaskInProgress},
}

func (s TaskStatus) Valid() bool {
	_, ok := taskTransitions[s]
	return ok
}

// CanTransition reports whether a task may move from s to next.
// Staying in the same status is always allowed.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	Base
	Title       string       `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string       `gorm:"column:description;type:text" json:"description"`
	Status      TaskStatus   `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Priority    TaskPriority `gorm:"column:priority;type:varchar(10);not null" json:"priority"`
	ProjectID   string       `gorm:"column:project_id;type:varchar(36);not null;index" json:"project_id"`
	PhaseID     *string      `gorm:"column:phase_id;type:varchar(36);index" json:"phase_id,omitempty"`
	// AssignedTo is the legacy single-assignee column kept for older readers;
	// TaskWorkerAssignment rows are authoritative.
	AssignedTo *string    `gorm:"column:assigned_to;type:varchar(36);index" json:"assigned_to,omitempty"`
	DueDate    *time.Time `gorm:"column:due_date;index" json:"due_date,omitempty"`
	CreatedBy  string     `gorm:"column:created_by;type:varchar(36)" json:"created_by"`

	Project Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
