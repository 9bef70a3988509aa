package model

// TaskWorkerAssignment joins a task to a worker. At most one row per
// (task, user) and at most one primary row per task.
type TaskWorkerAssignment struct {
	Base
	TaskID    string `gorm:"column:task_id;type:varchar(36);not null;uniqueIndex:idx_task_worker" json:"task_id"`
	UserID    string `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_task_worker;index" json:"user_id"`
	IsPrimary bool   `gorm:"column:is_primary;not null" json:"is_primary"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

func (TaskWorkerAssignment) TableName() string {
	return "task_worker_assignments"
}
