package dto

type CreateTaskRequest struct {
	ProjectID   string  `json:"project_id" binding:"required"`
	PhaseID     *string `json:"phase_id"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     string  `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

type QuickAddTaskRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	PhaseID     *string `json:"phase_id"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

type TaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=todo in-progress review completed"`
}
