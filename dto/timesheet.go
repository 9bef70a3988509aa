package dto

type CreateTimeEntryRequest struct {
	ProjectID string  `json:"project_id" binding:"required"`
	TaskID    *string `json:"task_id"`
	WorkDate  string  `json:"work_date" binding:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	Note      string  `json:"note"`
}
