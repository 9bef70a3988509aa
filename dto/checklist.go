package dto

type CreateChecklistRequest struct {
	Title string `json:"title" binding:"required"`
}

type CreateChecklistItemRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
}

type UpdateChecklistItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsDone      *bool   `json:"is_done"`
}
