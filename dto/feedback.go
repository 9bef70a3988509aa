package dto

type FeedbackRequest struct {
	CategoryID int    `json:"category_id" binding:"required,min=1,max=6"`
	Message    string `json:"message" binding:"required,max=2000"`
}
