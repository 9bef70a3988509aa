package dto

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=planning active on-hold completed"`
	StartDate   string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=planning active on-hold completed"`
	StartDate   *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type CreatePhaseRequest struct {
	Name      string `json:"name" binding:"required"`
	Position  int    `json:"position" binding:"omitempty,min=1"`
	StartDate string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type UpdatePhaseRequest struct {
	Name      *string `json:"name"`
	Position  *int    `json:"position" binding:"omitempty,min=1"`
	Status    *string `json:"status" binding:"omitempty,oneof=pending active done"`
	StartDate *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}
