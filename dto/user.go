package dto

type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin manager worker viewer"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type CreateInviteRequest struct {
	Role     string `json:"role" binding:"required,oneof=admin manager worker viewer"`
	TTLHours int    `json:"ttl_hours" binding:"omitempty,min=1,max=720"`
}
