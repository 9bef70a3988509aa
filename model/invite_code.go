package model

import (
	"time"

	"sitecrew/access"
)

type InviteCode struct {
	Base
	Code      string      `gorm:"column:code;type:varchar(64);uniqueIndex;not null" json:"code"`
	Role      access.Role `gorm:"column:role;type:varchar(20);not null" json:"role"`
	CreatedBy string      `gorm:"column:created_by;type:varchar(36);not null" json:"created_by"`
	ExpiresAt time.Time   `gorm:"column:expires_at;not null;index" json:"expires_at"`
	UsedBy    *string     `gorm:"column:used_by;type:varchar(36)" json:"used_by,omitempty"`
	UsedAt    *time.Time  `gorm:"column:used_at" json:"used_at,omitempty"`
}

func (InviteCode) TableName() string {
	return "invite_codes"
}

func (c *InviteCode) Usable(now time.Time) bool {
	return c.UsedBy == nil && now.Before(c.ExpiresAt)
}
