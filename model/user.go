package model

import "sitecrew/access"

type User struct {
	Base
	Email        string      `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string      `gorm:"column:name;type:varchar(255);not null;index" json:"name"`
	Role         access.Role `gorm:"column:role;type:varchar(20);not null" json:"role"`
	AvatarURL    string      `gorm:"column:avatar_url;type:varchar(512)" json:"avatar_url"`
	PasswordHash string      `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	IsActive     bool        `gorm:"column:is_active;not null" json:"is_active"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName falls back to the e-mail and then the id.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}
