package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every entity: a UUID primary key and timestamps.
type Base struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All lists every entity for auto-migration, parents first.
func All() []any {
	return []any{
		&User{},
		&Project{},
		&Phase{},
		&Task{},
		&TaskWorkerAssignment{},
		&Checklist{},
		&ChecklistItem{},
		&Schedule{},
		&ScheduleItem{},
		&ScheduleItemWorker{},
		&TimeEntry{},
		&Material{},
		&InviteCode{},
		&Feedback{},
		&ErrorLog{},
		&PushSubscription{},
		&Attachment{},
	}
}
