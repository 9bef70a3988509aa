package model

// TimeEntry is one block of work on a time sheet. Minutes is derived from
// the clock times when the entry is recorded.
type TimeEntry struct {
	Base
	UserID    string  `gorm:"column:user_id;type:varchar(36);not null;index:idx_time_user_date" json:"user_id"`
	ProjectID string  `gorm:"column:project_id;type:varchar(36);not null;index" json:"project_id"`
	TaskID    *string `gorm:"column:task_id;type:varchar(36);index" json:"task_id,omitempty"`
	WorkDate  string  `gorm:"column:work_date;type:varchar(10);not null;index:idx_time_user_date" json:"work_date"`
	StartTime string  `gorm:"column:start_time;type:varchar(5);not null" json:"start_time"`
	EndTime   string  `gorm:"column:end_time;type:varchar(5);not null" json:"end_time"`
	Minutes   int     `gorm:"column:minutes;not null" json:"minutes"`
	Note      string  `gorm:"column:note;type:text" json:"note,omitempty"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}
