package model

// Schedule groups the work of one calendar day. WorkDate is YYYY-MM-DD.
type Schedule struct {
	Base
	WorkDate string `gorm:"column:work_date;type:varchar(10);uniqueIndex;not null" json:"work_date"`

	Items []ScheduleItem `gorm:"foreignKey:ScheduleID;references:ID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// ScheduleItem is one crew visit to a project address. The natural key is
// (schedule, project, start, end), which keeps repeated imports idempotent.
type ScheduleItem struct {
	Base
	ScheduleID string `gorm:"column:schedule_id;type:varchar(36);not null;uniqueIndex:idx_schedule_slot" json:"schedule_id"`
	ProjectID  string `gorm:"column:project_id;type:varchar(36);not null;uniqueIndex:idx_schedule_slot" json:"project_id"`
	Category   string `gorm:"column:category;type:varchar(32);not null" json:"category"`
	StartTime  string `gorm:"column:start_time;type:varchar(5);not null;uniqueIndex:idx_schedule_slot" json:"start_time"`
	EndTime    string `gorm:"column:end_time;type:varchar(5);not null;uniqueIndex:idx_schedule_slot" json:"end_time"`

	Workers []ScheduleItemWorker `gorm:"foreignKey:ScheduleItemID;references:ID;constraint:OnDelete:CASCADE" json:"workers,omitempty"`
}

func (ScheduleItem) TableName() string {
	return "schedule_items"
}

type ScheduleItemWorker struct {
	Base
	ScheduleItemID string `gorm:"column:schedule_item_id;type:varchar(36);not null;uniqueIndex:idx_item_worker" json:"schedule_item_id"`
	UserID         string `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_item_worker" json:"user_id"`
}

func (ScheduleItemWorker) TableName() string {
	return "schedule_item_workers"
}

// ScheduleCategories is the closed set of trade categories a schedule item
// may carry.
var ScheduleCategories = []string{
	"general",
	"demolition",
	"framing",
	"roofing",
	"electrical",
	"plumbing",
	"hvac",
	"drywall",
	"painting",
	"flooring",
	"inspection",
	"cleanup",
}

func ValidScheduleCategory(c string) bool {
	for _, v := range ScheduleCategories {
		if v == c {
			return true
		}
	}
	return false
}
