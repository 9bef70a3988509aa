package model

type Checklist struct {
	Base
	TaskID string `gorm:"column:task_id;type:varchar(36);not null;index" json:"task_id"`
	Title  string `gorm:"column:title;type:varchar(255);not null" json:"title"`

	Items []ChecklistItem `gorm:"foreignKey:ChecklistID;references:ID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Checklist) TableName() string {
	return "checklists"
}

type ChecklistItem struct {
	Base
	ChecklistID string  `gorm:"column:checklist_id;type:varchar(36);not null;index" json:"checklist_id"`
	Title       string  `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string  `gorm:"column:description;type:text" json:"description,omitempty"`
	IsDone      bool    `gorm:"column:is_done;not null" json:"is_done"`
	AssigneeID  *string `gorm:"column:assignee_id;type:varchar(36);index" json:"assignee_id,omitempty"`
	Position    int     `gorm:"column:position;not null" json:"position"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}
