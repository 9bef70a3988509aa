package model

type Attachment struct {
	Base
	TaskID      string `gorm:"column:task_id;type:varchar(36);not null;index" json:"task_id"`
	ObjectKey   string `gorm:"column:object_key;type:varchar(512);not null" json:"object_key"`
	FileName    string `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	ContentType string `gorm:"column:content_type;type:varchar(128);not null" json:"content_type"`
	UploadedBy  string `gorm:"column:uploaded_by;type:varchar(36);not null" json:"uploaded_by"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

func (Attachment) TableName() string {
	return "attachments"
}
