package model

import "gorm.io/datatypes"

// ErrorLog is the append-only sink for workflow failures.
type ErrorLog struct {
	Base
	Fn     string         `gorm:"column:fn;type:varchar(64);not null;index" json:"fn"`
	Detail datatypes.JSON `gorm:"column:detail" json:"detail"`
}

func (ErrorLog) TableName() string {
	return "error_logs"
}
