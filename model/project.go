package model

import "time"

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

type Project struct {
	Base
	Name        string        `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Address     string        `gorm:"column:address;type:varchar(255);uniqueIndex;not null" json:"address"`
	Description string        `gorm:"column:description;type:text" json:"description"`
	Status      ProjectStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	StartDate   *time.Time    `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate     *time.Time    `gorm:"column:end_date" json:"end_date,omitempty"`
	CreatedBy   string        `gorm:"column:created_by;type:varchar(36)" json:"created_by"`
}

func (Project) TableName() string {
	return "projects"
}

type PhaseStatus string

const (
	PhasePending PhaseStatus = "pending"
	PhaseActive  PhaseStatus = "active"
	PhaseDone    PhaseStatus = "done"
)

func (s PhaseStatus) Valid() bool {
	switch s {
	case PhasePending, PhaseActive, PhaseDone:
		return true
	}
	return false
}

type Phase struct {
	Base
	ProjectID string      `gorm:"column:project_id;type:varchar(36);not null;index" json:"project_id"`
	Name      string      `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Position  int         `gorm:"column:position;not null" json:"position"`
	Status    PhaseStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	StartDate *time.Time  `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate   *time.Time  `gorm:"column:end_date" json:"end_date,omitempty"`

	Project Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE" json:"-"`
}

func (Phase) TableName() string {
	return "phases"
}
