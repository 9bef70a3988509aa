package store

import (
	"context"

	"gorm.io/gorm"

	"sitecrew/apperr"
	"sitecrew/model"
)

// TimeEntryFilter bounds are inclusive YYYY-MM-DD dates; empty means open.
type TimeEntryFilter struct {
	UserID string
	From   string
	To     string
}

type UserMinutes struct {
	UserID  string `json:"user_id"`
	Minutes int    `json:"minutes"`
}

func (s *Store) CreateTimeEntry(ctx context.Context, e *model.TimeEntry) error {
	if e.Minutes <= 0 {
		return apperr.Validationf("time entry must cover at least one minute")
	}
	if _, err := s.GetProject(ctx, e.ProjectID); err != nil {
		return err
	}
	if err := s.conn(ctx).Create(e).Error; err != nil {
		return wrapWrite("time entry", err)
	}
	return nil
}

func (s *Store) ListTimeEntries(ctx context.Context, f TimeEntryFilter) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	if err := s.timeEntries(ctx, f).Order("work_date, start_time").Find(&entries).Error; err != nil {
		return nil, wrapRead("time entries", err)
	}
	return entries, nil
}

// MinutesByUser totals recorded minutes per user over the filter range.
func (s *Store) MinutesByUser(ctx context.Context, f TimeEntryFilter) ([]UserMinutes, error) {
	var rows []UserMinutes
	err := s.timeEntries(ctx, f).
		Select("user_id, SUM(minutes) AS minutes").
		Group("user_id").
		Order("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapRead("time entries", err)
	}
	return rows, nil
}

func (s *Store) timeEntries(ctx context.Context, f TimeEntryFilter) *gorm.DB {
	q := s.conn(ctx).Model(&model.TimeEntry{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.From != "" {
		q = q.Where("work_date >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("work_date <= ?", f.To)
	}
	return q
}
