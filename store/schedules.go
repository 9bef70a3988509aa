package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sitecrew/access"
	"sitecrew/model"
)

// GetScheduleByDate loads a day's schedule with its items and their workers.
func (s *Store) GetScheduleByDate(ctx context.Context, workDate string) (*model.Schedule, error) {
	var sch model.Schedule
	err := s.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("start_time, end_time") }).
		Preload("Items.Workers").
		Where("work_date = ?", workDate).
		First(&sch).Error
	if err != nil {
		return nil, wrapRead("schedule", err)
	}
	return &sch, nil
}

// FindOrCreateProjectByAddress reports whether the project was created.
func (s *Store) FindOrCreateProjectByAddress(ctx context.Context, address, createdBy string) (*model.Project, bool, error) {
	p, err := s.ProjectByAddress(ctx, address)
	if err != nil || p != nil {
		return p, false, err
	}
	p = &model.Project{Name: address, Address: address, Status: model.ProjectActive, CreatedBy: createdBy}
	if err := s.conn(ctx).Create(p).Error; err != nil {
		return nil, false, wrapWrite("project", err)
	}
	return p, true, nil
}

// FindOrCreateWorker resolves a schedule worker entry. An entry that is the
// id of an existing user resolves to that user; otherwise it is treated as a
// display name and a worker profile is created on a miss.
func (s *Store) FindOrCreateWorker(ctx context.Context, entry string) (*model.User, bool, error) {
	var byID model.User
	err := s.conn(ctx).Where("id = ?", entry).First(&byID).Error
	if err == nil {
		return &byID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, wrapRead("user", err)
	}

	u, err := s.FindUserByName(ctx, entry)
	if err != nil || u != nil {
		return u, false, err
	}
	u = &model.User{Name: entry, Role: access.RoleWorker, IsActive: true}
	// Imported workers have no login until they redeem an invite; the e-mail
	// column is unique so a placeholder derived from the id is used.
	u.ID = newID()
	u.Email = u.ID + "@workers.invalid"
	if err := s.conn(ctx).Create(u).Error; err != nil {
		return nil, false, wrapWrite("user", err)
	}
	return u, true, nil
}

func (s *Store) FindOrCreateSchedule(ctx context.Context, workDate string) (*model.Schedule, error) {
	sch := model.Schedule{WorkDate: workDate}
	if err := s.conn(ctx).Where("work_date = ?", workDate).FirstOrCreate(&sch).Error; err != nil {
		return nil, wrapWrite("schedule", err)
	}
	return &sch, nil
}

// FindOrCreateScheduleItem keys items on (schedule, project, start, end).
// An existing item keeps its id; its category is refreshed.
func (s *Store) FindOrCreateScheduleItem(ctx context.Context, item *model.ScheduleItem) (bool, error) {
	var existing model.ScheduleItem
	err := s.conn(ctx).
		Where("schedule_id = ? AND project_id = ? AND start_time = ? AND end_time = ?",
			item.ScheduleID, item.ProjectID, item.StartTime, item.EndTime).
		First(&existing).Error
	switch {
	case err == nil:
		item.ID = existing.ID
		if existing.Category != item.Category {
			if err := s.conn(ctx).Model(&existing).Update("category", item.Category).Error; err != nil {
				return false, wrapWrite("schedule item", err)
			}
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, wrapRead("schedule item", err)
	}
	if err := s.conn(ctx).Omit("Workers").Create(item).Error; err != nil {
		return false, wrapWrite("schedule item", err)
	}
	return true, nil
}

// LinkScheduleWorker is a no-op when the link already exists.
func (s *Store) LinkScheduleWorker(ctx context.Context, itemID, userID string) error {
	link := model.ScheduleItemWorker{ScheduleItemID: itemID, UserID: userID}
	err := s.conn(ctx).
		Where("schedule_item_id = ? AND user_id = ?", itemID, userID).
		FirstOrCreate(&link).Error
	if err != nil {
		return wrapWrite("schedule item worker", err)
	}
	return nil
}
