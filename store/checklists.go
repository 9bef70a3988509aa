package store

import (
	"context"

	"gorm.io/gorm"

	"sitecrew/apperr"
	"sitecrew/model"
)

func (s *Store) CreateChecklist(ctx context.Context, cl *model.Checklist) error {
	if _, err := s.GetTask(ctx, cl.TaskID); err != nil {
		return err
	}
	if err := s.conn(ctx).Omit("Items").Create(cl).Error; err != nil {
		return wrapWrite("checklist", err)
	}
	return nil
}

func (s *Store) ListChecklists(ctx context.Context, taskID string) ([]model.Checklist, error) {
	var lists []model.Checklist
	err := s.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("task_id = ?", taskID).
		Order("created_at").
		Find(&lists).Error
	if err != nil {
		return nil, wrapRead("checklists", err)
	}
	return lists, nil
}

// AddChecklistItem appends an item at the end of its checklist.
func (s *Store) AddChecklistItem(ctx context.Context, item *model.ChecklistItem) error {
	var cl model.Checklist
	if err := s.conn(ctx).Where("id = ?", item.ChecklistID).First(&cl).Error; err != nil {
		return wrapRead("checklist", err)
	}
	var n int64
	if err := s.conn(ctx).Model(&model.ChecklistItem{}).Where("checklist_id = ?", cl.ID).Count(&n).Error; err != nil {
		return wrapRead("checklist items", err)
	}
	item.Position = int(n) + 1
	if err := s.conn(ctx).Create(item).Error; err != nil {
		return wrapWrite("checklist item", err)
	}
	return nil
}

func (s *Store) GetChecklistItem(ctx context.Context, id string) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	if err := s.conn(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, wrapRead("checklist item", err)
	}
	return &item, nil
}

func (s *Store) UpdateChecklistItem(ctx context.Context, id string, updates map[string]any) (*model.ChecklistItem, error) {
	res := s.conn(ctx).Model(&model.ChecklistItem{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, wrapWrite("checklist item", res.Error)
	}
	return s.GetChecklistItem(ctx, id)
}

// ToggleChecklistItem flips is_done in a single statement.
func (s *Store) ToggleChecklistItem(ctx context.Context, id string) (*model.ChecklistItem, error) {
	res := s.conn(ctx).Model(&model.ChecklistItem{}).Where("id = ?", id).
		Update("is_done", gorm.Expr("NOT is_done"))
	if res.Error != nil {
		return nil, wrapWrite("checklist item", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFoundf("checklist item not found")
	}
	return s.GetChecklistItem(ctx, id)
}
