package store

import (
	"context"

	"sitecrew/model"
)

func (s *Store) CreateAttachment(ctx context.Context, a *model.Attachment) error {
	if _, err := s.GetTask(ctx, a.TaskID); err != nil {
		return err
	}
	if err := s.conn(ctx).Omit("Task").Create(a).Error; err != nil {
		return wrapWrite("attachment", err)
	}
	return nil
}

func (s *Store) ListAttachments(ctx context.Context, taskID string) ([]model.Attachment, error) {
	var out []model.Attachment
	if err := s.conn(ctx).Where("task_id = ?", taskID).Order("created_at").Find(&out).Error; err != nil {
		return nil, wrapRead("attachments", err)
	}
	return out, nil
}
