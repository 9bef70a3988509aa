package store

import (
	"context"

	"sitecrew/apperr"
	"sitecrew/model"
)

func (s *Store) CreateFeedback(ctx context.Context, f *model.Feedback) error {
	if err := s.conn(ctx).Omit("User").Create(f).Error; err != nil {
		return wrapWrite("feedback", err)
	}
	return nil
}

// ListFeedback returns newest first with the author preloaded. An empty
// category lists everything.
func (s *Store) ListFeedback(ctx context.Context, category string) ([]model.Feedback, error) {
	q := s.conn(ctx).Preload("User").Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []model.Feedback
	if err := q.Find(&out).Error; err != nil {
		return nil, wrapRead("feedback", err)
	}
	return out, nil
}

func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&model.Feedback{})
	if res.Error != nil {
		return wrapDelete("feedback", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("feedback not found")
	}
	return nil
}
