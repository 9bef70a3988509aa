package store

import (
	"context"

	"gorm.io/gorm/clause"

	"sitecrew/model"
)

// UpsertPushSubscription stores a browser subscription keyed by endpoint.
// Re-subscribing the same endpoint moves it to the current user.
func (s *Store) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh_key", "auth_key", "updated_at"}),
	}).Create(sub).Error
	if err != nil {
		return wrapWrite("push subscription", err)
	}
	return nil
}

func (s *Store) PushSubscriptionsFor(ctx context.Context, userIDs []string) ([]model.PushSubscription, error) {
	userIDs = dedupe(userIDs)
	if len(userIDs) == 0 {
		return nil, nil
	}
	var subs []model.PushSubscription
	if err := s.conn(ctx).Where("user_id IN ?", userIDs).Find(&subs).Error; err != nil {
		return nil, wrapRead("push subscriptions", err)
	}
	return subs, nil
}

func (s *Store) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.conn(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error; err != nil {
		return wrapDelete("push subscription", err)
	}
	return nil
}
