package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/model"
)

func (s *Store) CreateInviteCode(ctx context.Context, role access.Role, createdBy string, ttl time.Duration) (*model.InviteCode, error) {
	if !role.Valid() {
		return nil, apperr.Validationf("unknown role %q", role)
	}
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return nil, apperr.New(apperr.Unknown, "failed to generate invite code", err)
	}
	code := &model.InviteCode{
		Code:      hex.EncodeToString(buf),
		Role:      role,
		CreatedBy: createdBy,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.conn(ctx).Create(code).Error; err != nil {
		return nil, wrapWrite("invite code", err)
	}
	return code, nil
}

func (s *Store) ListInviteCodes(ctx context.Context) ([]model.InviteCode, error) {
	var codes []model.InviteCode
	if err := s.conn(ctx).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, wrapRead("invite codes", err)
	}
	return codes, nil
}

// RedeemInviteCode marks code as used by userID. The update is guarded on
// used_by being NULL so a code can be redeemed once.
func (s *Store) RedeemInviteCode(ctx context.Context, code, userID string, now time.Time) (*model.InviteCode, error) {
	var ic model.InviteCode
	err := s.conn(ctx).Where("code = ?", code).First(&ic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Validationf("invite code is invalid")
	}
	if err != nil {
		return nil, wrapRead("invite code", err)
	}
	if !ic.Usable(now) {
		return nil, apperr.Validationf("invite code is expired or already used")
	}
	res := s.conn(ctx).Model(&model.InviteCode{}).
		Where("id = ? AND used_by IS NULL", ic.ID).
		Updates(map[string]any{"used_by": userID, "used_at": now})
	if res.Error != nil {
		return nil, wrapWrite("invite code", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflictf("invite code was redeemed concurrently")
	}
	ic.UsedBy = &userID
	ic.UsedAt = &now
	return &ic, nil
}

// PurgeExpiredInvites deletes unused codes that expired before now.
func (s *Store) PurgeExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	res := s.conn(ctx).Where("used_by IS NULL AND expires_at < ?", now).Delete(&model.InviteCode{})
	if res.Error != nil {
		return 0, wrapDelete("invite codes", res.Error)
	}
	return res.RowsAffected, nil
}
