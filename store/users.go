package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/model"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email != "" {
		var n int64
		if err := s.conn(ctx).Model(&model.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
			return wrapRead("user", err)
		}
		if n > 0 {
			return apperr.Conflictf("email %s is already registered", u.Email)
		}
	}
	if err := s.conn(ctx).Create(u).Error; err != nil {
		return wrapWrite("user", err)
	}
	return nil
}

// GetUser is served from the cache when possible. The returned value is a
// copy and may be modified freely.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	if u, ok := cacheGet[model.User](s.readCache(), entityUser, id); ok {
		return &u, nil
	}
	var u model.User
	if err := s.conn(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, wrapRead("user", err)
	}
	s.readCache().Set(entityUser, id, u)
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, wrapRead("user", err)
	}
	return &u, nil
}

// FindUserByName matches display names case-insensitively. A miss returns
// (nil, nil).
func (s *Store) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User
	err := s.conn(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("created_at").First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRead("user", err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.conn(ctx).Order("name").Find(&users).Error; err != nil {
		return nil, wrapRead("users", err)
	}
	return users, nil
}

// UsersByIDs returns the users that exist among ids; unknown ids are skipped.
func (s *Store) UsersByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrapRead("users", err)
	}
	return users, nil
}

func (s *Store) SetUserRole(ctx context.Context, id string, role access.Role) error {
	if !role.Valid() {
		return apperr.Validationf("unknown role %q", role)
	}
	return s.updateUser(ctx, id, "role", role)
}

func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	return s.updateUser(ctx, id, "is_active", active)
}

func (s *Store) SetUserPassword(ctx context.Context, id, hash string) error {
	return s.updateUser(ctx, id, "password_hash", hash)
}

// UpdateProfile changes the self-service fields of a user.
func (s *Store) UpdateProfile(ctx context.Context, id string, name, avatarURL *string) (*model.User, error) {
	updates := map[string]any{}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*name)
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}
	if len(updates) == 0 {
		return nil, apperr.Validationf("no fields to update")
	}
	s.invalidate(entityUser, id)
	if err := s.conn(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, wrapWrite("user", err)
	}
	return s.GetUser(ctx, id)
}

func (s *Store) updateUser(ctx context.Context, id, column string, value any) error {
	defer s.invalidate(entityUser, id)

	res := s.conn(ctx).Model(&model.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return wrapWrite("user", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero rows when the value is unchanged.
		if _, err := s.GetUser(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
