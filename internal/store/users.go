package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"loom-downtime-backend/internal/model"
)

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return model.User{}, notFound(err, ErrNotFound)
	}
	return u, nil
}

// FindUserByName matches names case-insensitively.
func (s *gormStore) FindUserByName(ctx context.Context, name string) (model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&u).Error
	if err != nil {
		return model.User{}, notFound(err, ErrNotFound)
	}
	return u, nil
}

func (s *gormStore) nameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID).
		Count(&n).Error
	return n > 0, err
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	u.Name = strings.TrimSpace(u.Name)
	taken, err := s.nameTaken(ctx, u.Name, 0)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if taken {
		return ErrDuplicateName
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateUser(ctx context.Context, id int64, up UserUpdate) (model.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	updates := map[string]any{}
	if up.Name != nil {
		name := strings.TrimSpace(*up.Name)
		taken, err := s.nameTaken(ctx, name, id)
		if err != nil {
			return model.User{}, fmt.Errorf("update user %d: %w", id, err)
		}
		if taken {
			return model.User{}, ErrDuplicateName
		}
		updates["name"] = name
		u.Name = name
	}
	if up.PasswordHash != nil {
		updates["password_hash"] = *up.PasswordHash
		u.PasswordHash = *up.PasswordHash
	}
	if up.Role != nil {
		updates["role"] = *up.Role
		u.Role = *up.Role
	}
	if len(updates) == 0 {
		return u, nil
	}

	if err := s.db.WithContext(ctx).Model(&model.User{ID: id}).Updates(updates).Error; err != nil {
		return model.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	return u, nil
}

// DeleteUser removes the user and its sessions.
func (s *gormStore) DeleteUser(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Session{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateSession issues a fresh token and drops every earlier session of
// the user.
func (s *gormStore) CreateSession(ctx context.Context, userID int64) (string, error) {
	sess := model.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.Session{}).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(&sess).Error
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sess.Token, nil
}

func (s *gormStore) UserByToken(ctx context.Context, token string) (model.User, error) {
	var sess model.Session
	if err := s.db.WithContext(ctx).Preload("User").First(&sess, "token = ?", token).Error; err != nil {
		return model.User{}, notFound(err, ErrNotFound)
	}
	return sess.User, nil
}
