package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/collegebuddy/api/utils/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserFilter narrows the superadmin user listing
type UserFilter struct {
	Roles  []string
	Search string
	Page   int
	Limit  int
}

// ListUsers returns one page of users, newest first
func (s *Service) ListUsers(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.User{})
	if len(f.Roles) > 0 {
		query = query.Where("role IN ?", f.Roles)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	q := query.Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Offset((max(f.Page, 1) - 1) * f.Limit).Limit(f.Limit)
	}
	err := q.Find(&users).Error
	return users, total, err
}

func validRole(role string) bool {
	return auth.HasAnyRole(role, model.RoleUser, model.RoleStudent, model.RoleAdmin, model.RoleSuperAdmin)
}

// CreateUser is the superadmin path: any role, already verified, no referral
func (s *Service) CreateUser(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleStudent
	}
	if !validRole(in.Role) {
		return nil, ErrInvalidRole
	}
	in.ReferralCode = ""
	user, _, _, err := s.createUser(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.L().Info("user created by superadmin", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// UpdateRole changes a role and signs the user out so the new role applies
func (s *Service) UpdateRole(ctx context.Context, id uint, role string) (*model.User, error) {
	if !validRole(role) {
		return nil, ErrInvalidRole
	}
	user, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("role", role).Error; err != nil {
			return err
		}
		return auth.RevokeAllUserTokens(tx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = role
	user.TokenVersion++
	return user, nil
}

// DeleteUser never hard deletes. Admins are downgraded to STUDENT; everyone
// else is soft deleted. The returned user is nil when soft deleted.
func (s *Service) DeleteUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsElevated() {
		return s.UpdateRole(ctx, id, model.RoleStudent)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := auth.RevokeAllUserTokens(tx, id); err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return nil, err
	}
	logger.L().Info("user soft deleted", zap.Uint("user_id", id))
	return nil, nil
}
