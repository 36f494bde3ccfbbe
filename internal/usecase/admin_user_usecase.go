package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 管理者によるユーザー操作（ロール付与・強制ログアウト）
type AdminUserUsecase struct {
	users repo.UserRepository
	guard *AdminGuard
}

func NewAdminUserUsecase(users repo.UserRepository, guard *AdminGuard) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, guard: guard}
}

func (u *AdminUserUsecase) SetRole(ctx context.Context, userID int64, role model.Role) error {
	if u.users == nil {
		return NewError(ErrConfiguration, "service credential missing")
	}
	if userID <= 0 {
		return NewError(ErrInvalidInput, "invalid user_id")
	}
	if role != model.RoleAdmin && role != model.RoleCustomer {
		return NewError(ErrInvalidInput, "invalid role")
	}

	if err := u.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(ErrNotFound, "user not found")
		}
		return WrapError(ErrPersistence, "failed to update role", err)
	}
	u.guard.Invalidate(ctx, userID)
	return nil
}

// ForceLogout はtoken_versionを上げて既存トークンを全部無効にする。
func (u *AdminUserUsecase) ForceLogout(ctx context.Context, userID int64) error {
	if u.users == nil {
		return NewError(ErrConfiguration, "service credential missing")
	}
	if userID <= 0 {
		return NewError(ErrInvalidInput, "invalid user_id")
	}

	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(ErrNotFound, "user not found")
		}
		return WrapError(ErrPersistence, "failed to revoke sessions", err)
	}
	u.guard.Invalidate(ctx, userID)
	return nil
}
