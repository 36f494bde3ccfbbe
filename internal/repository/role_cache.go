package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// キャッシュしたロール。TokenVersionが違えばセッションが変わったので無効。
type CachedRole struct {
	Role         model.Role
	TokenVersion int
}

type RoleCache interface {
	Get(ctx context.Context, userID int64) (CachedRole, bool, error)
	Set(ctx context.Context, userID int64, v CachedRole, ttl time.Duration) error
	Invalidate(ctx context.Context, userID int64) error
}
