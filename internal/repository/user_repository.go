package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// ユーザー（ロール）の取得を約束
type UserRepository interface {
	// IDからユーザーを1件取得する。いなければ ErrNotFound。
	FindByID(ctx context.Context, userID int64) (model.User, error)
	// ロールの変更
	UpdateRole(ctx context.Context, userID int64, role model.Role) error
	//トークンのバージョンを＋１（セッション無効化）
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
