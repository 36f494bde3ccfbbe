package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const (
	DenyUnauthenticated = "unauthenticated"
	DenyForbidden       = "forbidden"
)

// トークンから取り出した呼び出し元
type Identity struct {
	UserID       int64
	TokenVersion int
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision              { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// 外部のロールストアから見たユーザー
type RoleInfo struct {
	Role         model.Role
	TokenVersion int
	Active       bool
}

// RoleProvider はユーザーのロールを返す。いなければ found=false。
type RoleProvider interface {
	RoleFor(ctx context.Context, userID int64) (info RoleInfo, found bool, err error)
}

type userRoleProvider struct {
	users repo.UserRepository
}

// NewUserRoleProvider はusersテーブルをロールストアとして使う。
func NewUserRoleProvider(users repo.UserRepository) RoleProvider {
	return &userRoleProvider{users: users}
}

func (p *userRoleProvider) RoleFor(ctx context.Context, userID int64) (RoleInfo, bool, error) {
	u, err := p.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return RoleInfo{}, false, nil
	}
	if err != nil {
		return RoleInfo{}, false, err
	}
	return RoleInfo{Role: u.Role, TokenVersion: u.TokenVersion, Active: u.IsActive}, true, nil
}

// AdminGuard は管理者操作の前に呼ぶ。
// 最終的な防御はストア側の行レベル制御で、これはアプリ層のチェック。
type AdminGuard struct {
	roles    RoleProvider
	cache    repo.RoleCache
	cacheTTL time.Duration
}

func NewAdminGuard(roles RoleProvider, cache repo.RoleCache, cacheTTL time.Duration) *AdminGuard {
	return &AdminGuard{roles: roles, cache: cache, cacheTTL: cacheTTL}
}

func (g *AdminGuard) Authorize(ctx context.Context, id *Identity) (Decision, error) {
	if id == nil || id.UserID <= 0 {
		return deny(DenyUnauthenticated), nil
	}
	if g.roles == nil {
		return Decision{}, NewError(ErrConfiguration, "service credential missing")
	}

	role, ok, err := g.resolveRole(ctx, *id)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return deny(DenyUnauthenticated), nil
	}
	if role != model.RoleAdmin {
		return deny(DenyForbidden), nil
	}
	return allow(), nil
}

// ok=false は「トークンが今のセッションに対応していない」
func (g *AdminGuard) resolveRole(ctx context.Context, id Identity) (model.Role, bool, error) {
	if g.cache != nil {
		cached, hit, err := g.cache.Get(ctx, id.UserID)
		if err != nil {
			slog.WarnContext(ctx, "role cache get failed", "user_id", id.UserID, "error", err)
		}
		if hit && cached.TokenVersion == id.TokenVersion {
			return cached.Role, true, nil
		}
	}

	info, found, err := g.roles.RoleFor(ctx, id.UserID)
	if err != nil {
		return "", false, WrapError(ErrPersistence, "role lookup failed", err)
	}
	if !found || !info.Active || info.TokenVersion != id.TokenVersion {
		g.invalidate(ctx, id.UserID)
		return "", false, nil
	}

	if g.cache != nil {
		v := repo.CachedRole{Role: info.Role, TokenVersion: info.TokenVersion}
		if err := g.cache.Set(ctx, id.UserID, v, g.cacheTTL); err != nil {
			slog.WarnContext(ctx, "role cache set failed", "user_id", id.UserID, "error", err)
		}
	}
	return info.Role, true, nil
}

// Invalidate はセッションやロールが変わったときに呼ぶ。
func (g *AdminGuard) Invalidate(ctx context.Context, userID int64) {
	g.invalidate(ctx, userID)
}

func (g *AdminGuard) invalidate(ctx context.Context, userID int64) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Invalidate(ctx, userID); err != nil {
		slog.WarnContext(ctx, "role cache invalidate failed", "user_id", userID, "error", err)
	}
}
