package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

type redisRoleCache struct {
	client      *redis.Client
	serviceName string
}

func NewRedisRoleCache(addr, serviceName string) repo.RoleCache {
	return &redisRoleCache{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

func (r *redisRoleCache) Get(ctx context.Context, userID int64) (repo.CachedRole, bool, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return repo.CachedRole{}, false, nil
	}
	if err != nil {
		return repo.CachedRole{}, false, err
	}

	v, ok := decodeCachedRole(raw)
	if !ok {
		// 壊れた値は無かったことにする
		return repo.CachedRole{}, false, nil
	}
	return v, true, nil
}

func (r *redisRoleCache) Set(ctx context.Context, userID int64, v repo.CachedRole, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(userID), encodeCachedRole(v), ttl).Err()
}

func (r *redisRoleCache) Invalidate(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}

func (r *redisRoleCache) key(userID int64) string {
	return fmt.Sprintf("%s:admin-role:%d", r.serviceName, userID)
}

// "role|tokenVersion"
func encodeCachedRole(v repo.CachedRole) string {
	return string(v.Role) + "|" + strconv.Itoa(v.TokenVersion)
}

func decodeCachedRole(raw string) (repo.CachedRole, bool) {
	role, tv, found := strings.Cut(raw, "|")
	if !found {
		return repo.CachedRole{}, false
	}
	n, err := strconv.Atoi(tv)
	if err != nil {
		return repo.CachedRole{}, false
	}
	return repo.CachedRole{Role: model.Role(role), TokenVersion: n}, true
}
