package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	domainrepo "storefront/internal/repository"

	"gorm.io/gorm"
)

// usersテーブルをロールストアとして使う
type userGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

func (r *userGormRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Take(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, domainrepo.ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *userGormRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	return exactlyOne(r.users(ctx, id).Update("role", role))
}

// token_version + 1。発行済みトークンは全部通らなくなる。
func (r *userGormRepository) IncrementTokenVersion(ctx context.Context, id int64) error {
	return exactlyOne(r.users(ctx, id).UpdateColumn("token_version", gorm.Expr("token_version + 1")))
}

func (r *userGormRepository) users(ctx context.Context, id int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id)
}

// 0件更新は対象なし
func exactlyOne(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}
