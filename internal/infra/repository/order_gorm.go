package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	if f.Limit <= 0 || f.Limit > repo.MaxOrderListLimit {
		f.Limit = repo.MaxOrderListLimit
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//発送待ちキュー
	if f.ReadyToShip {
		q = q.Where("(payment_status = ? OR status = ?)", model.PaymentStatusPaid, model.OrderStatusConfirmed)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	var items []model.Order
	if err := q.Order("created_at desc").Limit(f.Limit).Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if order.Version == 0 {
		order.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) Update(ctx context.Context, order model.Order, expectedVersion int64) (model.Order, error) {
	next := expectedVersion + 1

	// items・金額・顧客情報は作成後に変えない
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            order.Status,
			"payment_status":    order.PaymentStatus,
			"status_history":    order.StatusHistory,
			"payment_id":        order.PaymentID,
			"tracking_number":   order.TrackingNumber,
			"shipping_provider": order.ShippingProvider,
			"admin_notes":       order.AdminNotes,
			"shipped_at":        order.ShippedAt,
			"delivered_at":      order.DeliveredAt,
			"updated_at":        order.UpdatedAt,
			"version":           next,
		})
	if res.Error != nil {
		return model.Order{}, res.Error
	}

	if res.RowsAffected == 0 {
		return model.Order{}, r.missOrConflict(ctx, order.ID)
	}

	order.Version = next
	return order, nil
}

func (r *OrderGormRepository) AttachGatewayOrder(ctx context.Context, orderID string, gatewayOrderID string, expectedVersion int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND version = ?", orderID, expectedVersion).
		Updates(map[string]interface{}{
			"gateway_order_id": gatewayOrderID,
			"updated_at":       at,
			"version":          expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missOrConflict(ctx, orderID)
	}
	return nil
}

// 存在しないのか、versionが古いのか
func (r *OrderGormRepository) missOrConflict(ctx context.Context, orderID string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrConflict
}
