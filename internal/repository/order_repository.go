package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// 一覧の上限件数
const MaxOrderListLimit = 1000

type OrderListFilter struct {
	Status        string
	PaymentStatus string
	//paymentStatus=paid OR status=confirmed
	ReadyToShip bool
	Limit       int
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)

	// Update は order.Version == expectedVersion のときだけ書き込み、Versionを+1する。
	// 対象なしは ErrNotFound、version不一致は ErrConflict。
	Update(ctx context.Context, order model.Order, expectedVersion int64) (model.Order, error)

	// AttachGatewayOrder はゲートウェイ注文IDを紐づける。Updateと同じくversionで守り、+1する。
	AttachGatewayOrder(ctx context.Context, orderID string, gatewayOrderID string, expectedVersion int64, at time.Time) error
}
