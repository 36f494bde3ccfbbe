package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	lifecycle *OrderLifecycle
	clock     Clock
}

// txがnil（service-roleの資格情報なし）なら全操作が ErrConfiguration。
func NewAdminOrderUsecase(tx repo.TransactionManager, lifecycle *OrderLifecycle, clock Clock) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, lifecycle: lifecycle, clock: clock}
}

type AdminOrderListInput struct {
	Status        string
	PaymentStatus string
}

type AdminUpdateOrderInput struct {
	Status           *string
	TrackingNumber   *string
	ShippingProvider *string
	AdminNotes       *string
	//If-Match で渡されたversion
	IfVersion *int64
}

// 注文一覧。条件なしなら発送待ち（paymentStatus=paid OR status=confirmed）。
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) ([]model.Order, error) {
	if u.tx == nil {
		return nil, NewError(ErrConfiguration, "service credential missing")
	}

	f := repo.OrderListFilter{Limit: repo.MaxOrderListLimit}

	status := strings.TrimSpace(in.Status)
	if status != "" {
		if _, ok := model.ParseOrderStatus(status); !ok {
			return nil, NewError(ErrInvalidInput, "invalid status")
		}
		f.Status = status
	}

	paymentStatus := strings.TrimSpace(in.PaymentStatus)
	switch model.PaymentStatus(paymentStatus) {
	case "", model.PaymentStatusPaid, model.PaymentStatusUnpaid:
		f.PaymentStatus = paymentStatus
	default:
		return nil, NewError(ErrInvalidInput, "invalid paymentStatus")
	}

	if f.Status == "" && f.PaymentStatus == "" {
		f.ReadyToShip = true
	}

	var orders []model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		orders, err = r.Orders().List(ctx, f)
		if err != nil {
			return WrapError(ErrPersistence, "failed to list orders", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID string) (model.Order, error) {
	if u.tx == nil {
		return model.Order{}, NewError(ErrConfiguration, "service credential missing")
	}
	if strings.TrimSpace(orderID) == "" {
		return model.Order{}, NewError(ErrInvalidInput, "invalid id")
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(ErrNotFound, "order not found")
		}
		if err != nil {
			return WrapError(ErrPersistence, "failed to load order", err)
		}
		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// Update はステータス・追跡番号などを更新し、同じTxで監査ログを残す。
func (u *AdminOrderUsecase) Update(ctx context.Context, actorAdminUserID int64, orderID string, in AdminUpdateOrderInput) (model.Order, error) {
	if u.tx == nil {
		return model.Order{}, NewError(ErrConfiguration, "service credential missing")
	}
	if actorAdminUserID <= 0 {
		return model.Order{}, NewError(ErrUnauthorized, "log in")
	}
	if strings.TrimSpace(orderID) == "" {
		return model.Order{}, NewError(ErrInvalidInput, "invalid id")
	}

	ch := OrderChange{
		Status:           in.Status,
		TrackingNumber:   in.TrackingNumber,
		ShippingProvider: in.ShippingProvider,
		AdminNotes:       in.AdminNotes,
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, after, err := u.lifecycle.Commit(ctx, r.Orders(), orderID, ch, in.IfVersion)
		if err != nil {
			return err
		}

		// ★監査ログ（UPDATE_ORDER）
		actor := actorAdminUserID
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  &actor,
			Action:       model.AuditActionUpdateOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   auditJSON(before),
			AfterJSON:    auditJSON(after),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return WrapError(ErrPersistence, "failed to write audit log", err)
		}

		out = after
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// 注文の監査ログ（新しい順）
func (u *AdminOrderUsecase) AuditLogs(ctx context.Context, orderID string, limit int) ([]model.AuditLog, error) {
	if u.tx == nil {
		return nil, NewError(ErrConfiguration, "service credential missing")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, NewError(ErrInvalidInput, "invalid id")
	}
	if limit < 0 || limit > repo.MaxAuditLogLimit {
		return nil, NewError(ErrInvalidInput, "invalid limit")
	}

	rt := model.AuditResourceOrder
	var logs []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		logs, err = r.AuditLogs().List(ctx, repo.AuditLogFilter{
			ResourceType: &rt,
			ResourceID:   &orderID,
			Limit:        limit,
		})
		if err != nil {
			return WrapError(ErrPersistence, "failed to list audit logs", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}
