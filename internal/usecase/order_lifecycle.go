package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// TransitionPolicy は from→to の変更を許すかを決める。
type TransitionPolicy func(from, to model.OrderStatus) error

// AllowAnyTransition は管理者の操作を制限しない（既定）。
func AllowAnyTransition(from, to model.OrderStatus) error {
	return nil
}

var strictTransitions = map[model.OrderStatus]map[model.OrderStatus]bool{
	model.OrderStatusPending:   {model.OrderStatusPaid: true, model.OrderStatusConfirmed: true, model.OrderStatusCancelled: true},
	model.OrderStatusPaid:      {model.OrderStatusConfirmed: true, model.OrderStatusShipped: true, model.OrderStatusCancelled: true},
	model.OrderStatusConfirmed: {model.OrderStatusShipped: true, model.OrderStatusCancelled: true},
	model.OrderStatusShipped:   {model.OrderStatusDelivered: true, model.OrderStatusCancelled: true},
}

// StrictTransitions は前進とキャンセルだけを許す。
func StrictTransitions(from, to model.OrderStatus) error {
	if strictTransitions[from][to] {
		return nil
	}
	return fmt.Errorf("cannot change status from %s to %s", from, to)
}

// OrderChange は注文への変更。nilのフィールドは変更しない。
// 文字列フィールドは空文字でnullに戻す。
type OrderChange struct {
	Status           *string
	TrackingNumber   *string
	ShippingProvider *string
	AdminNotes       *string

	// 支払い確定で使う
	PaymentStatus *model.PaymentStatus
	PaymentID     *string

	// 履歴のメモ。空なら "Status updated to <status>"
	Note string
}

// OrderLifecycle はステータス遷移と派生フィールド（履歴・発送日時など）を扱う。
type OrderLifecycle struct {
	policy TransitionPolicy
	clock  Clock
}

func NewOrderLifecycle(policy TransitionPolicy, clock Clock) *OrderLifecycle {
	if policy == nil {
		policy = AllowAnyTransition
	}
	return &OrderLifecycle{policy: policy, clock: clock}
}

// Apply は変更をマージした注文を返す。元の注文は変更しない。
func (l *OrderLifecycle) Apply(o model.Order, ch OrderChange) (model.Order, error) {
	now := l.clock.Now()
	next := o
	next.StatusHistory = append(make([]model.StatusHistoryEntry, 0, len(o.StatusHistory)+1), o.StatusHistory...)

	if ch.Status != nil {
		newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(*ch.Status))
		if !ok {
			return model.Order{}, NewError(ErrInvalidInput, "invalid status")
		}

		if newStatus != o.Status {
			if err := l.policy(o.Status, newStatus); err != nil {
				return model.Order{}, WrapError(ErrInvalidInput, err.Error(), err)
			}

			// 派生日時は最初に到達したときだけ
			if newStatus == model.OrderStatusShipped && !o.HasReached(model.OrderStatusShipped) {
				t := now
				next.ShippedAt = &t
			}
			if newStatus == model.OrderStatusDelivered && !o.HasReached(model.OrderStatusDelivered) {
				t := now
				next.DeliveredAt = &t
			}

			note := ch.Note
			if note == "" {
				note = "Status updated to " + string(newStatus)
			}
			next.StatusHistory = append(next.StatusHistory, model.StatusHistoryEntry{
				Status:    newStatus,
				Timestamp: now,
				Note:      note,
			})
			next.Status = newStatus
		}
	}

	if ch.TrackingNumber != nil {
		next.TrackingNumber = nullable(*ch.TrackingNumber)
	}
	if ch.ShippingProvider != nil {
		next.ShippingProvider = nullable(*ch.ShippingProvider)
	}
	if ch.AdminNotes != nil {
		next.AdminNotes = nullable(*ch.AdminNotes)
	}
	if ch.PaymentStatus != nil {
		next.PaymentStatus = *ch.PaymentStatus
	}
	if ch.PaymentID != nil {
		next.PaymentID = nullable(*ch.PaymentID)
	}

	next.UpdatedAt = now
	return next, nil
}

// Commit は注文を読み、変更をマージして書き戻す。
// ifVersion があれば読んだ注文のversionと一致しないとき ErrConflict。
// 書き込みに失敗したら何もコミットされていない前提で ErrPersistence。
func (l *OrderLifecycle) Commit(ctx context.Context, orders repo.OrderRepository, orderID string, ch OrderChange, ifVersion *int64) (before model.Order, after model.Order, err error) {
	before, err = orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, model.Order{}, NewError(ErrNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, model.Order{}, WrapError(ErrPersistence, "failed to load order", err)
	}

	if ifVersion != nil && *ifVersion != before.Version {
		return model.Order{}, model.Order{}, NewError(ErrConflict, "order was modified by another request")
	}

	merged, err := l.Apply(before, ch)
	if err != nil {
		return model.Order{}, model.Order{}, err
	}

	after, err = orders.Update(ctx, merged, before.Version)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return model.Order{}, model.Order{}, NewError(ErrNotFound, "order not found")
	case errors.Is(err, repo.ErrConflict):
		return model.Order{}, model.Order{}, NewError(ErrConflict, "order was modified by another request")
	case err != nil:
		return model.Order{}, model.Order{}, WrapError(ErrPersistence, "failed to save order", err)
	}
	return before, after, nil
}

// 空文字はnull
func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
