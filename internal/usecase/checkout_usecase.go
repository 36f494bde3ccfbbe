package usecase

import (
	"context"
	"fmt"
	"math"
	"net/mail"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 送料ルール。FreeThresholdCentsが0なら無料にしない。
type ShippingRule struct {
	FlatCents          int64
	FreeThresholdCents int64
}

func (s ShippingRule) For(subtotalCents int64) int64 {
	if s.FreeThresholdCents > 0 && subtotalCents >= s.FreeThresholdCents {
		return 0
	}
	return s.FlatCents
}

type CheckoutUsecase struct {
	tx       repo.TransactionManager
	shipping ShippingRule
	idGen    IDGenerator
	clock    Clock
}

func NewCheckoutUsecase(tx repo.TransactionManager, shipping ShippingRule, idGen IDGenerator, clock Clock) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, shipping: shipping, idGen: idGen, clock: clock}
}

type CheckoutItemInput struct {
	ProductID  string
	Title      string
	PriceCents int64
	Quantity   int64
}

// ゲートウェイ注文との紐づけは create-order（金額チェックあり）だけで行う
type PlaceOrderInput struct {
	Customer model.Customer
	Items    []CheckoutItemInput
}

// PlaceOrder はチェックアウトを受け付けて pending の注文を作る。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (model.Order, error) {
	if u.tx == nil {
		return model.Order{}, NewError(ErrConfiguration, "service credential missing")
	}

	customer, err := validateCustomer(in.Customer)
	if err != nil {
		return model.Order{}, err
	}

	if len(in.Items) == 0 {
		return model.Order{}, NewError(ErrInvalidInput, "items are required")
	}

	items := make([]model.OrderItem, 0, len(in.Items))
	var subtotal int64
	for i, it := range in.Items {
		productID := strings.TrimSpace(it.ProductID)
		title := strings.TrimSpace(it.Title)
		if productID == "" || title == "" {
			return model.Order{}, NewError(ErrInvalidInput, fmt.Sprintf("items[%d]: productId and title are required", i))
		}
		if it.PriceCents < 0 {
			return model.Order{}, NewError(ErrInvalidInput, fmt.Sprintf("items[%d]: priceCents must not be negative", i))
		}
		if it.Quantity < 1 {
			return model.Order{}, NewError(ErrInvalidInput, fmt.Sprintf("items[%d]: quantity must be positive", i))
		}

		items = append(items, model.OrderItem{
			ProductID:  productID,
			Title:      title,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
		})
		// int64を超える金額は受けない
		if it.PriceCents > 0 && it.Quantity > (math.MaxInt64-subtotal)/it.PriceCents {
			return model.Order{}, NewError(ErrInvalidInput, fmt.Sprintf("items[%d]: amount too large", i))
		}
		subtotal += it.PriceCents * it.Quantity
	}

	shipping := u.shipping.For(subtotal)
	if shipping > math.MaxInt64-subtotal {
		return model.Order{}, NewError(ErrInvalidInput, "order total too large")
	}
	now := u.clock.Now()

	order := model.Order{
		ID:            u.idGen.NewID(),
		OrderNumber:   u.orderNumber(),
		Customer:      customer,
		Items:         items,
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TotalCents:    subtotal + shipping,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		StatusHistory: []model.StatusHistoryEntry{
			{Status: model.OrderStatusPending, Timestamp: now, Note: "Order placed"},
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var out model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := r.Orders().Create(ctx, order)
		if err != nil {
			return WrapError(ErrPersistence, "failed to create order", err)
		}
		out = created
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// ORD-YYYYMMDD-XXXXXXXX
func (u *CheckoutUsecase) orderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(u.idGen.NewID(), "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "ORD-" + u.clock.Now().Format("20060102") + "-" + suffix
}

func validateCustomer(c model.Customer) (model.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)

	if c.Name == "" {
		return model.Customer{}, NewError(ErrInvalidInput, "customer name is required")
	}
	if c.Email == "" {
		return model.Customer{}, NewError(ErrInvalidInput, "customer email is required")
	}
	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email {
		return model.Customer{}, NewError(ErrInvalidInput, "invalid customer email")
	}
	return c, nil
}
