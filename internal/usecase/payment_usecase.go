package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// ゲートウェイへの注文作成リクエスト
type GatewayOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// PaymentGateway は外部決済サービスの注文(payment intent)を作る。
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (GatewayOrder, error)
}

type PaymentUsecase struct {
	gateway   PaymentGateway
	keySecret string
	tx        repo.TransactionManager
	lifecycle *OrderLifecycle
	clock     Clock
}

// txがnilなら注文との紐づけ・消込は ErrConfiguration になる。
func NewPaymentUsecase(gateway PaymentGateway, keySecret string, tx repo.TransactionManager, lifecycle *OrderLifecycle, clock Clock) *PaymentUsecase {
	return &PaymentUsecase{
		gateway:   gateway,
		keySecret: keySecret,
		tx:        tx,
		lifecycle: lifecycle,
		clock:     clock,
	}
}

type CreatePaymentOrderInput struct {
	//最小通貨単位（paiseなど）。小数は四捨五入する。
	Amount   *float64
	Currency string
	Receipt  string
	Notes    map[string]string
	//このサービスの注文ID（任意）
	OrderID string
}

type PaymentOrderOutput struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (u *PaymentUsecase) CreateOrder(ctx context.Context, in CreatePaymentOrderInput) (PaymentOrderOutput, error) {
	amount, err := normalizeAmount(in.Amount)
	if err != nil {
		return PaymentOrderOutput{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		return PaymentOrderOutput{}, NewError(ErrInvalidInput, "currency is required")
	}

	receipt := strings.TrimSpace(in.Receipt)
	if receipt == "" {
		receipt = fmt.Sprintf("rcpt_%d", u.clock.Now().UnixMilli())
	}

	// 紐づける注文があるなら先に確認する（ゲートウェイに注文を作る前）
	orderID := strings.TrimSpace(in.OrderID)
	var orderVersion int64
	if orderID != "" {
		v, err := u.checkOrderPayable(ctx, orderID, amount)
		if err != nil {
			return PaymentOrderOutput{}, err
		}
		orderVersion = v
	}

	notes := in.Notes
	if orderID != "" {
		notes = make(map[string]string, len(in.Notes)+1)
		for k, v := range in.Notes {
			notes[k] = v
		}
		notes["order_id"] = orderID
	}

	gwOrder, err := u.gateway.CreateOrder(ctx, GatewayOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return PaymentOrderOutput{}, err
	}

	if orderID != "" {
		// 確認したときのversionのままなら紐づける
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			return r.Orders().AttachGatewayOrder(ctx, orderID, gwOrder.ID, orderVersion, u.clock.Now())
		})
		if errors.Is(err, repo.ErrNotFound) {
			return PaymentOrderOutput{}, NewError(ErrNotFound, "order not found")
		}
		if errors.Is(err, repo.ErrConflict) {
			return PaymentOrderOutput{}, NewError(ErrConflict, "order was modified by another request")
		}
		if err != nil {
			return PaymentOrderOutput{}, WrapError(ErrPersistence, "failed to link payment order", err)
		}
	}

	return PaymentOrderOutput{
		OrderID:  gwOrder.ID,
		Amount:   gwOrder.Amount,
		Currency: gwOrder.Currency,
	}, nil
}

// 支払える注文ならそのときのversionを返す
func (u *PaymentUsecase) checkOrderPayable(ctx context.Context, orderID string, amount int64) (int64, error) {
	if u.tx == nil {
		return 0, NewError(ErrConfiguration, "service credential missing")
	}

	var version int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(ErrNotFound, "order not found")
		}
		if err != nil {
			return WrapError(ErrPersistence, "failed to load order", err)
		}
		if o.PaymentStatus == model.PaymentStatusPaid {
			return NewError(ErrInvalidInput, "order already paid")
		}
		if o.Status == model.OrderStatusCancelled {
			return NewError(ErrInvalidInput, "order is cancelled")
		}
		if o.TotalCents != amount {
			return NewError(ErrInvalidAmount, "amount does not match order total")
		}
		version = o.Version
		return nil
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// 有限の正の数だけ。四捨五入してから0以下なら不正。
func normalizeAmount(v *float64) (int64, error) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return 0, NewError(ErrInvalidAmount, "amount must be a positive number of minor units")
	}
	rounded := decimal.NewFromFloat(*v).Round(0)
	if !rounded.IsPositive() || !rounded.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
		return 0, NewError(ErrInvalidAmount, "amount must be a positive number of minor units")
	}
	return rounded.IntPart(), nil
}

type VerifyPaymentInput struct {
	//ゲートウェイ側の注文ID
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyPayment は署名を検証し、紐づく注文があれば支払い済みにする。
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, in VerifyPaymentInput) error {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return NewError(ErrInvalidInput, "orderId, paymentId and signature are required")
	}
	if u.keySecret == "" {
		return NewError(ErrConfiguration, "payment gateway secret missing")
	}

	ok, err := VerifySignature(in.OrderID, in.PaymentID, in.Signature, u.keySecret)
	if err != nil {
		return err
	}
	if !ok {
		return NewError(ErrInvalidSignature, "invalid signature")
	}

	if u.tx == nil {
		return NewError(ErrConfiguration, "service credential missing")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return u.reconcile(ctx, r, in)
	})
}

func (u *PaymentUsecase) reconcile(ctx context.Context, r repo.TxRepos, in VerifyPaymentInput) error {
	o, err := r.Orders().FindByGatewayOrderID(ctx, in.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		slog.InfoContext(ctx, "verified payment has no linked order", "gateway_order_id", in.OrderID)
		return nil
	}
	if err != nil {
		return WrapError(ErrPersistence, "failed to load order", err)
	}

	if o.PaymentStatus == model.PaymentStatusPaid {
		if o.PaymentID != nil && *o.PaymentID == in.PaymentID {
			// 同じ通知の再送
			return nil
		}
		return NewError(ErrConflict, "order already paid")
	}

	paid := model.PaymentStatusPaid
	paymentID := in.PaymentID
	ch := OrderChange{
		PaymentStatus: &paid,
		PaymentID:     &paymentID,
		Note:          "Payment verified",
	}
	if o.Status == model.OrderStatusPending {
		st := string(model.OrderStatusPaid)
		ch.Status = &st
	}

	before, after, err := u.lifecycle.Commit(ctx, r.Orders(), o.ID, ch, &o.Version)
	if err != nil {
		return err
	}

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		Action:       model.AuditActionConfirmPayment,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   o.ID,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(after),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return WrapError(ErrPersistence, "failed to write audit log", err)
	}

	slog.InfoContext(ctx, "payment reconciled", "order_id", o.ID, "gateway_order_id", in.OrderID)
	return nil
}
