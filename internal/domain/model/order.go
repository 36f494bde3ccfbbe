package model

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus は既知のステータス文字列だけを受け付ける。
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusPaid, OrderStatusConfirmed,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// 終端（これ以上進まない）
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// 注文時点の顧客情報（スナップショット）
type Customer struct {
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Email string `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone string `gorm:"type:varchar(50)" json:"phone"`
}

// 注文明細。作成後は変更しない。
type OrderItem struct {
	ProductID  string `json:"productId"`
	Title      string `json:"title"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int64  `json:"quantity"`
}

// ステータス履歴（追記のみ）
type StatusHistoryEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note"`
}

type Order struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderNumber string `gorm:"type:varchar(32);not null;uniqueIndex" json:"orderNumber"`

	Customer Customer `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`

	Items         datatypes.JSONSlice[OrderItem]          `gorm:"type:jsonb;not null" json:"items"`
	SubtotalCents int64                                   `gorm:"not null" json:"subtotalCents"`
	ShippingCents int64                                   `gorm:"not null" json:"shippingCents"`
	TotalCents    int64                                   `gorm:"not null" json:"totalCents"`
	Status        OrderStatus                             `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus                           `gorm:"type:varchar(20);not null;index" json:"paymentStatus"`
	StatusHistory datatypes.JSONSlice[StatusHistoryEntry] `gorm:"type:jsonb;not null" json:"statusHistory"`

	GatewayOrderID *string `gorm:"type:varchar(64);uniqueIndex" json:"gatewayOrderId"`
	PaymentID      *string `gorm:"type:varchar(64)" json:"paymentId"`

	TrackingNumber   *string `gorm:"type:varchar(128)" json:"trackingNumber"`
	ShippingProvider *string `gorm:"type:varchar(128)" json:"shippingProvider"`
	AdminNotes       *string `gorm:"type:text" json:"adminNotes"`

	// 楽観ロック用。更新ごとに+1
	Version int64 `gorm:"not null;default:1" json:"version"`

	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
	ShippedAt   *time.Time `json:"shippedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
}

// HasReached は履歴に一度でもそのステータスが記録されているか。
func (o Order) HasReached(s OrderStatus) bool {
	for _, h := range o.StatusHistory {
		if h.Status == s {
			return true
		}
	}
	return false
}

// 発送待ち（支払い済み or 確認済み）
func (o Order) ReadyToShip() bool {
	return o.PaymentStatus == PaymentStatusPaid || o.Status == OrderStatusConfirmed
}
