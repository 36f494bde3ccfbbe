package usecase

import (
	"encoding/json"

	"storefront/internal/domain/model"
)

// 監査ログに残す注文の項目
type orderAuditSnapshot struct {
	Status           model.OrderStatus   `json:"status"`
	PaymentStatus    model.PaymentStatus `json:"paymentStatus"`
	PaymentID        *string             `json:"paymentId"`
	TrackingNumber   *string             `json:"trackingNumber"`
	ShippingProvider *string             `json:"shippingProvider"`
	AdminNotes       *string             `json:"adminNotes"`
	Version          int64               `json:"version"`
}

func auditJSON(o model.Order) string {
	b, err := json.Marshal(orderAuditSnapshot{
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		PaymentID:        o.PaymentID,
		TrackingNumber:   o.TrackingNumber,
		ShippingProvider: o.ShippingProvider,
		AdminNotes:       o.AdminNotes,
		Version:          o.Version,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}
