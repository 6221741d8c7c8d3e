// internal/models/events.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventTypeOrderPlaced = "ORDER_PLACED"

type OrderPlacedEvent struct {
	EventType   string           `json:"eventType"`
	OrderID     uint             `json:"orderId"`
	OrderNumber string           `json:"orderNumber"`
	UserID      *uint            `json:"userId"`
	Items       []OrderEventItem `json:"items"`
	Total       decimal.Decimal  `json:"total"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

type OrderEventItem struct {
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}
