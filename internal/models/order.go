// internal/models/order.go
package models

import (
	"github.com/shopspring/decimal"
)

type Order struct {
	BaseModel
	OrderNumber     string          `json:"orderNumber" gorm:"size:64;uniqueIndex;not null"`
	UserID          *uint           `json:"userId" gorm:"index"`
	CustomerName    string          `json:"customerName" gorm:"size:255;not null"`
	CustomerEmail   string          `json:"customerEmail" gorm:"size:255;not null"`
	CustomerPhone   string          `json:"customerPhone" gorm:"size:50;not null"`
	DeliveryAddress string          `json:"deliveryAddress" gorm:"type:text;not null"`
	DeliveryCity    string          `json:"deliveryCity" gorm:"size:255;not null"`
	DeliveryState   string          `json:"deliveryState" gorm:"size:255;not null"`
	DeliveryZip     string          `json:"deliveryZip" gorm:"size:32;not null"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(20);not null;default:'COD'"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Shipping        decimal.Decimal `json:"shipping" gorm:"type:decimal(10,2);not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	IdempotencyKey  *string         `json:"-" gorm:"size:128;uniqueIndex"`

	User  *User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem keeps a snapshot of the product at checkout time. ProductID is
// not a foreign key so products can change or disappear later.
type OrderItem struct {
	BaseModel
	OrderID     uint            `json:"orderId" gorm:"not null;index"`
	ProductID   uint            `json:"productId" gorm:"not null;index"`
	ProductName string          `json:"productName" gorm:"size:255;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	ImageURL    *string         `json:"imageUrl" gorm:"size:1024"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
