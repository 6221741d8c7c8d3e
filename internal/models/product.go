// internal/models/product.go
package models

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:255;not null"`
	Slug        string  `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	ImageURL    *string `json:"imageUrl" gorm:"size:1024"`
	Description *string `json:"description" gorm:"type:text"`

	Products []Product `json:"-" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE"`
}

type Product struct {
	BaseModel
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description *string         `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL    *string         `json:"imageUrl" gorm:"size:1024"`
	Stock       int             `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	CategoryID  *uint           `json:"categoryId" gorm:"index"`

	Category *Category `json:"-" gorm:"foreignKey:CategoryID"`
}
