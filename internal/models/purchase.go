// internal/models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is the settlement ledger row. One completed purchase per
// (buyer, product) pair; the partial unique index in the migration enforces
// this under concurrent captures, not just the pre-insert check.
type Purchase struct {
	BaseModel
	BuyerID      uuid.UUID      `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID     uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID      `json:"product_id" gorm:"type:uuid;not null;index"`
	OrderID      string         `json:"order_id" gorm:"size:64;uniqueIndex;not null"`
	PayerID      string         `json:"payer_id" gorm:"size:64"`
	PayerEmail   string         `json:"payer_email" gorm:"size:255"`
	Amount       float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	PlatformFee  float64        `json:"platform_fee" gorm:"type:decimal(10,2);not null"`
	SellerAmount float64        `json:"seller_amount" gorm:"type:decimal(10,2);not null"`
	Currency     string         `json:"currency" gorm:"size:8;not null"`
	Status       PurchaseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CompletedAt  *time.Time     `json:"completed_at" gorm:"index"`

	// Relationships
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller  User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
