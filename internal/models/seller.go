// internal/models/seller.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerProfile aggregates are mutated only by completed purchases, reviews
// and payout events.
type SellerProfile struct {
	BaseModel
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	DisplayName   string    `json:"display_name" gorm:"size:100;not null"`
	Bio           string    `json:"bio" gorm:"type:text"`
	PayoutEmail   string    `json:"payout_email" gorm:"size:255;not null"`
	TotalEarnings float64   `json:"total_earnings" gorm:"type:decimal(12,2);default:0"`
	TotalSales    int64     `json:"total_sales" gorm:"default:0"`
	Rating        float64   `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount   int64     `json:"review_count" gorm:"default:0"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Payout is an append-only batch settlement record.
type Payout struct {
	BaseModel
	SellerID uuid.UUID    `json:"seller_id" gorm:"type:uuid;not null;index"`
	Amount   float64      `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency string       `json:"currency" gorm:"size:8;not null"`
	Status   PayoutStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaidAt   *time.Time   `json:"paid_at"`

	Seller SellerProfile `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
