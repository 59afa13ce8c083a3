// internal/models/product.go
package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PreviewLength bounds how much of the gated content a listing may expose.
const PreviewLength = 200

type Product struct {
	BaseModel
	SellerID    uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;size:300;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"size:100;index"`
	ModelType   string         `json:"model_type" gorm:"size:100;index"`
	Price       float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Currency    string         `json:"currency" gorm:"size:8;default:'USD'"`
	Content     string         `json:"-" gorm:"type:text;not null"`
	Preview     string         `json:"preview" gorm:"type:text"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	Featured    bool           `json:"featured" gorm:"default:false;index"`
	Status      ProductStatus  `json:"status" gorm:"type:varchar(20);default:'active';index"`
	ViewCount   int64          `json:"view_count" gorm:"default:0"`
	SalesCount  int64          `json:"sales_count" gorm:"default:0"`
	Rating      float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount int64          `json:"review_count" gorm:"default:0"`

	// Relationships
	Seller    User       `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:ProductID"`
	Reviews   []Review   `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

// MakePreview derives the public excerpt from gated content. The full text is
// only ever returned to the owner or a buyer with a completed purchase.
func MakePreview(content string) string {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) <= PreviewLength {
		return trimmed
	}
	return strings.TrimSpace(trimmed[:PreviewLength]) + "..."
}

type Review struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
