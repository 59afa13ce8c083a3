// internal/services/checkout_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ailibrary/prompts-backend/internal/config"
	"github.com/ailibrary/prompts-backend/internal/models"
	"github.com/ailibrary/prompts-backend/internal/paypal"
)

// PaymentGateway is the slice of the PayPal client the coordinator needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, productID uuid.UUID, title string, amount float64, currency string) (*paypal.CreateOrderResult, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error)
	FeeSplit(amount float64) (platformFee, sellerAmount float64)
}

type CheckoutService struct {
	db                  *gorm.DB
	gateway             PaymentGateway
	config              *config.Config
	notificationService *NotificationService
}

type CreateOrderRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Currency  string    `json:"currency,omitempty"`
}

type CreateOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CaptureOrderRequest struct {
	OrderID   string    `json:"order_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id,omitempty"`
}

type CaptureSummary struct {
	Success        bool      `json:"success"`
	OrderID        string    `json:"order_id"`
	PurchaseID     uuid.UUID `json:"purchase_id"`
	Status         string    `json:"status"`
	PayerEmail     string    `json:"payer_email"`
	PayerName      string    `json:"payer_name"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductContent string    `json:"product_content"`
}

func NewCheckoutService(db *gorm.DB, gateway PaymentGateway, config *config.Config, notificationService *NotificationService) *CheckoutService {
	return &CheckoutService{
		db:                  db,
		gateway:             gateway,
		config:              config,
		notificationService: notificationService,
	}
}

// CreateOrder opens a PayPal order for a product. Price and title come from
// the catalog row, never from the client.
func (s *CheckoutService) CreateOrder(ctx context.Context, buyerID uuid.UUID, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	if buyerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.Status != models.ProductStatusActive {
		return nil, ErrProductNotActive
	}

	currency := req.Currency
	if currency == "" {
		currency = product.Currency
	}

	result, err := s.gateway.CreateOrder(ctx, product.ID, product.Title, product.Price, currency)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":      result.OrderID,
		"product_id":    product.ID,
		"buyer_id":      buyerID,
		"amount":        product.Price,
		"platform_fee":  result.PlatformFee,
		"seller_amount": result.SellerAmount,
	}).Info("PayPal order created")

	return &CreateOrderResponse{ID: result.OrderID, Status: result.Status}, nil
}

// CaptureOrder turns a buyer-approved order into durable local state, exactly
// once per (buyer, product). The capture call itself is single-attempt; the
// ledger writes that follow run in one transaction so a crash cannot leave
// counters out of sync with the purchase row.
func (s *CheckoutService) CaptureOrder(ctx context.Context, buyerID uuid.UUID, req *CaptureOrderRequest) (*CaptureSummary, error) {
	if buyerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var buyer models.User
	if err := s.db.First(&buyer, "id = ?", buyerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Idempotency pre-check. The partial unique index on (buyer_id,
	// product_id) completed rows is what actually holds under concurrent
	// captures; this check just fails fast.
	if req.ProductID != uuid.Nil {
		exists, err := s.hasCompletedPurchase(buyerID, req.ProductID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicatePurchase
		}
	}

	capture, err := s.gateway.CaptureOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if capture.Status != "COMPLETED" {
		logrus.WithFields(logrus.Fields{
			"order_id": req.OrderID,
			"status":   capture.Status,
		}).Warn("Capture returned non-completed status")
		return nil, ErrCaptureNotCompleted
	}

	productID, platformFee, sellerAmount := s.resolveSettlement(capture, req.ProductID)
	if productID == uuid.Nil {
		return nil, ErrProductNotFound
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	purchase := &models.Purchase{
		BuyerID:      buyerID,
		SellerID:     product.SellerID,
		ProductID:    product.ID,
		OrderID:      capture.OrderID,
		PayerID:      capture.PayerID,
		PayerEmail:   capture.PayerEmail,
		Amount:       capture.Amount,
		PlatformFee:  platformFee,
		SellerAmount: sellerAmount,
		Currency:     capture.Currency,
		Status:       models.PurchaseStatusCompleted,
		CompletedAt:  &now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(purchase).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicatePurchase
			}
			return fmt.Errorf("failed to create purchase: %w", err)
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
			UpdateColumn("sales_count", gorm.Expr("sales_count + 1")).Error; err != nil {
			return fmt.Errorf("failed to update sales count: %w", err)
		}

		result := tx.Model(&models.SellerProfile{}).Where("user_id = ?", product.SellerID).
			Updates(map[string]interface{}{
				"total_earnings": gorm.Expr("total_earnings + ?", sellerAmount),
				"total_sales":    gorm.Expr("total_sales + 1"),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update seller earnings: %w", result.Error)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":    capture.OrderID,
		"purchase_id": purchase.ID,
		"buyer_id":    buyerID,
		"product_id":  product.ID,
		"amount":      capture.Amount,
	}).Info("Purchase settled")

	if s.notificationService != nil {
		go s.notificationService.SendPurchaseConfirmation(purchase, &product, &buyer)
		go s.notificationService.SendSaleNotification(purchase, &product)
	}

	return &CaptureSummary{
		Success:        true,
		OrderID:        capture.OrderID,
		PurchaseID:     purchase.ID,
		Status:         capture.Status,
		PayerEmail:     capture.PayerEmail,
		PayerName:      capture.PayerName,
		Amount:         capture.Amount,
		Currency:       capture.Currency,
		ProductID:      product.ID,
		ProductContent: product.Content,
	}, nil
}

// GetPurchases lists a buyer's completed purchases, newest first, each
// expanded with the unlocked product.
func (s *CheckoutService) GetPurchases(buyerID uuid.UUID, limit, page int) ([]PurchaseView, int64, error) {
	if buyerID == uuid.Nil {
		return nil, 0, ErrUnauthenticated
	}

	query := s.db.Model(&models.Purchase{}).
		Where("buyer_id = ? AND status = ?", buyerID, models.PurchaseStatusCompleted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	var purchases []models.Purchase
	if err := query.Preload("Product").
		Order("completed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	views := make([]PurchaseView, 0, len(purchases))
	for _, p := range purchases {
		views = append(views, PurchaseView{
			Purchase: p,
			Content:  p.Product.Content,
		})
	}

	return views, total, nil
}

// PurchaseView exposes the gated content alongside the ledger row. A
// completed purchase grants permanent access.
type PurchaseView struct {
	models.Purchase
	Content string `json:"product_content"`
}

func (s *CheckoutService) hasCompletedPurchase(buyerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Purchase{}).
		Where("buyer_id = ? AND product_id = ? AND status = ?",
			buyerID, productID, models.PurchaseStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing purchase: %w", err)
	}
	return count > 0, nil
}

// resolveSettlement recovers product id and fee split from the correlation
// payload. A payload that fails to decode is logged and the caller-supplied
// product id is used with the split recomputed from the captured amount.
func (s *CheckoutService) resolveSettlement(capture *paypal.CaptureResult, fallbackProductID uuid.UUID) (uuid.UUID, float64, float64) {
	if payload, ok := paypal.DecodeOrderPayload(capture.CustomID); ok {
		return payload.ProductID, payload.PlatformFee, payload.SellerAmount
	}

	logrus.WithFields(logrus.Fields{
		"order_id":  capture.OrderID,
		"custom_id": capture.CustomID,
	}).Warn("Order correlation payload could not be decoded, falling back to request product id")

	platformFee, sellerAmount := s.gateway.FeeSplit(capture.Amount)
	return fallbackProductID, platformFee, sellerAmount
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// lib/pq and pgx both surface SQLSTATE 23505 in the message.
	return strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key")
}
