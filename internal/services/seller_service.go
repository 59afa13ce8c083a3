// internal/services/seller_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ailibrary/prompts-backend/internal/config"
	"github.com/ailibrary/prompts-backend/internal/models"
	"github.com/ailibrary/prompts-backend/internal/utils"
)

type SellerService struct {
	db     *gorm.DB
	config *config.Config
}

type SellerProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=100"`
	Bio         string `json:"bio,omitempty"`
	PayoutEmail string `json:"payout_email" validate:"required,payout_email"`
}

type PayoutRequest struct {
	Amount float64 `json:"amount" validate:"required,min=0.01"`
}

type SellerDashboard struct {
	Profile          *models.SellerProfile `json:"profile"`
	MonthlyEarnings  float64               `json:"monthly_earnings"`
	MonthlySales     int64                 `json:"monthly_sales"`
	PendingPayouts   float64               `json:"pending_payouts"`
	AvailableBalance float64               `json:"available_balance"`
}

func NewSellerService(db *gorm.DB, config *config.Config) *SellerService {
	return &SellerService{db: db, config: config}
}

func (s *SellerService) GetProfile(userID uuid.UUID) (*models.SellerProfile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var profile models.SellerProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSellerProfileMissing
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &profile, nil
}

func (s *SellerService) CreateProfile(userID uuid.UUID, req *SellerProfileRequest) (*models.SellerProfile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	profile := &models.SellerProfile{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		PayoutEmail: req.PayoutEmail,
	}

	if err := s.db.Create(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSellerProfileExists
		}
		return nil, fmt.Errorf("failed to create seller profile: %w", err)
	}

	return profile, nil
}

func (s *SellerService) UpdateProfile(userID uuid.UUID, req *SellerProfileRequest) (*models.SellerProfile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"display_name": req.DisplayName,
		"payout_email": req.PayoutEmail,
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}

	if err := s.db.Model(profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update seller profile: %w", err)
	}

	return profile, nil
}

// GetDashboard aggregates trailing-30-day performance and payout state.
func (s *SellerService) GetDashboard(userID uuid.UUID) (*SellerDashboard, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -30)

	var monthly struct {
		Earnings float64
		Sales    int64
	}
	if err := s.db.Model(&models.Purchase{}).
		Where("seller_id = ? AND status = ? AND completed_at >= ?",
			userID, models.PurchaseStatusCompleted, since).
		Select("COALESCE(SUM(seller_amount), 0) AS earnings, COUNT(*) AS sales").
		Scan(&monthly).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly earnings: %w", err)
	}

	pending, err := s.pendingPayoutTotal(profile.ID)
	if err != nil {
		return nil, err
	}

	paid, err := s.paidPayoutTotal(profile.ID)
	if err != nil {
		return nil, err
	}

	return &SellerDashboard{
		Profile:          profile,
		MonthlyEarnings:  monthly.Earnings,
		MonthlySales:     monthly.Sales,
		PendingPayouts:   pending,
		AvailableBalance: profile.TotalEarnings - paid - pending,
	}, nil
}

// RequestPayout appends a pending payout record against available balance.
func (s *SellerService) RequestPayout(userID uuid.UUID, req *PayoutRequest) (*models.Payout, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	dashboard, err := s.GetDashboard(userID)
	if err != nil {
		return nil, err
	}

	if req.Amount < s.config.PayPal.MinimumPayout {
		return nil, ErrBelowMinimumPayout
	}

	if req.Amount > dashboard.AvailableBalance {
		return nil, ErrInsufficientBalance
	}

	payout := &models.Payout{
		SellerID: dashboard.Profile.ID,
		Amount:   req.Amount,
		Currency: s.config.PayPal.DefaultCurrency,
		Status:   models.PayoutStatusPending,
	}

	if err := s.db.Create(payout).Error; err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	return payout, nil
}

func (s *SellerService) pendingPayoutTotal(sellerProfileID uuid.UUID) (float64, error) {
	var total float64
	err := s.db.Model(&models.Payout{}).
		Where("seller_id = ? AND status = ?", sellerProfileID, models.PayoutStatusPending).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum pending payouts: %w", err)
	}
	return total, nil
}

func (s *SellerService) paidPayoutTotal(sellerProfileID uuid.UUID) (float64, error) {
	var total float64
	err := s.db.Model(&models.Payout{}).
		Where("seller_id = ? AND status = ?", sellerProfileID, models.PayoutStatusPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum paid payouts: %w", err)
	}
	return total, nil
}
