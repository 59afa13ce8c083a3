// internal/services/seller_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailibrary/prompts-backend/internal/models"
)

func TestCreateProfileDuplicate(t *testing.T) {
	db := testDB(t)
	svc := NewSellerService(db, testConfig())

	user := createTestUser(t, db)
	req := &SellerProfileRequest{
		DisplayName: "Prompt Studio",
		PayoutEmail: "studio@example.com",
	}

	_, err := svc.CreateProfile(user.ID, req)
	require.NoError(t, err)

	_, err = svc.CreateProfile(user.ID, req)
	assert.ErrorIs(t, err, ErrSellerProfileExists)
}

func TestCreateProfileInvalidPayoutEmail(t *testing.T) {
	db := testDB(t)
	svc := NewSellerService(db, testConfig())

	user := createTestUser(t, db)
	_, err := svc.CreateProfile(user.ID, &SellerProfileRequest{
		DisplayName: "Prompt Studio",
		PayoutEmail: "not-an-email",
	})
	assert.Error(t, err)
}

func TestGetDashboardThirtyDayWindow(t *testing.T) {
	db := testDB(t)
	svc := NewSellerService(db, testConfig())

	seller, profile := createTestSeller(t, db)
	product := createTestProduct(t, db, seller.ID, 50.00)

	buyer1 := createTestUser(t, db)
	buyer2 := createTestUser(t, db)

	now := time.Now()
	recent := createCompletedPurchase(t, db, buyer1.ID, product, now.AddDate(0, 0, -10))
	createCompletedPurchase(t, db, buyer2.ID, product, now.AddDate(0, 0, -40))

	// Lifetime earnings live on the profile; the dashboard window only
	// affects the monthly numbers.
	require.NoError(t, db.Model(profile).Update("total_earnings", 80.00).Error)

	dashboard, err := svc.GetDashboard(seller.ID)
	require.NoError(t, err)

	assert.Equal(t, recent.SellerAmount, dashboard.MonthlyEarnings)
	assert.Equal(t, int64(1), dashboard.MonthlySales)
	assert.Equal(t, 80.00, dashboard.AvailableBalance)
}

func TestRequestPayout(t *testing.T) {
	db := testDB(t)
	svc := NewSellerService(db, testConfig())

	seller, profile := createTestSeller(t, db)
	require.NoError(t, db.Model(profile).Update("total_earnings", 100.00).Error)

	payout, err := svc.RequestPayout(seller.ID, &PayoutRequest{Amount: 40.00})
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, payout.Status)
	assert.Equal(t, "USD", payout.Currency)

	// The pending payout reduces the available balance.
	dashboard, err := svc.GetDashboard(seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.00, dashboard.PendingPayouts)
	assert.Equal(t, 60.00, dashboard.AvailableBalance)
}

func TestRequestPayoutBelowMinimum(t *testing.T) {
	db := testDB(t)
	svc := NewSellerService(db, testConfig())

	seller, profile := createTestSeller(t, db)
	require.NoError(t, db.Model(profile).Update("total_earnings", 100.00).Error)

	_, err := svc.RequestPayout(seller.ID, &PayoutRequest{Amount: 5.00})
	assert.ErrorIs(t, err, ErrBelowMinimumPayout)
}

func TestRequestPayoutInsufficientBalance(t *testing.T) {
	db := testDB(t)
	svc := NewSellerService(db, testConfig())

	seller, profile := createTestSeller(t, db)
	require.NoError(t, db.Model(profile).Update("total_earnings", 20.00).Error)

	_, err := svc.RequestPayout(seller.ID, &PayoutRequest{Amount: 50.00})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var count int64
	require.NoError(t, db.Model(&models.Payout{}).
		Where("seller_id = ?", profile.ID).Count(&count).Error)
	assert.Zero(t, count)
}
