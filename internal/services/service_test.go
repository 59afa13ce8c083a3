// internal/services/service_test.go
package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ailibrary/prompts-backend/internal/config"
	"github.com/ailibrary/prompts-backend/internal/models"
)

// testDB opens the database named by TEST_DATABASE_URL and migrates the
// schema. Tests that need Postgres skip when the variable is unset.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.SellerProfile{},
		&models.Product{},
		&models.Review{},
		&models.Purchase{},
		&models.Payout{},
	))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchases_buyer_product_completed
		ON purchases (buyer_id, product_id)
		WHERE status = 'completed' AND deleted_at IS NULL`).Error)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		PayPal: config.PayPalConfig{
			FeePercent:      20.0,
			DefaultCurrency: "USD",
			MinimumPayout:   10.0,
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	suffix := uuid.New().String()[:8]
	user := &models.User{
		Username: "user_" + suffix,
		Email:    fmt.Sprintf("user-%s@example.com", suffix),
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestSeller(t *testing.T, db *gorm.DB) (*models.User, *models.SellerProfile) {
	t.Helper()

	user := createTestUser(t, db)
	profile := &models.SellerProfile{
		UserID:      user.ID,
		DisplayName: "Seller " + user.Username,
		PayoutEmail: user.Email,
	}
	require.NoError(t, db.Create(profile).Error)
	return user, profile
}

func createTestProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, price float64) *models.Product {
	t.Helper()

	content := "You are an expert assistant. Respond concisely and cite sources."
	product := &models.Product{
		SellerID:    sellerID,
		Title:       "Test Prompt",
		Slug:        "test-prompt-" + uuid.New().String()[:8],
		Description: "A reusable test prompt listing",
		Category:    "writing",
		ModelType:   "gpt-4",
		Price:       price,
		Currency:    "USD",
		Content:     content,
		Preview:     models.MakePreview(content),
		Status:      models.ProductStatusActive,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createCompletedPurchase(t *testing.T, db *gorm.DB, buyerID uuid.UUID, product *models.Product, completedAt time.Time) *models.Purchase {
	t.Helper()

	fee := product.Price * 0.2
	purchase := &models.Purchase{
		BuyerID:      buyerID,
		SellerID:     product.SellerID,
		ProductID:    product.ID,
		OrderID:      "ORDER-" + uuid.New().String()[:13],
		Amount:       product.Price,
		PlatformFee:  fee,
		SellerAmount: product.Price - fee,
		Currency:     "USD",
		Status:       models.PurchaseStatusCompleted,
		CompletedAt:  &completedAt,
	}
	require.NoError(t, db.Create(purchase).Error)
	return purchase
}
