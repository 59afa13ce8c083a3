// internal/services/catalog_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailibrary/prompts-backend/internal/cache"
	"github.com/ailibrary/prompts-backend/internal/models"
	"github.com/ailibrary/prompts-backend/internal/utils"
)

func TestCreateProductRequiresSellerProfile(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db, cache.Disabled())

	user := createTestUser(t, db)
	_, err := svc.CreateProduct(user.ID, &CreateProductRequest{
		Title:       "Cold Email Generator",
		Description: "Writes outreach emails from a short brief",
		Category:    "marketing",
		ModelType:   "gpt-4",
		Price:       9.99,
		Content:     "You are a sales copywriter. Given a brief, write a cold email.",
	})
	assert.ErrorIs(t, err, ErrSellerProfileMissing)
}

func TestCreateProduct(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db, cache.Disabled())

	seller, _ := createTestSeller(t, db)
	product, err := svc.CreateProduct(seller.ID, &CreateProductRequest{
		Title:       "Cold Email Generator",
		Description: "Writes outreach emails from a short brief",
		Category:    "marketing",
		ModelType:   "gpt-4",
		Price:       9.99,
		Content:     "You are a sales copywriter. Given a brief, write a cold email.",
		Tags:        []string{"email", "sales"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProductStatusActive, product.Status)
	assert.Equal(t, "USD", product.Currency)
	assert.Contains(t, product.Slug, "cold-email-generator-")
	assert.NotEmpty(t, product.Preview)
}

func TestSearchProductsFilters(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db, cache.Disabled())

	seller, _ := createTestSeller(t, db)
	cheap := createTestProduct(t, db, seller.ID, 5.00)
	expensive := createTestProduct(t, db, seller.ID, 50.00)

	min := 10.00
	params := ProductSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, SortBy: "price-high"},
		SellerID:         &seller.ID,
		PriceMin:         &min,
	}

	products, total, err := svc.SearchProducts(params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, expensive.ID, products[0].ID)

	// Without the price floor both listings match, priciest first.
	params.PriceMin = nil
	products, total, err = svc.SearchProducts(params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	assert.Equal(t, expensive.ID, products[0].ID)
	assert.Equal(t, cheap.ID, products[1].ID)
}

func TestGetProductContentGating(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db, cache.Disabled())

	seller, _ := createTestSeller(t, db)
	product := createTestProduct(t, db, seller.ID, 12.00)

	// Anonymous browsing sees the preview only.
	view, err := svc.GetProduct(product.ID.String(), nil)
	require.NoError(t, err)
	assert.False(t, view.Unlocked)
	assert.Empty(t, view.Content)
	assert.NotEmpty(t, view.Preview)

	// The owner always has the full text.
	view, err = svc.GetProduct(product.Slug, &seller.ID)
	require.NoError(t, err)
	assert.True(t, view.Unlocked)
	assert.Equal(t, product.Content, view.Content)

	// A buyer unlocks it after a completed purchase.
	buyer := createTestUser(t, db)
	view, err = svc.GetProduct(product.ID.String(), &buyer.ID)
	require.NoError(t, err)
	assert.False(t, view.Unlocked)

	createCompletedPurchase(t, db, buyer.ID, product, time.Now())
	view, err = svc.GetProduct(product.ID.String(), &buyer.ID)
	require.NoError(t, err)
	assert.True(t, view.Unlocked)
	assert.Equal(t, product.Content, view.Content)
}

func TestGetProductNotFound(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db, cache.Disabled())

	_, err := svc.GetProduct("no-such-slug", nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddReviewRequiresPurchase(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db, cache.Disabled())

	seller, _ := createTestSeller(t, db)
	product := createTestProduct(t, db, seller.ID, 12.00)
	user := createTestUser(t, db)

	_, err := svc.AddReview(user.ID, product.ID, &ReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrPurchaseRequired)
}

func TestAddReviewUpdatesAggregates(t *testing.T) {
	db := testDB(t)
	svc := NewCatalogService(db, cache.Disabled())

	seller, profile := createTestSeller(t, db)
	product := createTestProduct(t, db, seller.ID, 12.00)

	first := createTestUser(t, db)
	second := createTestUser(t, db)
	createCompletedPurchase(t, db, first.ID, product, time.Now())
	createCompletedPurchase(t, db, second.ID, product, time.Now())

	_, err := svc.AddReview(first.ID, product.ID, &ReviewRequest{Rating: 5, Comment: "Excellent"})
	require.NoError(t, err)

	_, err = svc.AddReview(second.ID, product.ID, &ReviewRequest{Rating: 3})
	require.NoError(t, err)

	var updated models.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, int64(2), updated.ReviewCount)
	assert.InDelta(t, 4.0, updated.Rating, 0.01)

	var updatedProfile models.SellerProfile
	require.NoError(t, db.First(&updatedProfile, "id = ?", profile.ID).Error)
	assert.Equal(t, profile.ReviewCount+2, updatedProfile.ReviewCount)

	// One review per buyer per product.
	_, err = svc.AddReview(first.ID, product.ID, &ReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrDuplicateReview)
}
