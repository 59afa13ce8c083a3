// internal/services/catalog_service.go
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

	"github.com/ailibrary/prompts-backend/internal/cache"
	"github.com/ailibrary/prompts-backend/internal/models"
	"github.com/ailibrary/prompts-backend/internal/utils"
)

const (
	popularCacheKey  = "catalog:popular"
	featuredCacheKey = "catalog:featured"
	catalogCacheTTL  = 5 * time.Minute
)

type CatalogService struct {
	db    *gorm.DB
	cache *cache.Cache
}

type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"required,min=10"`
	Category    string   `json:"category" validate:"required"`
	ModelType   string   `json:"model_type" validate:"required"`
	Price       float64  `json:"price" validate:"required,min=0.01"`
	Currency    string   `json:"currency,omitempty"`
	Content     string   `json:"content" validate:"required,min=10"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	ModelType string
	PriceMin  *float64
	PriceMax  *float64
	MinRating *float64
	Featured  *bool
	SellerID  *uuid.UUID
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}

// ProductView is a product with the content field resolved against the
// requesting identity: full text for the owner or a completed buyer, empty
// otherwise. The preview stays a bounded prefix either way.
type ProductView struct {
	models.Product
	Content  string `json:"content,omitempty"`
	Unlocked bool   `json:"unlocked"`
}

func NewCatalogService(db *gorm.DB, c *cache.Cache) *CatalogService {
	return &CatalogService{db: db, cache: c}
}

// CreateProduct registers a new prompt listing. The seller must hold a
// profile so settlement always has an earnings row to credit.
func (s *CatalogService) CreateProduct(sellerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if sellerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var seller models.User
	if err := s.db.First(&seller, "id = ?", sellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if seller.Status != models.UserStatusActive {
		return nil, ErrUserNotActive
	}

	var profileCount int64
	if err := s.db.Model(&models.SellerProfile{}).
		Where("user_id = ?", sellerID).Count(&profileCount).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if profileCount == 0 {
		return nil, ErrSellerProfileMissing
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	product := &models.Product{
		SellerID:    sellerID,
		Title:       req.Title,
		Slug:        utils.MakeSlug(req.Title),
		Description: req.Description,
		Category:    req.Category,
		ModelType:   req.ModelType,
		Price:       req.Price,
		Currency:    currency,
		Content:     req.Content,
		Preview:     models.MakePreview(req.Content),
		Tags:        req.Tags,
		Images:      req.Images,
		Status:      models.ProductStatusActive,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateListings()

	return product, nil
}

// SearchProducts applies the public catalog filters and returns one page.
func (s *CatalogService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Preload("Seller")

	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.ModelType != "" {
		query = query.Where("model_type = ?", params.ModelType)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE LOWER(t) LIKE ?)",
			searchTerm, searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}

	if params.MinRating != nil {
		query = query.Where("rating >= ?", *params.MinRating)
	}

	if params.Featured != nil {
		query = query.Where("featured = ?", *params.Featured)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order(utils.SortClause(params.SortBy))
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// GetProduct resolves a product by id or slug and gates its content.
func (s *CatalogService) GetProduct(idOrSlug string, userID *uuid.UUID) (*ProductView, error) {
	var product models.Product
	query := s.db.Preload("Seller")

	if id, err := uuid.Parse(idOrSlug); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", idOrSlug)
	}

	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	view := &ProductView{Product: product}

	if userID != nil {
		if *userID == product.SellerID {
			view.Unlocked = true
		} else {
			unlocked, err := s.hasCompletedPurchase(*userID, product.ID)
			if err != nil {
				return nil, err
			}
			view.Unlocked = unlocked
		}
	}

	if view.Unlocked {
		view.Content = product.Content
	}

	// Owners don't bump their own view counter.
	if userID == nil || *userID != product.SellerID {
		go s.incrementViewCount(product.ID)
	}

	return view, nil
}

// GetPopularProducts serves the cached default-sort listing.
func (s *CatalogService) GetPopularProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.cache.Get(ctx, popularCacheKey, &products); err == nil && len(products) > 0 {
		if len(products) > limit {
			products = products[:limit]
		}
		return products, nil
	}

	if err := s.db.Where("status = ?", models.ProductStatusActive).
		Order("sales_count DESC, rating DESC, id").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch popular products: %w", err)
	}

	if err := s.cache.Set(ctx, popularCacheKey, products, catalogCacheTTL); err != nil {
		logrus.WithError(err).Warn("Failed to cache popular products")
	}

	return products, nil
}

func (s *CatalogService) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.cache.Get(ctx, featuredCacheKey, &products); err == nil && len(products) > 0 {
		if len(products) > limit {
			products = products[:limit]
		}
		return products, nil
	}

	if err := s.db.Where("status = ? AND featured = ?", models.ProductStatusActive, true).
		Order("created_at DESC, id").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}

	if err := s.cache.Set(ctx, featuredCacheKey, products, catalogCacheTTL); err != nil {
		logrus.WithError(err).Warn("Failed to cache featured products")
	}

	return products, nil
}

// AddReview records a rating from a buyer with a completed purchase and
// updates the product and seller aggregates in the same transaction.
func (s *CatalogService) AddReview(userID, productID uuid.UUID, req *ReviewRequest) (*models.Review, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	purchased, err := s.hasCompletedPurchase(userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, ErrPurchaseRequired
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		// rating = (rating*review_count + new) / (review_count + 1)
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).
			Updates(map[string]interface{}{
				"rating":       gorm.Expr("(rating * review_count + ?) / (review_count + 1)", req.Rating),
				"review_count": gorm.Expr("review_count + 1"),
			}).Error; err != nil {
			return fmt.Errorf("failed to update product rating: %w", err)
		}

		if err := tx.Model(&models.SellerProfile{}).Where("user_id = ?", product.SellerID).
			Updates(map[string]interface{}{
				"rating":       gorm.Expr("(rating * review_count + ?) / (review_count + 1)", req.Rating),
				"review_count": gorm.Expr("review_count + 1"),
			}).Error; err != nil {
			return fmt.Errorf("failed to update seller rating: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *CatalogService) hasCompletedPurchase(buyerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Purchase{}).
		Where("buyer_id = ? AND product_id = ? AND status = ?",
			buyerID, productID, models.PurchaseStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}

func (s *CatalogService) incrementViewCount(productID uuid.UUID) {
	s.db.Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
}

func (s *CatalogService) invalidateListings() {
	if err := s.cache.Delete(context.Background(), popularCacheKey, featuredCacheKey); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate catalog cache")
	}
}
