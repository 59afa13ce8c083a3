// internal/handlers/product.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ailibrary/prompts-backend/internal/services"
	"github.com/ailibrary/prompts-backend/internal/utils"
)

type ProductHandler struct {
	catalogService *services.CatalogService
	storageService *services.StorageService
}

func NewProductHandler(catalogService *services.CatalogService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		storageService: storageService,
	}
}

// ListProducts serves the public catalog with filtering, sorting, and
// offset pagination.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := services.ProductSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		ModelType:        c.Query("model_type"),
	}

	if v := c.Query("price_min"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.PriceMin = &f
		}
	}
	if v := c.Query("price_max"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.PriceMax = &f
		}
	}
	if v := c.Query("min_rating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MinRating = &f
		}
	}
	if v := c.Query("featured"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			params.Featured = &b
		}
	}
	if v := c.Query("seller_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			params.SellerID = &id
		}
	}

	products, total, err := h.catalogService.SearchProducts(params)
	if err != nil {
		logrus.WithError(err).Error("Failed to search products")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params.PaginationParams))
}

// CreateProduct registers a new prompt listing for the authenticated seller.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	product, err := h.catalogService.CreateProduct(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			utils.UnauthorizedResponse(c, "")
		case errors.Is(err, services.ErrUserNotActive):
			utils.ForbiddenResponse(c, "Account is not active")
		case errors.Is(err, services.ErrSellerProfileMissing):
			utils.ForbiddenResponse(c, "A seller profile is required before listing products")
		case errors.Is(err, services.ErrUserNotFound):
			utils.NotFoundResponse(c, "User")
		default:
			respondValidationError(c, err)
		}
		return
	}

	utils.CreatedResponse(c, product)
}

// GetProduct resolves a product by id or slug. Content is present only for
// the owner or a buyer with a completed purchase.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	idOrSlug := c.Param("id")

	var userID *uuid.UUID
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	view, err := h.catalogService.GetProduct(idOrSlug, userID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		logrus.WithError(err).Error("Failed to fetch product")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, view)
}

func (h *ProductHandler) GetPopularProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	products, err := h.catalogService.GetPopularProducts(c.Request.Context(), limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch popular products")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, products)
}

func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	products, err := h.catalogService.GetFeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch featured products")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, products)
}

// AddReview records a rating from a verified buyer.
func (h *ProductHandler) AddReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product id", nil)
		return
	}

	var req services.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	review, err := h.catalogService.AddReview(userID, productID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product")
		case errors.Is(err, services.ErrPurchaseRequired):
			utils.ForbiddenResponse(c, "Only buyers with a completed purchase can review")
		case errors.Is(err, services.ErrDuplicateReview):
			utils.ConflictResponse(c, "You have already reviewed this product")
		default:
			respondValidationError(c, err)
		}
		return
	}

	utils.CreatedResponse(c, review)
}

// UploadImages stores listing images and returns their public URLs.
func (h *ProductHandler) UploadImages(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", nil)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No images provided", nil)
		return
	}
	if len(files) > 5 {
		utils.BadRequestResponse(c, "A maximum of 5 images is allowed", nil)
		return
	}

	options := h.storageService.DefaultImageOptions("products")

	results := make([]*services.UploadResult, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Failed to read uploaded file", nil)
			return
		}

		result, err := h.storageService.UploadFile(file, header, options)
		file.Close()
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		results = append(results, result)
	}

	utils.CreatedResponse(c, gin.H{"images": results})
}
