// internal/handlers/seller.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ailibrary/prompts-backend/internal/services"
	"github.com/ailibrary/prompts-backend/internal/utils"
)

type SellerHandler struct {
	sellerService *services.SellerService
}

func NewSellerHandler(sellerService *services.SellerService) *SellerHandler {
	return &SellerHandler{sellerService: sellerService}
}

func (h *SellerHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	profile, err := h.sellerService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrSellerProfileMissing) {
			utils.NotFoundResponse(c, "Seller profile")
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, profile)
}

func (h *SellerHandler) CreateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.SellerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	profile, err := h.sellerService.CreateProfile(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSellerProfileExists):
			utils.ConflictResponse(c, "Seller profile already exists")
		case errors.Is(err, services.ErrUserNotFound):
			utils.NotFoundResponse(c, "User")
		default:
			respondValidationError(c, err)
		}
		return
	}

	utils.CreatedResponse(c, profile)
}

func (h *SellerHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.SellerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	profile, err := h.sellerService.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrSellerProfileMissing) {
			utils.NotFoundResponse(c, "Seller profile")
			return
		}
		respondValidationError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// GetDashboard returns trailing-30-day earnings and payout state.
func (h *SellerHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	dashboard, err := h.sellerService.GetDashboard(userID)
	if err != nil {
		if errors.Is(err, services.ErrSellerProfileMissing) {
			utils.NotFoundResponse(c, "Seller profile")
			return
		}
		logrus.WithError(err).Error("Failed to build seller dashboard")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, dashboard)
}

func (h *SellerHandler) RequestPayout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	payout, err := h.sellerService.RequestPayout(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSellerProfileMissing):
			utils.NotFoundResponse(c, "Seller profile")
		case errors.Is(err, services.ErrBelowMinimumPayout):
			utils.BadRequestResponse(c, "Payout amount is below the minimum", nil)
		case errors.Is(err, services.ErrInsufficientBalance):
			utils.BadRequestResponse(c, "Insufficient available balance", nil)
		default:
			respondValidationError(c, err)
		}
		return
	}

	utils.CreatedResponse(c, payout)
}
