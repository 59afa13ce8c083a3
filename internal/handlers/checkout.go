// internal/handlers/checkout.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ailibrary/prompts-backend/internal/paypal"
	"github.com/ailibrary/prompts-backend/internal/services"
	"github.com/ailibrary/prompts-backend/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// CreateOrder opens a PayPal order for a product at its catalog price.
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	resp, err := h.checkoutService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}

	utils.SuccessResponse(c, resp)
}

// CaptureOrder settles an approved order: captures the payment and records
// the purchase, counters, and seller earnings.
func (h *CheckoutHandler) CaptureOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}
	if req.OrderID == "" {
		utils.BadRequestResponse(c, "order_id is required", nil)
		return
	}

	summary, err := h.checkoutService.CaptureOrder(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}

// GetPurchases lists the buyer's completed purchases with unlocked content.
func (h *CheckoutHandler) GetPurchases(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	purchases, total, err := h.checkoutService.GetPurchases(userID, params.Limit, params.Page)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch purchases")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(purchases, total, params))
}

func (h *CheckoutHandler) respondCheckoutError(c *gin.Context, err error) {
	var apiErr *paypal.APIError
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		utils.UnauthorizedResponse(c, "")
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "Product")
	case errors.Is(err, services.ErrProductNotActive):
		utils.PaymentErrorResponse(c, "Product is not available for purchase")
	case errors.Is(err, services.ErrCaptureNotCompleted):
		utils.PaymentErrorResponse(c, "Payment was not completed")
	case errors.Is(err, services.ErrDuplicatePurchase):
		utils.ConflictResponse(c, "You have already purchased this product")
	case errors.Is(err, paypal.ErrMissingCredentials):
		logrus.WithError(err).Error("PayPal credentials are not configured")
		utils.InternalErrorResponse(c, "")
	case errors.As(err, &apiErr):
		logrus.WithFields(logrus.Fields{
			"operation": apiErr.Operation,
			"status":    apiErr.StatusCode,
			"body":      apiErr.Body,
		}).Error("PayPal API call failed")
		utils.UpstreamErrorResponse(c)
	default:
		logrus.WithError(err).Error("Checkout failed")
		utils.InternalErrorResponse(c, "")
	}
}
