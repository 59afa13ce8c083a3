// internal/services/errors.go
package services

import "errors"

// Sentinel errors shared by the service layer. Handlers translate these to
// HTTP statuses; anything unrecognized becomes a generic 500.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserNotActive        = errors.New("user account is not active")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotActive     = errors.New("product is not available for purchase")
	ErrDuplicatePurchase    = errors.New("purchase already completed for this product")
	ErrCaptureNotCompleted  = errors.New("payment capture was not completed")
	ErrSellerProfileExists  = errors.New("seller profile already exists")
	ErrSellerProfileMissing = errors.New("seller profile not found")
	ErrDuplicateReview      = errors.New("product already reviewed")
	ErrPurchaseRequired     = errors.New("completed purchase required")
	ErrInsufficientBalance  = errors.New("insufficient balance for payout")
	ErrBelowMinimumPayout   = errors.New("payout amount is below the minimum")
)
