package gerr

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrVendorNotFound       = errors.New("vendor not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrDeliveryNotConfirmed = errors.New("delivery not confirmed")
	ErrReviewAlreadyExists  = errors.New("review already submitted for this product")
	ErrAccessDenied         = errors.New("access denied")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrInvalidPeriod        = errors.New("invalid report period")
	ErrSelfDelete           = errors.New("cannot delete own account")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownStatus        = errors.New("unknown order status")
	ErrNonPositivePrice     = errors.New("price must be positive")
	ErrNegativeStock        = errors.New("stock cannot be negative")
	ErrZeroStockDelta       = errors.New("stock delta cannot be zero")
	ErrNonPositiveAmount    = errors.New("amount must be positive")

	BadMailRequest      = errors.New("bad mail request")
	MailApiLimitReached = errors.New("mail api limit reached")
)

// ErrInvalidRole reports an unknown back-office role name.
func ErrInvalidRole(role string) error {
	return fmt.Errorf("invalid role: %s", role)
}
