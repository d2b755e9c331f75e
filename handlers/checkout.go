package handlers

import (
	"context"
	"errors"
	"net/http"

	"creditcoach/middleware"
	"creditcoach/models"
	"creditcoach/services/cart"
	"creditcoach/services/payment"
	"creditcoach/services/session"
	"creditcoach/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checkout is the payment flow used by CheckoutHandler.
type Checkout interface {
	StartCheckout(ctx context.Context, items []models.CartItem, reference, email string) (*models.CheckoutSession, error)
	ConfirmCheckout(ctx context.Context, checkoutID, reference string) (*models.CheckoutSession, error)
}

type CheckoutHandler struct {
	carts    *session.Registry[*cart.Store]
	checkout Checkout
	logger   *zap.Logger
}

func NewCheckoutHandler(carts *session.Registry[*cart.Store], checkout Checkout, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, checkout: checkout, logger: logger}
}

// StartCheckoutHandler opens a hosted checkout for the session's cart.
func (h *CheckoutHandler) StartCheckoutHandler(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	store := sessionCart(c, h.carts, h.logger)

	email := ""
	if id := middleware.IdentityFrom(c); id != nil {
		email = id.Email
	}

	s, err := h.checkout.StartCheckout(c.Request.Context(), store.Items(), sessionID, email)
	switch {
	case errors.Is(err, payment.ErrEmptyCart):
		utils.JSONError(c, http.StatusBadRequest, "Your cart is empty.", "")
		return
	case errors.Is(err, payment.ErrFreeCart):
		utils.JSONError(c, http.StatusBadRequest, "Nothing in your cart needs payment.", "")
		return
	case errors.Is(err, payment.ErrAmountTooLarge):
		utils.JSONError(c, http.StatusBadRequest, "Your cart total is too large to pay online.", "")
		return
	case err != nil:
		utils.JSONError(c, http.StatusBadGateway, "Could not start checkout. Please try again.", "")
		return
	}
	c.JSON(http.StatusOK, s)
}

// CompleteCheckoutHandler checks the checkout the customer returned from
// and empties the cart once it is paid.
func (h *CheckoutHandler) CompleteCheckoutHandler(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	s, err := h.checkout.ConfirmCheckout(c.Request.Context(), c.Query("session_id"), sessionID)
	switch {
	case errors.Is(err, payment.ErrMissingSession):
		utils.JSONError(c, http.StatusBadRequest, "Missing checkout session.", "")
		return
	case errors.Is(err, payment.ErrForeignCheckout):
		utils.JSONError(c, http.StatusForbidden, "This checkout belongs to another session.", "")
		return
	case err != nil:
		utils.JSONError(c, http.StatusBadGateway, "Could not verify payment. Please try again.", "")
		return
	}

	if s.Paid {
		h.carts.Get(c.Request.Context(), sessionID).Clear(c.Request.Context())
		h.logger.Info("checkout: paid, cart cleared", zap.String("checkoutID", s.ID))
	}
	c.JSON(http.StatusOK, s)
}
