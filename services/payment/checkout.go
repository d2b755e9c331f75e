package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"creditcoach/models"
	"creditcoach/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrFreeCart        = errors.New("cart total is zero")
	ErrAmountTooLarge  = errors.New("cart total is too large to charge")
	ErrMissingSession  = errors.New("missing checkout session id")
	ErrForeignCheckout = errors.New("checkout session belongs to another session")
)

// Gateway is the hosted checkout provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
	GetCheckout(ctx context.Context, id string) (*models.CheckoutSession, error)
}

// CheckoutService turns a cart into a hosted checkout page and checks the
// outcome when the customer returns.
type CheckoutService struct {
	gateway    Gateway
	currency   string
	successURL string
	cancelURL  string
	logger     *zap.Logger
}

func NewCheckoutService(gateway Gateway, currency, successURL, cancelURL string, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		gateway:    gateway,
		currency:   strings.ToLower(currency),
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     logger,
	}
}

// StartCheckout opens a checkout for items. reference ties the checkout to
// the browser session so ConfirmCheckout can refuse someone else's session.
func (s *CheckoutService) StartCheckout(ctx context.Context, items []models.CartItem, reference, email string) (*models.CheckoutSession, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	req := models.CheckoutRequest{
		ClientReference: reference,
		CustomerEmail:   email,
		Currency:        s.currency,
		SuccessURL:      s.successURL,
		CancelURL:       s.cancelURL,
	}
	amount := decimal.Zero // cents
	for _, it := range items {
		cents, err := utils.ToMinorUnits(it.Price)
		if err != nil {
			return nil, fmt.Errorf("checkout: item %s: %w", it.ID, err)
		}
		amount = amount.Add(decimal.NewFromInt(cents).Mul(decimal.NewFromInt(int64(it.Quantity))))
		req.Lines = append(req.Lines, models.CheckoutLine{
			Name:      it.Title,
			Image:     it.Image,
			UnitCents: cents,
			Quantity:  int64(it.Quantity),
		})
	}
	if amount.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return nil, ErrAmountTooLarge
	}
	total := amount.IntPart()
	if total == 0 {
		return nil, ErrFreeCart
	}

	session, err := s.gateway.CreateCheckout(ctx, req)
	if err != nil {
		s.logger.Error("checkout: gateway refused session", zap.String("reference", reference), zap.Error(err))
		return nil, err
	}
	s.logger.Info("checkout: session created",
		zap.String("checkoutID", session.ID),
		zap.String("reference", reference),
		zap.Int64("amountCents", total))
	return session, nil
}

// ConfirmCheckout fetches the checkout and verifies it was opened by
// reference.
func (s *CheckoutService) ConfirmCheckout(ctx context.Context, checkoutID, reference string) (*models.CheckoutSession, error) {
	if checkoutID == "" {
		return nil, ErrMissingSession
	}
	session, err := s.gateway.GetCheckout(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if session.ClientReference != "" && session.ClientReference != reference {
		s.logger.Warn("checkout: reference mismatch", zap.String("checkoutID", checkoutID))
		return nil, ErrForeignCheckout
	}
	return session, nil
}
