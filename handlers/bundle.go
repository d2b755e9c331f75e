package handlers

import (
	"creditcoach/services/auth"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Verifier auth.Verifier

	// Cart endpoints
	GetCartHandler        gin.HandlerFunc
	AddCartItemHandler    gin.HandlerFunc
	UpdateCartItemHandler gin.HandlerFunc
	RemoveCartItemHandler gin.HandlerFunc
	ClearCartHandler      gin.HandlerFunc

	// Catalog endpoints
	ListProductsHandler gin.HandlerFunc
	GetProductHandler   gin.HandlerFunc

	// Booking wizard endpoints
	GetServicesHandler   gin.HandlerFunc
	GetWizardHandler     gin.HandlerFunc
	ChooseServiceHandler gin.HandlerFunc
	SelectDateHandler    gin.HandlerFunc
	RetrySlotsHandler    gin.HandlerFunc
	SelectTimeHandler    gin.HandlerFunc
	SetNotesHandler      gin.HandlerFunc
	BackHandler          gin.HandlerFunc
	DismissErrorHandler  gin.HandlerFunc
	SubmitBookingHandler gin.HandlerFunc
	DiscardWizardHandler gin.HandlerFunc

	// Checkout endpoints
	StartCheckoutHandler    gin.HandlerFunc
	CompleteCheckoutHandler gin.HandlerFunc

	// Account endpoints
	MyBookingsHandler gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from the component handlers.
func NewHandlerBundle(verifier auth.Verifier, cartH *CartHandler, bookingH *BookingHandler, checkoutH *CheckoutHandler, accountH *AccountHandler) *HandlerBundle {
	return &HandlerBundle{
		Verifier: verifier,

		GetCartHandler:        cartH.GetCartHandler,
		AddCartItemHandler:    cartH.AddItemHandler,
		UpdateCartItemHandler: cartH.UpdateQuantityHandler,
		RemoveCartItemHandler: cartH.RemoveItemHandler,
		ClearCartHandler:      cartH.ClearCartHandler,

		ListProductsHandler: cartH.ListProductsHandler,
		GetProductHandler:   cartH.GetProductHandler,

		GetServicesHandler:   bookingH.GetServicesHandler,
		GetWizardHandler:     bookingH.GetWizardHandler,
		ChooseServiceHandler: bookingH.ChooseServiceHandler,
		SelectDateHandler:    bookingH.SelectDateHandler,
		RetrySlotsHandler:    bookingH.RetrySlotsHandler,
		SelectTimeHandler:    bookingH.SelectTimeHandler,
		SetNotesHandler:      bookingH.SetNotesHandler,
		BackHandler:          bookingH.BackHandler,
		DismissErrorHandler:  bookingH.DismissErrorHandler,
		SubmitBookingHandler: bookingH.SubmitHandler,
		DiscardWizardHandler: bookingH.DiscardWizardHandler,

		StartCheckoutHandler:    checkoutH.StartCheckoutHandler,
		CompleteCheckoutHandler: checkoutH.CompleteCheckoutHandler,

		MyBookingsHandler: accountH.MyBookingsHandler,
	}
}
