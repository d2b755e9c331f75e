package booking

import (
	"context"

	"creditcoach/models"
)

// AvailabilityAPI lists open consultation start times.
type AvailabilityAPI interface {
	AvailableSlots(ctx context.Context, date string, serviceType models.ServiceType) ([]models.Slot, error)
}

// ReservationAPI books a consultation on behalf of the bearer of token.
type ReservationAPI interface {
	CreateBooking(ctx context.Context, token string, req models.BookingRequest) (*models.BookingConfirmation, error)
}

// API is everything the wizard needs from the backend.
type API interface {
	AvailabilityAPI
	ReservationAPI
}

// TokenSource yields the current user's bearer token, or "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a token already in hand.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }
