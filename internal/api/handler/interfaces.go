package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/identity"
)

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	Reserve(ctx context.Context, input application.ReserveInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	ListGuestBookings(ctx context.Context, guestID string, limit, offset int) ([]*booking.Booking, error)
	Transition(ctx context.Context, bookingID string, target booking.Status, caller identity.Identity) (*booking.Booking, error)
}

// AvailabilityServiceInterface は空室照会サービスのインターフェース
type AvailabilityServiceInterface interface {
	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (*application.Availability, error)
}
