package handler

import (
	"context"

	"github.com/sanosuguru/go-show-booking/internal/application"
	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-booking/internal/domain/show"
)

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	Reserve(ctx context.Context, input application.ReserveInput) (*application.ReserveResult, error)
	GetBooking(ctx context.Context, id string) (*application.BookingView, error)
	GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
}

// PaymentServiceInterface は決済結果通知を処理するサービスのインターフェース
type PaymentServiceInterface interface {
	ConfirmSuccess(ctx context.Context, input application.ConfirmSuccessInput) (*booking.Booking, error)
	ConfirmFailure(ctx context.Context, bookingID string) (*application.ReleaseResult, error)
}

// ShowServiceInterface は公演サービスのインターフェース
type ShowServiceInterface interface {
	CreateShow(ctx context.Context, input application.CreateShowInput) (*show.Show, error)
	GetShow(ctx context.Context, id string) (*show.Show, error)
	ListSeats(ctx context.Context, showID string) ([]*seat.Seat, error)
	CountAvailable(ctx context.Context, showID string) (int, error)
}
