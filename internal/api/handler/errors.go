package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-show-booking/internal/api"
	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
)

// mapError はドメインエラーをHTTPステータスに変換する
func mapError(err error) error {
	var pie *booking.PaymentInitiationError
	if errors.As(err, &pie) {
		return echo.NewHTTPError(http.StatusBadGateway, api.ErrorResponse{
			Error:     booking.ErrPaymentInitiation.Error(),
			BookingID: pie.BookingID,
		}).SetInternal(err)
	}

	var code int
	switch {
	case errors.Is(err, booking.ErrValidation),
		errors.Is(err, seat.ErrSeatNotFound),
		errors.Is(err, show.ErrShowNameRequired),
		errors.Is(err, show.ErrInvalidTotalSeats),
		errors.Is(err, booking.ErrSignatureMismatch):
		code = http.StatusBadRequest
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, show.ErrShowNotFound):
		code = http.StatusNotFound
	case errors.Is(err, seat.ErrSeatUnavailable),
		errors.Is(err, booking.ErrAlreadyFinalized):
		code = http.StatusConflict
	case errors.Is(err, booking.ErrBookingExpired):
		code = http.StatusGone
	case errors.Is(err, transaction.ErrTransient),
		errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "一時的なエラーです。再試行してください").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

func userIDFrom(c echo.Context) (string, error) {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	return userID, nil
}
