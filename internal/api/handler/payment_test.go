package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-show-booking/internal/application"
	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
)

// MockPaymentService はPaymentServiceInterfaceのモック
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ConfirmSuccess(ctx context.Context, input application.ConfirmSuccessInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockPaymentService) ConfirmFailure(ctx context.Context, bookingID string) (*application.ReleaseResult, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.ReleaseResult), args.Error(1)
}

func TestPaymentHandler_Success(t *testing.T) {
	e := NewTestEcho()
	body := `{"booking_id": "booking-1", "payment_id": "pay_1", "order_id": "order_1", "signature": "abc123"}`

	t.Run("正常に確定できる", func(t *testing.T) {
		mockService := new(MockPaymentService)
		b := newPendingBooking()
		now := time.Now()
		b.Status = booking.StatusConfirmed
		b.ConfirmedAt = &now
		mockService.On("ConfirmSuccess", mock.Anything, application.ConfirmSuccessInput{
			BookingID: "booking-1", PaymentID: "pay_1", OrderRef: "order_1", Signature: "abc123",
		}).Return(b, nil)

		rec := serve(e, http.MethodPost, "/payments/success", body, NewPaymentHandler(mockService).Success, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "CONFIRMED", resp.Status)
		assert.NotNil(t, resp.ConfirmedAt)
		mockService.AssertExpectations(t)
	})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"署名不一致", booking.ErrSignatureMismatch, http.StatusBadRequest},
		{"確定済み", booking.ErrAlreadyFinalized, http.StatusConflict},
		{"有効期限切れ", booking.ErrBookingExpired, http.StatusGone},
		{"存在しない予約", booking.ErrBookingNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPaymentService)
			mockService.On("ConfirmSuccess", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(e, http.MethodPost, "/payments/success", body, NewPaymentHandler(mockService).Success, nil)

			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("署名なしは400", func(t *testing.T) {
		mockService := new(MockPaymentService)

		rec := serve(e, http.MethodPost, "/payments/success",
			`{"booking_id": "booking-1", "payment_id": "pay_1", "order_id": "order_1"}`,
			NewPaymentHandler(mockService).Success, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "ConfirmSuccess", mock.Anything, mock.Anything)
	})
}

func TestPaymentHandler_Failure(t *testing.T) {
	e := NewTestEcho()
	body := `{"booking_id": "booking-1"}`

	t.Run("座席を解放する", func(t *testing.T) {
		mockService := new(MockPaymentService)
		b := newPendingBooking()
		b.Status = booking.StatusFailed
		mockService.On("ConfirmFailure", mock.Anything, "booking-1").
			Return(&application.ReleaseResult{Booking: b, ReleasedSeats: 2}, nil)

		rec := serve(e, http.MethodPost, "/payments/failure", body, NewPaymentHandler(mockService).Failure, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp PaymentFailureResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "FAILED", resp.Booking.Status)
		assert.Equal(t, 2, resp.ReleasedSeats)
		assert.False(t, resp.AlreadyFinalized)
	})

	t.Run("終端状態の予約は200で何もしない", func(t *testing.T) {
		mockService := new(MockPaymentService)
		b := newPendingBooking()
		b.Status = booking.StatusConfirmed
		mockService.On("ConfirmFailure", mock.Anything, "booking-1").
			Return(&application.ReleaseResult{Booking: b, AlreadyFinalized: true}, nil)

		rec := serve(e, http.MethodPost, "/payments/failure", body, NewPaymentHandler(mockService).Failure, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp PaymentFailureResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.AlreadyFinalized)
		assert.Equal(t, 0, resp.ReleasedSeats)
	})

	t.Run("予約ID未指定は400", func(t *testing.T) {
		mockService := new(MockPaymentService)

		rec := serve(e, http.MethodPost, "/payments/failure", `{}`, NewPaymentHandler(mockService).Failure, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
