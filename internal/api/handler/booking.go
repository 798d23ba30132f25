package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-show-booking/internal/application"
	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	ShowID  string   `json:"show_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatIDs []string `json:"seat_ids" validate:"required,min=1" example:"seat-A1,seat-A2"`
	Amount  int64    `json:"amount" validate:"gt=0" example:"300"`
}

type BookingResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ShowID          string     `json:"show_id"`
	SeatIDs         []string   `json:"seat_ids"`
	Amount          int64      `json:"amount" example:"300"`
	Currency        string     `json:"currency" example:"INR"`
	Status          string     `json:"status" example:"PENDING"`
	ExpiresAt       time.Time  `json:"expires_at"`
	PaymentOrderRef string     `json:"payment_order_ref,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, UserID: b.UserID, ShowID: b.ShowID, SeatIDs: b.SeatIDs,
		Amount: b.Amount, Currency: b.Currency, Status: string(b.Status),
		ExpiresAt: b.ExpiresAt, PaymentOrderRef: b.PaymentOrderRef,
		ConfirmedAt: b.ConfirmedAt, CreatedAt: b.CreatedAt,
	}
}

// CreateBookingResponse は予約作成結果と決済ゲートウェイへの引き渡し情報
type CreateBookingResponse struct {
	Booking           BookingResponse `json:"booking"`
	PaymentOrderRef   string          `json:"payment_order_ref" example:"order_9A33XWu170gUtm"`
	AmountMinor       int64           `json:"amount_minor" example:"30000"`
	Currency          string          `json:"currency" example:"INR"`
	OrderRefPersisted bool            `json:"order_ref_persisted"`
}

type BookingDetailResponse struct {
	BookingResponse
	Seats []SeatResponse `json:"seats"`
}

// Create godoc
// @Summary 予約を作成
// @Description 座席を仮押さえし、決済オーダーを発行します
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} CreateBookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "座席が既に予約済み"
// @Failure 502 {object} api.ErrorResponse "決済オーダー作成失敗"
// @Failure 503 {object} api.ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Reserve(c.Request().Context(), application.ReserveInput{
		UserID: userID, ShowID: req.ShowID, SeatIDs: req.SeatIDs, Amount: req.Amount,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, CreateBookingResponse{
		Booking:           toBookingResponse(res.Booking),
		PaymentOrderRef:   res.PaymentOrderRef,
		AmountMinor:       res.AmountMinor,
		Currency:          res.Currency,
		OrderRefPersisted: res.OrderRefPersisted,
	})
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingDetailResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	view, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	seats := make([]SeatResponse, len(view.Seats))
	for i, s := range view.Seats {
		seats[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, BookingDetailResponse{
		BookingResponse: toBookingResponse(view.Booking),
		Seats:           seats,
	})
}

// GetUserBookings godoc
// @Summary ユーザーの予約一覧を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) GetUserBookings(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	bookings, err := h.service.GetUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return mapError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}
