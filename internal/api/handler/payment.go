package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-show-booking/internal/application"
)

// PaymentHandler は決済ゲートウェイからの結果通知を受け取る
type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type PaymentSuccessRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required" example:"pay_29QQoUBi66xm2f"`
	OrderID   string `json:"order_id" validate:"required" example:"order_9A33XWu170gUtm"`
	Signature string `json:"signature" validate:"required"`
}

type PaymentFailureRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
}

type PaymentFailureResponse struct {
	Booking          BookingResponse `json:"booking"`
	ReleasedSeats    int             `json:"released_seats"`
	AlreadyFinalized bool            `json:"already_finalized"`
}

// Success godoc
// @Summary 決済成功通知
// @Description 署名を検証し、予約を確定します
// @Tags payments
// @Accept json
// @Produce json
// @Param request body PaymentSuccessRequest true "決済結果"
// @Success 200 {object} BookingResponse
// @Failure 400 {object} api.ErrorResponse "署名不一致"
// @Failure 409 {object} api.ErrorResponse "確定済み"
// @Failure 410 {object} api.ErrorResponse "有効期限切れ"
// @Router /payments/success [post]
func (h *PaymentHandler) Success(c echo.Context) error {
	var req PaymentSuccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.service.ConfirmSuccess(c.Request().Context(), application.ConfirmSuccessInput{
		BookingID: req.BookingID,
		PaymentID: req.PaymentID,
		OrderRef:  req.OrderID,
		Signature: req.Signature,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Failure godoc
// @Summary 決済失敗通知
// @Description 保留中の予約を失敗にして座席を解放します（冪等）
// @Tags payments
// @Accept json
// @Produce json
// @Param request body PaymentFailureRequest true "予約ID"
// @Success 200 {object} PaymentFailureResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /payments/failure [post]
func (h *PaymentHandler) Failure(c echo.Context) error {
	var req PaymentFailureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.ConfirmFailure(c.Request().Context(), req.BookingID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, PaymentFailureResponse{
		Booking:          toBookingResponse(res.Booking),
		ReleasedSeats:    res.ReleasedSeats,
		AlreadyFinalized: res.AlreadyFinalized,
	})
}
