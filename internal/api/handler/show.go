package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-show-booking/internal/application"
	"github.com/sanosuguru/go-show-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-booking/internal/domain/show"
)

type ShowHandler struct {
	service ShowServiceInterface
}

func NewShowHandler(s ShowServiceInterface) *ShowHandler {
	return &ShowHandler{service: s}
}

type CreateShowRequest struct {
	Name       string    `json:"name" validate:"required" example:"Live at Hall A"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	SeatCount  int       `json:"seat_count" validate:"required,min=1,max=10000" example:"100"`
	SeatPrefix string    `json:"seat_prefix" example:"A"`
}

type ShowResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	StartsAt       string `json:"starts_at"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
	CreatedAt      string `json:"created_at"`
}

func toShowResponse(s *show.Show) ShowResponse {
	return ShowResponse{
		ID: s.ID, Name: s.Name,
		StartsAt:   s.StartsAt.Format(time.RFC3339),
		TotalSeats: s.TotalSeats, AvailableSeats: s.AvailableSeats,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

type SeatResponse struct {
	ID         string `json:"id"`
	ShowID     string `json:"show_id"`
	SeatNumber string `json:"seat_number"`
	IsBooked   bool   `json:"is_booked"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{ID: s.ID, ShowID: s.ShowID, SeatNumber: s.SeatNumber, IsBooked: s.IsBooked}
}

type AvailableCountResponse struct {
	ShowID         string `json:"show_id"`
	AvailableCount int    `json:"available_count"`
}

// Create godoc
// @Summary 公演を作成
// @Description 公演と座席を一括で作成します
// @Tags shows
// @Accept json
// @Produce json
// @Param request body CreateShowRequest true "公演情報"
// @Success 201 {object} ShowResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /shows [post]
func (h *ShowHandler) Create(c echo.Context) error {
	var req CreateShowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	sh, err := h.service.CreateShow(c.Request().Context(), application.CreateShowInput{
		Name: req.Name, StartsAt: req.StartsAt, SeatCount: req.SeatCount, SeatPrefix: req.SeatPrefix,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, toShowResponse(sh))
}

// GetByID godoc
// @Summary 公演を取得
// @Tags shows
// @Produce json
// @Param id path string true "公演ID"
// @Success 200 {object} ShowResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /shows/{id} [get]
func (h *ShowHandler) GetByID(c echo.Context) error {
	sh, err := h.service.GetShow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toShowResponse(sh))
}

// ListSeats godoc
// @Summary 公演の座席一覧
// @Tags shows
// @Produce json
// @Param id path string true "公演ID"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /shows/{id}/seats [get]
func (h *ShowHandler) ListSeats(c echo.Context) error {
	seats, err := h.service.ListSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// CountAvailable godoc
// @Summary 空席数を取得
// @Tags shows
// @Produce json
// @Param id path string true "公演ID"
// @Success 200 {object} AvailableCountResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /shows/{id}/seats/available/count [get]
func (h *ShowHandler) CountAvailable(c echo.Context) error {
	id := c.Param("id")
	count, err := h.service.CountAvailable(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, AvailableCountResponse{ShowID: id, AvailableCount: count})
}
