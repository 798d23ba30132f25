package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-booking/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	// BookingID は座席確保後に決済オーダー作成が失敗した場合に返す
	BookingID string `json:"booking_id,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := ErrorResponse{
		Error: "内部サーバーエラー",
		Code:  http.StatusInternalServerError,
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		resp.Code = he.Code
		switch m := he.Message.(type) {
		case ErrorResponse:
			resp = m
			resp.Code = he.Code
		case string:
			resp.Error = m
		default:
			resp.Error = http.StatusText(he.Code)
		}
	}

	log := logger.FromContext(c.Request().Context())
	if resp.Code >= http.StatusInternalServerError {
		log.Error("サーバーエラー",
			zap.Int("status", resp.Code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.Code)
	} else {
		err = c.JSON(resp.Code, resp)
	}
	if err != nil {
		log.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
