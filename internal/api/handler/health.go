package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const dependencyCheckTimeout = 2 * time.Second

// DependencyCheck は依存サービスの疎通確認
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
	// Optional な依存が落ちていても全体は degraded として 200 を返す
	Optional bool
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	checks []DependencyCheck
}

// NewHealthHandler はHealthHandlerを作成する
func NewHealthHandler(checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Check はヘルスチェックを行う
// @Summary ヘルスチェック
// @Description アプリケーションと依存サービスの健全性を確認する
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	code := http.StatusOK

	if len(h.checks) > 0 {
		resp.Dependencies = make(map[string]string, len(h.checks))
	}
	for _, dc := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dependencyCheckTimeout)
		err := dc.Check(ctx)
		cancel()

		if err == nil {
			resp.Dependencies[dc.Name] = "ok"
			continue
		}
		resp.Dependencies[dc.Name] = "unavailable"
		if dc.Optional {
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
			continue
		}
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, resp)
}
