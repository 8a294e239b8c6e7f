package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー。
// ハンドラー層でHTTPErrorに変換済みのドメインエラーを統一フォーマットで返す。
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)

	switch {
	case code == http.StatusServiceUnavailable:
		// 予約の競合が続いた場合。リトライで解消するためWarnに留める
		logger.Warn("予約処理が混み合っている",
			zap.String("path", c.Request().URL.Path),
			zap.String("request_id", requestID),
		)
	case code >= 500:
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
