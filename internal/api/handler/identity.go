package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/identity"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// callerIdentity はリクエストヘッダーから呼び出し元の識別情報を組み立てる
// 認証自体は上流のゲートウェイが行い、ここでは検証済みヘッダーを信頼する。
// ロールヘッダーがない場合はguestとして扱う
func callerIdentity(c echo.Context) (identity.Identity, error) {
	userID := c.Request().Header.Get(headerUserID)
	if userID == "" {
		return identity.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}

	role := identity.Role(c.Request().Header.Get(headerUserRole))
	if role == "" {
		role = identity.RoleGuest
	}

	id := identity.Identity{UserID: userID, Role: role}
	if !id.Valid() {
		return identity.Identity{}, echo.NewHTTPError(http.StatusBadRequest, "不明なロールです")
	}
	return id, nil
}
