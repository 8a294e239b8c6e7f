package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"
)

// domainHTTPError はドメインエラーをHTTPステータスに対応付ける
//
//	入力不正（期間・部屋数・人数）・空室不足 → 400
//	権限なし                               → 403
//	客室・予約が存在しない                 → 404
//	許されない状態遷移                     → 409
//	競合リトライ上限                       → 503
func domainHTTPError(err error) *echo.HTTPError {
	var insufficient *booking.InsufficientAvailabilityError
	switch {
	case errors.As(err, &insufficient):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, stay.ErrInvalidRange),
		errors.Is(err, booking.ErrInvalidUnitCount),
		errors.Is(err, booking.ErrInvalidAdultCount),
		errors.Is(err, booking.ErrCheckInPast):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrBusy):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
