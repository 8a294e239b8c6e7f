package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type RoomHandler struct {
	service AvailabilityServiceInterface
}

func NewRoomHandler(s AvailabilityServiceInterface) *RoomHandler {
	return &RoomHandler{service: s}
}

type AvailabilityResponse struct {
	RoomID     string `json:"room_id" example:"room-123"`
	CheckIn    string `json:"check_in" example:"2026-09-10"`
	CheckOut   string `json:"check_out" example:"2026-09-13"`
	TotalUnits int    `json:"total_units" example:"5"`
	Demand     int    `json:"demand" example:"3"`
	Available  int    `json:"available" example:"2"`
}

// GetAvailability godoc
// @Summary 空室状況を取得
// @Description 指定期間の客室の残室数を取得します
// @Tags rooms
// @Produce json
// @Param room_id path string true "客室ID"
// @Param check_in query string true "チェックイン日（YYYY-MM-DD）"
// @Param check_out query string true "チェックアウト日（YYYY-MM-DD）"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /rooms/{room_id}/availability [get]
func (h *RoomHandler) GetAvailability(c echo.Context) error {
	checkIn, err := parseDate(c.QueryParam("check_in"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "チェックイン日の形式が不正です")
	}
	checkOut, err := parseDate(c.QueryParam("check_out"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "チェックアウト日の形式が不正です")
	}

	avail, err := h.service.CheckAvailability(c.Request().Context(), c.Param("room_id"), checkIn, checkOut)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{
		RoomID:     avail.RoomID,
		CheckIn:    avail.Range.CheckIn.Format(dateLayout),
		CheckOut:   avail.Range.CheckOut.Format(dateLayout),
		TotalUnits: avail.TotalUnits,
		Demand:     avail.Demand,
		Available:  avail.Available,
	})
}
