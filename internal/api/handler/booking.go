package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/booking"
)

// 宿泊日はタイムゾーンなしの暦日として受け渡す
const dateLayout = "2006-01-02"

type BookingHandler struct {
	service ReservationServiceInterface
}

func NewBookingHandler(s ReservationServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	CheckIn    string `json:"check_in" validate:"required,ymd" example:"2026-09-10"`
	CheckOut   string `json:"check_out" validate:"required,ymd" example:"2026-09-13"`
	UnitCount  int    `json:"unit_count" validate:"required,min=1" example:"1"`
	AdultCount int    `json:"adult_count" validate:"required,min=1" example:"2"`
}

type BookingResponse struct {
	ID         string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RoomID     string    `json:"room_id" example:"room-123"`
	GuestID    string    `json:"guest_id" example:"guest-123"`
	CheckIn    string    `json:"check_in" example:"2026-09-10"`
	CheckOut   string    `json:"check_out" example:"2026-09-13"`
	Nights     int       `json:"nights" example:"3"`
	UnitCount  int       `json:"unit_count" example:"1"`
	AdultCount int       `json:"adult_count" example:"2"`
	TotalPrice int64     `json:"total_price" example:"36000"`
	Status     string    `json:"status" example:"pending"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		RoomID:     b.RoomID,
		GuestID:    b.GuestID,
		CheckIn:    b.Range.CheckIn.Format(dateLayout),
		CheckOut:   b.Range.CheckOut.Format(dateLayout),
		Nights:     b.Range.Nights(),
		UnitCount:  b.UnitCount,
		AdultCount: b.AdultCount,
		TotalPrice: b.TotalPrice,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// Create godoc
// @Summary 予約を作成
// @Description 空室を確認して予約を作成します（初期状態はpending）
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string false "ロール（guest/owner/admin）"
// @Param room_id path string true "客室ID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string "空室が不足"
// @Failure 503 {object} map[string]string "競合により処理不可"
// @Router /rooms/{room_id}/bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	caller, err := callerIdentity(c)
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
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "チェックイン日の形式が不正です")
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "チェックアウト日の形式が不正です")
	}

	b, err := h.service.Reserve(c.Request().Context(), application.ReserveInput{
		RoomID:     c.Param("room_id"),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		UnitCount:  req.UnitCount,
		AdultCount: req.AdultCount,
		Caller:     caller,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約を取得します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ListMine godoc
// @Summary 自分の予約一覧を取得
// @Description 呼び出し元の宿泊客の予約一覧を取得します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) ListMine(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.ListGuestBookings(c.Request().Context(), caller.UserID, limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary 予約を確定
// @Description pending状態の予約を確定します（オーナー・管理者のみ）
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string false "ロール（guest/owner/admin）"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "許されない状態遷移"
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c echo.Context) error {
	return h.transition(c, booking.StatusConfirmed)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、在庫を解放します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string false "ロール（guest/owner/admin）"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "許されない状態遷移"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, booking.StatusCancelled)
}

func (h *BookingHandler) transition(c echo.Context, target booking.Status) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	b, err := h.service.Transition(c.Request().Context(), c.Param("id"), target, caller)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}
