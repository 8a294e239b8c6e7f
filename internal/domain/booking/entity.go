package booking

import (
	"time"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus は既知の状態かを返す
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Booking は予約エンティティを表す
// 作成はReserve経由、状態変更はTransition経由のみ。物理削除は行わず、
// キャンセルは状態変更として履歴を保持する
type Booking struct {
	ID         string
	RoomID     string
	GuestID    string
	Range      stay.DateRange
	UnitCount  int   // この予約が同時に占有する部屋数
	AdultCount int   // 宿泊する大人の人数
	TotalPrice int64 // 最小通貨単位
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBooking は新しい予約を作成する（初期状態はpending）
func NewBooking(roomID, guestID string, r stay.DateRange, unitCount, adultCount int, totalPrice int64) *Booking {
	now := time.Now()
	return &Booking{
		RoomID:     roomID,
		GuestID:    guestID,
		Range:      r,
		UnitCount:  unitCount,
		AdultCount: adultCount,
		TotalPrice: totalPrice,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsActive は予約が在庫を占有する状態かを返す
// pendingとconfirmedの両方が空室計算の対象になる
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.RoomID == "" {
		return ErrRoomIDRequired
	}
	if b.GuestID == "" {
		return ErrGuestIDRequired
	}
	if err := b.Range.Validate(); err != nil {
		return err
	}
	if b.UnitCount < 1 {
		return ErrInvalidUnitCount
	}
	if b.AdultCount < 1 {
		return ErrInvalidAdultCount
	}
	if b.TotalPrice < 0 {
		return ErrInvalidTotalPrice
	}
	return nil
}

// Actor は状態遷移を要求する主体
// 客室の所有関係はホテルコラボレーターが解決済みの事実として渡される
type Actor struct {
	UserID   string
	Role     identity.Role
	OwnsRoom bool
}

// CanTransition はロールに関係なく状態機械として許される遷移かを返す
// cancelledは完全な終端状態。confirmedからはキャンセルのみ許される
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	default:
		return false
	}
}

// TransitionTo は状態遷移を実行する
// 状態機械の判定が先、ロール判定が後。どのロールでも許されない遷移は
// ErrInvalidTransition、遷移自体は有効だが権限がない場合はErrForbidden
func (b *Booking) TransitionTo(target Status, actor Actor) error {
	if !ValidStatus(target) {
		return ErrInvalidTransition
	}
	if !CanTransition(b.Status, target) {
		return ErrInvalidTransition
	}
	if !b.transitionPermitted(target, actor) {
		return ErrForbidden
	}
	b.Status = target
	b.UpdatedAt = time.Now()
	return nil
}

// transitionPermitted は遷移ごとのロール規則を判定する
//
//	pending   → confirmed : ホテルオーナーまたは管理者
//	pending   → cancelled : 予約した宿泊客本人、ホテルオーナー、管理者
//	confirmed → cancelled : ホテルオーナーまたは管理者（ノーショー等）
func (b *Booking) transitionPermitted(target Status, actor Actor) bool {
	if actor.Role == identity.RoleAdmin {
		return true
	}
	ownerActing := actor.Role == identity.RoleOwner && actor.OwnsRoom
	switch {
	case b.Status == StatusPending && target == StatusConfirmed:
		return ownerActing
	case b.Status == StatusPending && target == StatusCancelled:
		return ownerActing || (actor.Role == identity.RoleGuest && actor.UserID == b.GuestID)
	case b.Status == StatusConfirmed && target == StatusCancelled:
		return ownerActing
	}
	return false
}
