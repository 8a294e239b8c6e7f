package booking

import (
	"errors"
	"fmt"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound   = errors.New("予約が見つかりません")
	ErrRoomIDRequired    = errors.New("客室IDは必須です")
	ErrGuestIDRequired   = errors.New("宿泊客IDは必須です")
	ErrInvalidUnitCount  = errors.New("部屋数は1以上である必要があります")
	ErrInvalidAdultCount = errors.New("大人の人数は1以上である必要があります")
	ErrInvalidTotalPrice = errors.New("料金は0以上である必要があります")
	ErrCheckInPast       = errors.New("過去の日付のチェックインは指定できません")
	ErrInvalidTransition = errors.New("この状態遷移は許可されていません")
	ErrForbidden         = errors.New("この操作を行う権限がありません")
)

// InsufficientAvailabilityError は空室不足を表すエラー
// Availableには却下した作業単位内で再計算した残室数が入り、
// 呼び出し元は「残りN室のみ」の表示にそのまま使える
type InsufficientAvailabilityError struct {
	Available int
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("空室が不足しています（残り%d室）", e.Available)
}

// IsInsufficientAvailability は空室不足エラーかを判定し、残室数を返す
func IsInsufficientAvailability(err error) (*InsufficientAvailabilityError, bool) {
	var e *InsufficientAvailabilityError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
