package booking

import "github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"

// AggregateDemand は指定期間と衝突する予約の占有部屋数を合算する
// 対象はpendingとconfirmedのみ。cancelledは即座に計算から外れるため、
// キャンセルに個別の「在庫解放」処理は不要
// excludeIDは既存予約の変更時に自分自身を除外するために使う（空なら除外なし）
func AggregateDemand(r stay.DateRange, bookings []*Booking, excludeID string) int {
	demand := 0
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if stay.Overlaps(b.Range, r) {
			demand += b.UnitCount
		}
	}
	return demand
}
