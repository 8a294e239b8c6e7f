package booking

import (
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"
)

// FreeAdultAllowance は追加料金なしで宿泊できる大人の人数
// 客室定員から導出される値ではなく、ストアフロント共通の固定の業務ルール
const FreeAdultAllowance = 2

// ComputePrice は予約の合計料金を計算する
//
//	基本料金 = 泊数 × 1泊料金 × 部屋数
//	追加料金 = 大人が3人以上のとき (人数-2) × 追加大人料金 × 泊数 × 部屋数
//
// 泊数は暦日差で数える（2024-01-01→2024-01-02は時刻によらず1泊）
// 料金が0の客室は有効で、その構成要素は0になる
func ComputePrice(snap *room.Snapshot, r stay.DateRange, unitCount, adultCount int) int64 {
	nights := int64(r.Nights())
	units := int64(unitCount)

	base := nights * snap.PricePerNight * units

	var surcharge int64
	if adultCount > FreeAdultAllowance {
		surcharge = int64(adultCount-FreeAdultAllowance) * snap.ExtraAdultPrice * nights * units
	}

	return base + surcharge
}
