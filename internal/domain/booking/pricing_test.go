package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/room"
)

func TestComputePrice(t *testing.T) {
	snap := &room.Snapshot{
		RoomID:          "room-1",
		TotalUnits:      5,
		PricePerNight:   100,
		ExtraAdultPrice: 20,
	}

	tests := []struct {
		name       string
		unitCount  int
		adultCount int
		inDay      int
		outDay     int
		want       int64
	}{
		{
			// 3泊 × 100 × 2部屋、大人2人ちょうどで追加料金なし
			name: "大人2人は追加料金なし", unitCount: 2, adultCount: 2, inDay: 1, outDay: 4, want: 600,
		},
		{
			// 600 + (3-2) × 20 × 3泊 × 2部屋 = 720
			name: "大人3人で追加料金", unitCount: 2, adultCount: 3, inDay: 1, outDay: 4, want: 720,
		},
		{
			// 600 + 2 × 20 × 3 × 2 = 840
			name: "大人4人で追加料金2人分", unitCount: 2, adultCount: 4, inDay: 1, outDay: 4, want: 840,
		},
		{
			name: "1泊1部屋1人", unitCount: 1, adultCount: 1, inDay: 1, outDay: 2, want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRange(t, tt.inDay, tt.outDay)
			assert.Equal(t, tt.want, ComputePrice(snap, r, tt.unitCount, tt.adultCount))
		})
	}
}

func TestComputePrice_ZeroPrices(t *testing.T) {
	// 料金0の客室は有効で、合計も0になる
	snap := &room.Snapshot{RoomID: "room-1", TotalUnits: 1, PricePerNight: 0, ExtraAdultPrice: 0}
	r := mustRange(t, 1, 4)
	assert.Equal(t, int64(0), ComputePrice(snap, r, 1, 5))
}

func TestComputePrice_ZeroExtraAdultPrice(t *testing.T) {
	// 追加大人料金が0なら人数が多くても基本料金のみ
	snap := &room.Snapshot{RoomID: "room-1", TotalUnits: 1, PricePerNight: 100, ExtraAdultPrice: 0}
	r := mustRange(t, 1, 3)
	assert.Equal(t, int64(200), ComputePrice(snap, r, 1, 4))
}
