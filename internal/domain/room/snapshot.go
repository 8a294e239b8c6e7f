package room

// Snapshot は予約リクエスト時点での客室メタデータの不変ビュー
// 客室そのもののCRUDはストアフロント側の責務で、
// 予約エンジンは在庫数と料金だけを参照する
type Snapshot struct {
	RoomID          string
	TotalUnits      int   // この客室タイプの物理的な部屋数
	PricePerNight   int64 // 1泊あたりの料金（最小通貨単位）
	ExtraAdultPrice int64 // 3人目以降の大人1人あたりの追加料金（最小通貨単位）
}

// Validate はスナップショットの検証を行う
func (s *Snapshot) Validate() error {
	if s.RoomID == "" {
		return ErrRoomIDRequired
	}
	if s.TotalUnits <= 0 {
		return ErrInvalidTotalUnits
	}
	if s.PricePerNight < 0 || s.ExtraAdultPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}
