package stay

import "time"

// DateRange は宿泊期間を表す値オブジェクト
// 半開区間で扱う: チェックアウト日の夜はこの期間に含まれない
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange は日付部分に正規化した宿泊期間を作成する
// チェックインがチェックアウトより厳密に前でない場合（0泊を含む）はエラー
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{
		CheckIn:  TruncateToDate(checkIn),
		CheckOut: TruncateToDate(checkOut),
	}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate は宿泊期間の検証を行う
func (r DateRange) Validate() error {
	if !r.CheckIn.Before(r.CheckOut) {
		return ErrInvalidRange
	}
	return nil
}

// Nights は泊数を返す（暦日差。時刻成分には依存しない）
func (r DateRange) Nights() int {
	return int(TruncateToDate(r.CheckOut).Sub(TruncateToDate(r.CheckIn)) / (24 * time.Hour))
}

// Overlaps は2つの宿泊期間が衝突するかを返す
// 半開区間の標準的な判定: 一方のチェックアウト日と他方のチェックイン日が
// 同じ日（入れ替わり日）の場合は衝突とみなさない
func (r DateRange) Overlaps(other DateRange) bool {
	return Overlaps(r, other)
}

// Overlaps は半開区間同士の衝突判定
// a.CheckOut <= b.CheckIn または a.CheckIn >= b.CheckOut のときのみ非衝突
func Overlaps(a, b DateRange) bool {
	if !a.CheckOut.After(b.CheckIn) || !a.CheckIn.Before(b.CheckOut) {
		return false
	}
	return true
}

// StartsBefore はチェックイン日が指定日より前かを返す
func (r DateRange) StartsBefore(date time.Time) bool {
	return r.CheckIn.Before(TruncateToDate(date))
}

// TruncateToDate は時刻成分を落としてUTCの日付に正規化する
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
