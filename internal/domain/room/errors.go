package room

import "errors"

// Room ドメインのエラー定義
var (
	ErrRoomNotFound      = errors.New("客室が見つかりません")
	ErrRoomIDRequired    = errors.New("客室IDは必須です")
	ErrInvalidTotalUnits = errors.New("部屋数は1以上である必要があります")
	ErrInvalidPrice      = errors.New("料金は0以上である必要があります")
)
