package stay

import "errors"

// Stay ドメインのエラー定義
var (
	ErrInvalidRange = errors.New("チェックイン日はチェックアウト日より前である必要があります")
)
