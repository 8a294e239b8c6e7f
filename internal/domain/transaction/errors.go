package transaction

import "errors"

// ErrConflict は作業単位が並行する別の作業単位と競合して中断されたことを表す
// 呼び出し側は最初からやり直すことで回復できる（リトライ回数は呼び出し側が制限する）
var ErrConflict = errors.New("作業単位が競合により中断されました")
