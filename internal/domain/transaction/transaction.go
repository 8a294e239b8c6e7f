package transaction

import "context"

// Tx はアトミックな作業単位を表すインターフェース
// 空室判定と予約挿入を1つの作業単位に閉じ込めるための抽象化で、
// ドメイン層がsqlx等のインフラに依存しないようにする
type Tx interface {
	// Commit は作業単位を確定する
	Commit() error
	// Rollback は作業単位を破棄する
	Rollback() error
}

// Manager は作業単位を開始するインターフェース
type Manager interface {
	// Begin は新しい作業単位を開始する
	Begin(ctx context.Context) (Tx, error)
}
