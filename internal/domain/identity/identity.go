package identity

// Role は呼び出し元のロールを表す
// 認証・認可そのものは外部コラボレーター（ストアフロントの認証層）の責務で、
// 予約エンジンは確定済みのロールを受け取るだけ
type Role string

const (
	RoleGuest Role = "guest" // 宿泊客
	RoleOwner Role = "owner" // ホテルオーナー
	RoleAdmin Role = "admin" // 管理者
)

// Identity は呼び出し元の身元を表す
type Identity struct {
	UserID string
	Role   Role
}

// Valid はロールが既知の値かを返す
func (i Identity) Valid() bool {
	if i.UserID == "" {
		return false
	}
	switch i.Role {
	case RoleGuest, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin は管理者かを返す
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
