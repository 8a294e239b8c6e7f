package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/identity"
	"github.com/sanosuguru/go-hotel-room-reservation/internal/domain/stay"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testRange(t *testing.T) stay.DateRange {
	t.Helper()
	r, err := stay.NewDateRange(date(2024, 6, 1), date(2024, 6, 5))
	require.NoError(t, err)
	return r
}

func createTestBooking(t *testing.T) *Booking {
	t.Helper()
	b := NewBooking("room-1", "guest-1", testRange(t), 1, 2, 40000)
	require.NoError(t, b.Validate())
	return b
}

func TestNewBooking(t *testing.T) {
	tests := []struct {
		name       string
		roomID     string
		guestID    string
		unitCount  int
		adultCount int
		totalPrice int64
		wantErr    error
	}{
		{name: "正常な予約作成", roomID: "room-1", guestID: "guest-1", unitCount: 2, adultCount: 3, totalPrice: 60000},
		{name: "客室ID未指定", roomID: "", guestID: "guest-1", unitCount: 1, adultCount: 1, totalPrice: 10000, wantErr: ErrRoomIDRequired},
		{name: "宿泊客ID未指定", roomID: "room-1", guestID: "", unitCount: 1, adultCount: 1, totalPrice: 10000, wantErr: ErrGuestIDRequired},
		{name: "部屋数0は無効", roomID: "room-1", guestID: "guest-1", unitCount: 0, adultCount: 1, totalPrice: 10000, wantErr: ErrInvalidUnitCount},
		{name: "大人0人は無効", roomID: "room-1", guestID: "guest-1", unitCount: 1, adultCount: 0, totalPrice: 10000, wantErr: ErrInvalidAdultCount},
		{name: "負の料金は無効", roomID: "room-1", guestID: "guest-1", unitCount: 1, adultCount: 1, totalPrice: -1, wantErr: ErrInvalidTotalPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBooking(tt.roomID, tt.guestID, testRange(t), tt.unitCount, tt.adultCount, tt.totalPrice)
			err := b.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, b.Status)
			assert.True(t, b.IsActive())
		})
	}
}

func TestBooking_IsActive(t *testing.T) {
	b := createTestBooking(t)
	assert.True(t, b.IsActive())
	b.Status = StatusConfirmed
	assert.True(t, b.IsActive())
	b.Status = StatusCancelled
	assert.False(t, b.IsActive())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"→"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestBooking_TransitionTo_RoleRules(t *testing.T) {
	guest := Actor{UserID: "guest-1", Role: identity.RoleGuest}
	otherGuest := Actor{UserID: "guest-2", Role: identity.RoleGuest}
	owner := Actor{UserID: "owner-1", Role: identity.RoleOwner, OwnsRoom: true}
	otherOwner := Actor{UserID: "owner-2", Role: identity.RoleOwner, OwnsRoom: false}
	admin := Actor{UserID: "admin-1", Role: identity.RoleAdmin}

	tests := []struct {
		name    string
		from    Status
		to      Status
		actor   Actor
		wantErr error
	}{
		{"オーナーはpendingを確定できる", StatusPending, StatusConfirmed, owner, nil},
		{"管理者はpendingを確定できる", StatusPending, StatusConfirmed, admin, nil},
		{"宿泊客本人は確定できない", StatusPending, StatusConfirmed, guest, ErrForbidden},
		{"他ホテルのオーナーは確定できない", StatusPending, StatusConfirmed, otherOwner, ErrForbidden},
		{"宿泊客本人はpendingをキャンセルできる", StatusPending, StatusCancelled, guest, nil},
		{"他の宿泊客はキャンセルできない", StatusPending, StatusCancelled, otherGuest, ErrForbidden},
		{"オーナーはpendingをキャンセルできる", StatusPending, StatusCancelled, owner, nil},
		{"オーナーはconfirmedをキャンセルできる", StatusConfirmed, StatusCancelled, owner, nil},
		{"管理者はconfirmedをキャンセルできる", StatusConfirmed, StatusCancelled, admin, nil},
		{"宿泊客本人はconfirmedをキャンセルできない", StatusConfirmed, StatusCancelled, guest, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := createTestBooking(t)
			b.Status = tt.from
			err := b.TransitionTo(tt.to, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, b.Status, "失敗した遷移は状態を変えない")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, b.Status)
		})
	}
}

func TestBooking_TransitionTo_FromCancelled(t *testing.T) {
	// cancelledからはどのロールでも一切の遷移を許さない
	actors := []Actor{
		{UserID: "guest-1", Role: identity.RoleGuest},
		{UserID: "owner-1", Role: identity.RoleOwner, OwnsRoom: true},
		{UserID: "admin-1", Role: identity.RoleAdmin},
	}
	targets := []Status{StatusPending, StatusConfirmed, StatusCancelled}

	for _, actor := range actors {
		for _, target := range targets {
			b := createTestBooking(t)
			b.Status = StatusCancelled
			err := b.TransitionTo(target, actor)
			assert.ErrorIs(t, err, ErrInvalidTransition,
				"role=%s target=%s", actor.Role, target)
		}
	}
}

func TestBooking_TransitionTo_CancelledTwice(t *testing.T) {
	// キャンセル済み予約の再キャンセルは黙って成功せずErrInvalidTransition
	b := createTestBooking(t)
	admin := Actor{UserID: "admin-1", Role: identity.RoleAdmin}

	require.NoError(t, b.TransitionTo(StatusCancelled, admin))
	err := b.TransitionTo(StatusCancelled, admin)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBooking_TransitionTo_UnknownTarget(t *testing.T) {
	b := createTestBooking(t)
	admin := Actor{UserID: "admin-1", Role: identity.RoleAdmin}
	err := b.TransitionTo(Status("checked_in"), admin)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBooking_TransitionTo_UpdatesTimestamp(t *testing.T) {
	b := createTestBooking(t)
	before := b.UpdatedAt
	time.Sleep(time.Millisecond)

	owner := Actor{UserID: "owner-1", Role: identity.RoleOwner, OwnsRoom: true}
	require.NoError(t, b.TransitionTo(StatusConfirmed, owner))
	assert.True(t, b.UpdatedAt.After(before))
}
