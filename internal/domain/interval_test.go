package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func iv(startHour, endHour int) Interval {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return Interval{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestIntervalOverlaps(t *testing.T) {
	t.Run("touching boundaries do not overlap", func(t *testing.T) {
		assert.False(t, iv(10, 11).Overlaps(iv(11, 12)))
		assert.False(t, iv(11, 12).Overlaps(iv(10, 11)))
	})

	t.Run("partial overlap", func(t *testing.T) {
		assert.True(t, iv(10, 12).Overlaps(iv(11, 13)))
	})

	t.Run("containment overlaps", func(t *testing.T) {
		assert.True(t, iv(9, 17).Overlaps(iv(12, 13)))
	})
}

func TestIntervalSubtract(t *testing.T) {
	t.Run("no overlap keeps interval intact", func(t *testing.T) {
		result := iv(9, 12).Subtract(iv(13, 14))
		assert.Equal(t, []Interval{iv(9, 12)}, result)
	})

	t.Run("hole in the middle splits in two", func(t *testing.T) {
		result := iv(9, 17).Subtract(iv(12, 13))
		assert.Equal(t, []Interval{iv(9, 12), iv(13, 17)}, result)
	})

	t.Run("full cover removes interval", func(t *testing.T) {
		result := iv(10, 11).Subtract(iv(9, 12))
		assert.Empty(t, result)
	})

	t.Run("overlap at head trims start", func(t *testing.T) {
		result := iv(10, 14).Subtract(iv(9, 11))
		assert.Equal(t, []Interval{iv(11, 14)}, result)
	})

	t.Run("overlap at tail trims end", func(t *testing.T) {
		result := iv(10, 14).Subtract(iv(13, 15))
		assert.Equal(t, []Interval{iv(10, 13)}, result)
	})
}

func TestBookingTransitions(t *testing.T) {
	booking := func(status BookingStatus) *Booking {
		return &Booking{Status: status}
	}

	t.Run("confirm only from pending", func(t *testing.T) {
		assert.True(t, booking(StatusPending).CanConfirm())
		assert.False(t, booking(StatusConfirmed).CanConfirm())
		assert.False(t, booking(StatusCompleted).CanConfirm())
	})

	t.Run("check-in only from confirmed", func(t *testing.T) {
		assert.True(t, booking(StatusConfirmed).CanCheckIn())
		assert.False(t, booking(StatusPending).CanCheckIn())
		assert.False(t, booking(StatusCheckedIn).CanCheckIn())
	})

	t.Run("settle from confirmed or checked-in", func(t *testing.T) {
		assert.True(t, booking(StatusConfirmed).CanSettle())
		assert.True(t, booking(StatusCheckedIn).CanSettle())
		assert.False(t, booking(StatusPending).CanSettle())
		assert.False(t, booking(StatusCanceled).CanSettle())
	})

	t.Run("refund only from completed", func(t *testing.T) {
		assert.True(t, booking(StatusCompleted).CanRefund())
		assert.False(t, booking(StatusCheckedIn).CanRefund())
	})

	t.Run("blocking statuses", func(t *testing.T) {
		assert.True(t, booking(StatusPending).IsBlocking())
		assert.True(t, booking(StatusConfirmed).IsBlocking())
		assert.True(t, booking(StatusCheckedIn).IsBlocking())
		assert.False(t, booking(StatusCompleted).IsBlocking())
		assert.False(t, booking(StatusCanceled).IsBlocking())
		assert.False(t, booking(StatusNoShow).IsBlocking())
		assert.False(t, booking(StatusFailed).IsBlocking())
	})
}

func TestHoldIsActiveAt(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	t.Run("active hold before expiry", func(t *testing.T) {
		h := &Hold{Status: HoldStatusActive, ExpiresAt: now.Add(time.Minute)}
		assert.True(t, h.IsActiveAt(now))
	})

	t.Run("expired by wall clock even if status is stale", func(t *testing.T) {
		h := &Hold{Status: HoldStatusActive, ExpiresAt: now.Add(-time.Second)}
		assert.False(t, h.IsActiveAt(now))
	})

	t.Run("consumed hold is not active", func(t *testing.T) {
		h := &Hold{Status: HoldStatusConsumed, ExpiresAt: now.Add(time.Hour)}
		assert.False(t, h.IsActiveAt(now))
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		h := &Hold{Status: HoldStatusActive, ExpiresAt: now}
		assert.False(t, h.IsActiveAt(now))
	})
}
