package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeePolicy(t *testing.T) {
	policy := FeePolicy{
		PlatformFeePercent: 1.0,
		NoShowFeePercent:   15.0,
	}

	t.Run("platform fee of captured amount", func(t *testing.T) {
		assert.Equal(t, int64(30), policy.PlatformFee(3000))
		assert.Equal(t, int64(1), policy.PlatformFee(100))
		assert.Equal(t, int64(0), policy.PlatformFee(0))
	})

	t.Run("no-show fee from frozen price", func(t *testing.T) {
		assert.Equal(t, int64(750), policy.NoShowFee(5000))
	})

	t.Run("percent fee wins over flat", func(t *testing.T) {
		p := FeePolicy{NoShowFeePercent: 10.0, NoShowFeeFlat: 999}
		assert.Equal(t, int64(300), p.NoShowFee(3000))
	})

	t.Run("flat fee used when percent unset", func(t *testing.T) {
		p := FeePolicy{CancellationFeeFlat: 500}
		assert.Equal(t, int64(500), p.CancellationFee(3000))
	})

	t.Run("zero policy charges nothing", func(t *testing.T) {
		var p FeePolicy
		assert.Equal(t, int64(0), p.NoShowFee(3000))
		assert.Equal(t, int64(0), p.CancellationFee(3000))
	})

	t.Run("rounding is to nearest cent", func(t *testing.T) {
		p := FeePolicy{PlatformFeePercent: 1.0}
		// 1% от 149 = 1.49 -> 1; от 150 = 1.5 -> 2
		assert.Equal(t, int64(1), p.PlatformFee(149))
		assert.Equal(t, int64(2), p.PlatformFee(150))
	})
}
