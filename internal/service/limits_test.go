// internal/service/limits_test.go
package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimitsMinimumDeposit(t *testing.T) {
	limits := testLimits()

	tests := []struct {
		name  string
		at    time.Time
		promo bool
		want  string
	}{
		{"BeforePromotion", time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC), false, "1100"},
		{"PromotionStart", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), true, "499"},
		{"DuringPromotion", testNow, true, "499"},
		{"PromotionEndIsExclusive", time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), false, "1100"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.promo, limits.PromotionActive(tc.at))
			assert.True(t, limits.MinimumDeposit(tc.at).Equal(dec(tc.want)))
		})
	}

	t.Run("NoPromotionConfigured", func(t *testing.T) {
		plain := testLimits()
		plain.PromoStart, plain.PromoEnd = time.Time{}, time.Time{}
		assert.False(t, plain.PromotionActive(testNow))
		assert.True(t, plain.MinimumDeposit(testNow).Equal(dec("1100")))
	})
}

func TestLimitsView(t *testing.T) {
	limits := testLimits()
	nairobi := time.FixedZone("EAT", 3*60*60)
	limits.Location = nairobi

	// 22:30 UTC is already the next day in Nairobi.
	view := limits.View(time.Date(2026, 10, 15, 22, 30, 0, 0, time.UTC))

	assert.Equal(t, "2026-10-16", view.BetslipDay)
	assert.True(t, view.MinimumDeposit.Equal(dec("499")))
	assert.True(t, view.PromotionActive)
	assert.True(t, view.NextBetslipAt.Equal(time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)))
}
