package voucher

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewCode()
		require.NoError(t, err)

		assert.Len(t, code, CodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch),
				"code %q contains character outside alphabet", code)
		}
		seen[code] = true
	}
	// 100 个随机码全部碰撞的概率可以忽略
	assert.Greater(t, len(seen), 90)
}

func TestIsExpiredAt(t *testing.T) {
	expiry := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	v := Voucher{ExpiresAt: expiry}

	assert.False(t, v.IsExpiredAt(expiry.Add(-time.Second)))
	// 过期时刻本身视为已过期
	assert.True(t, v.IsExpiredAt(expiry))
	assert.True(t, v.IsExpiredAt(expiry.Add(time.Second)))
}

func TestEffectiveStatus(t *testing.T) {
	expiry := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	active := Voucher{Status: StatusActive, ExpiresAt: expiry}
	assert.Equal(t, StatusActive, active.EffectiveStatus(expiry.Add(-time.Hour)))
	// 持久化字段还是 active，但对外已经过期
	assert.Equal(t, StatusExpired, active.EffectiveStatus(expiry.Add(time.Hour)))

	// 终态不受时刻影响
	used := Voucher{Status: StatusUsed, ExpiresAt: expiry}
	assert.Equal(t, StatusUsed, used.EffectiveStatus(expiry.Add(time.Hour)))
}
