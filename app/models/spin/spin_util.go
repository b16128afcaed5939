package spin

import (
	"errors"
	"time"
)

// DefaultMaxSpins 每日默认可抽取次数
const DefaultMaxSpins = 3

var (
	// ErrQuotaExhausted 当日额度已用完，当天不可重试
	ErrQuotaExhausted = errors.New("daily spin quota exhausted")
)

// Status 额度状态视图，返回给客户端
type Status struct {
	SpinsUsed      int `json:"spins_used"`
	MaxSpins       int `json:"max_spins"`
	SpinsRemaining int `json:"spins_remaining"`
}

// StatusOf 由额度记录派生状态视图，剩余次数不会为负
func StatusOf(record *DailySpin) Status {
	s := Status{
		SpinsUsed: record.SpinsUsed,
		MaxSpins:  record.MaxSpins,
	}
	if remaining := s.MaxSpins - s.SpinsUsed; remaining > 0 {
		s.SpinsRemaining = remaining
	}
	return s
}

// DefaultStatus 零用量的默认状态
// 存储不可用时降级返回，保证客户端页面仍然可用
func DefaultStatus(maxSpins int) Status {
	if maxSpins <= 0 {
		maxSpins = DefaultMaxSpins
	}
	return Status{
		SpinsUsed:      0,
		MaxSpins:       maxSpins,
		SpinsRemaining: maxSpins,
	}
}

// DateOf 额度日期边界，统一使用 UTC 日历日，以请求到达时刻为准
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
