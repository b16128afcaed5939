package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mabar/app/models/spin"
)

func TestGetStatusWithoutRecord(t *testing.T) {
	repo := NewSpinRepositoryWithDB(newTestDB(t))
	ctx := context.Background()

	status, err := repo.GetStatus(ctx, "user-1", "2026-08-28", 3)
	require.NoError(t, err)

	assert.Equal(t, 0, status.SpinsUsed)
	assert.Equal(t, 3, status.MaxSpins)
	assert.Equal(t, 3, status.SpinsRemaining)
}

func TestTryConsumeWithinQuota(t *testing.T) {
	repo := NewSpinRepositoryWithDB(newTestDB(t))
	ctx := context.Background()
	date := "2026-08-28"

	// 额度内的每一次消耗都应成功，剩余次数递减
	for i := 1; i <= 3; i++ {
		granted, status, err := repo.TryConsume(ctx, "user-1", date, 3)
		require.NoError(t, err)
		assert.True(t, granted, "consume %d should be granted", i)
		assert.Equal(t, i, status.SpinsUsed)
		assert.Equal(t, 3-i, status.SpinsRemaining)
	}

	// 第 4 次被拒，用量保持在上限
	granted, status, err := repo.TryConsume(ctx, "user-1", date, 3)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, 3, status.SpinsUsed)
	assert.Equal(t, 0, status.SpinsRemaining)
}

// 并发抢最后的名额时，授予总数不能超过额度
func TestTryConsumeConcurrent(t *testing.T) {
	repo := NewSpinRepositoryWithDB(newTestDB(t))
	ctx := context.Background()
	date := "2026-08-28"

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted, _, err := repo.TryConsume(ctx, "user-1", date, 3)
			assert.NoError(t, err)
			results <- granted
		}()
	}
	wg.Wait()
	close(results)

	grantedCount := 0
	for granted := range results {
		if granted {
			grantedCount++
		}
	}
	assert.Equal(t, 3, grantedCount)

	status, err := repo.GetStatus(ctx, "user-1", date, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, status.SpinsUsed)
}

// 额度按 UTC 日历日隔离，跨天自动恢复
func TestQuotaResetAcrossDays(t *testing.T) {
	repo := NewSpinRepositoryWithDB(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		granted, _, err := repo.TryConsume(ctx, "user-1", "2026-08-28", 3)
		require.NoError(t, err)
		require.True(t, granted)
	}
	granted, _, err := repo.TryConsume(ctx, "user-1", "2026-08-28", 3)
	require.NoError(t, err)
	require.False(t, granted)

	// 新的一天，满额可用，前一天的记录保持不变
	granted, status, err := repo.TryConsume(ctx, "user-1", "2026-08-29", 3)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 1, status.SpinsUsed)

	yesterday, err := repo.GetStatus(ctx, "user-1", "2026-08-28", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, yesterday.SpinsUsed)
}

// 不同用户的额度互不影响
func TestQuotaIsolatedPerUser(t *testing.T) {
	repo := NewSpinRepositoryWithDB(newTestDB(t))
	ctx := context.Background()
	date := "2026-08-28"

	for i := 0; i < 3; i++ {
		granted, _, err := repo.TryConsume(ctx, "user-1", date, 3)
		require.NoError(t, err)
		require.True(t, granted)
	}

	granted, status, err := repo.TryConsume(ctx, "user-2", date, 3)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 1, status.SpinsUsed)
}

func TestListHistoryPagination(t *testing.T) {
	repo := NewSpinRepositoryWithDB(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.CreateHistory(ctx, &spin.History{
			ID:      uuid.New().String(),
			UserID:  "user-1",
			PlaceID: "place-1",
			SpunAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, total, err := repo.ListHistory(ctx, "user-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	// 按时间倒序，最新的在前
	assert.True(t, entries[0].SpunAt.After(entries[1].SpunAt))

	entries, _, err = repo.ListHistory(ctx, "user-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// 其他用户看不到这些流水
	entries, total, err = repo.ListHistory(ctx, "user-2", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, entries)
}
