package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mabar/app/models/place"
	"mabar/app/models/spin"
	"mabar/app/models/voucher"
	"mabar/app/repositories"
	"mabar/pkg/draw"
)

// memoryRecorder 同步的流水记录器，替代生产环境的 Redis 队列
type memoryRecorder struct {
	mu      sync.Mutex
	entries []*spin.History
}

func (m *memoryRecorder) Enqueue(_ context.Context, history *spin.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, history)
	return nil
}

func (m *memoryRecorder) all() []*spin.History {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*spin.History(nil), m.entries...)
}

type testEnv struct {
	db       *gorm.DB
	service  *SpinService
	recorder *memoryRecorder
	now      *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&place.Place{},
		&voucher.Template{},
		&voucher.Voucher{},
		&spin.DailySpin{},
		&spin.History{},
	))

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	recorder := &memoryRecorder{}

	service := NewSpinService(
		repositories.NewSpinRepositoryWithDB(db),
		repositories.NewVoucherRepositoryWithDB(db),
		repositories.NewPlaceRepositoryWithDB(db),
		recorder,
		SpinServiceConfig{
			MaxSpins: 3,
			Now:      func() time.Time { return now },
			Seed:     42,
		},
	)

	return &testEnv{db: db, service: service, recorder: recorder, now: &now}
}

func (e *testEnv) seedPlace(t *testing.T, name string, lat, lng float64, withTemplate bool, validityHours int) place.Place {
	t.Helper()

	p := place.Place{
		ID:        uuid.New().String(),
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
		Category:  place.CategoryCafe,
		IsActive:  true,
	}
	require.NoError(t, e.db.Create(&p).Error)

	if withTemplate {
		tpl := voucher.Template{
			ID:            uuid.New().String(),
			PlaceID:       p.ID,
			DiscountType:  voucher.DiscountFixed,
			DiscountValue: 15000,
			TitleEn:       "Rp15.000 off",
			TitleID:       "Potongan Rp15.000",
			ValidFor:      voucher.ValidForDineIn,
			ValidityHours: validityHours,
			IsActive:      true,
		}
		require.NoError(t, e.db.Create(&tpl).Error)
	}
	return p
}

var jakarta = SearchArea{Latitude: -6.2608, Longitude: 106.8108, RadiusKm: 3}

func TestPerformSpinFullFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedPlace(t, "Kopi Nako", jakarta.Latitude+0.002, jakarta.Longitude, true, 24)
	env.seedPlace(t, "Toko Roti", jakarta.Latitude-0.003, jakarta.Longitude, true, 24)

	// 三次额度内的抽取全部成功，剩余次数递减
	for i := 1; i <= 3; i++ {
		result, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
		require.NoError(t, err)

		assert.NotEmpty(t, result.Place.ID)
		require.NotNil(t, result.Voucher)
		assert.Equal(t, voucher.StatusActive, result.Voucher.Status)
		assert.Len(t, result.Voucher.Code, voucher.CodeLength)
		assert.Equal(t, i, result.Status.SpinsUsed)
		assert.Equal(t, 3-i, result.Status.SpinsRemaining)
	}

	// 第四次被额度挡下
	_, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
	assert.ErrorIs(t, err, spin.ErrQuotaExhausted)

	// 三条流水，ID 互不相同，且都带上了签发的券
	entries := env.recorder.all()
	require.Len(t, entries, 3)
	ids := make(map[string]bool)
	for _, h := range entries {
		assert.Equal(t, "user-1", h.UserID)
		assert.NotEmpty(t, h.VoucherID)
		ids[h.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestPerformSpinNoCandidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 附近没有商家时不消耗额度
	_, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
	assert.ErrorIs(t, err, draw.ErrEmptyCandidates)

	status := env.service.GetStatus(ctx, "user-1")
	assert.Equal(t, 0, status.SpinsUsed)
	assert.Equal(t, 3, status.SpinsRemaining)
	assert.Empty(t, env.recorder.all())
}

func TestPerformSpinCategoryMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedPlace(t, "Kopi Nako", jakarta.Latitude+0.002, jakarta.Longitude, true, 24)

	_, err := env.service.PerformSpin(ctx, "user-1", jakarta, string(place.CategoryBar))
	assert.ErrorIs(t, err, draw.ErrEmptyCandidates)

	status := env.service.GetStatus(ctx, "user-1")
	assert.Equal(t, 0, status.SpinsUsed)
}

func TestPerformSpinWithoutTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 商家没有可发放的模板，抽取结果照常返回，只是没有券
	env.seedPlace(t, "Warung Tanpa Promo", jakarta.Latitude+0.002, jakarta.Longitude, false, 0)

	result, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
	require.NoError(t, err)
	assert.Nil(t, result.Voucher)
	assert.Equal(t, 1, result.Status.SpinsUsed)

	entries := env.recorder.all()
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].VoucherID)
}

func TestVoucherLifecycleThroughService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedPlace(t, "Kopi Nako", jakarta.Latitude+0.002, jakarta.Longitude, true, 1)

	result, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
	require.NoError(t, err)
	require.NotNil(t, result.Voucher)

	// 拨动逻辑时钟到有效期之后
	*env.now = env.now.Add(2 * time.Hour)

	err = env.service.RedeemVoucher(ctx, result.Voucher.ID, "user-1")
	assert.ErrorIs(t, err, voucher.ErrVoucherExpired)
}

func TestRedeemThroughService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedPlace(t, "Kopi Nako", jakarta.Latitude+0.002, jakarta.Longitude, true, 24)

	result, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
	require.NoError(t, err)
	require.NotNil(t, result.Voucher)

	require.NoError(t, env.service.RedeemVoucher(ctx, result.Voucher.ID, "user-1"))

	// 重复核销与他人核销都被拒
	assert.ErrorIs(t, env.service.RedeemVoucher(ctx, result.Voucher.ID, "user-1"), voucher.ErrVoucherNotActive)
	assert.ErrorIs(t, env.service.RedeemVoucher(ctx, result.Voucher.ID, "user-2"), voucher.ErrVoucherNotOwned)
}

// 额度在 UTC 日界翻转后恢复
func TestQuotaResetsAtUTCMidnight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedPlace(t, "Kopi Nako", jakarta.Latitude+0.002, jakarta.Longitude, true, 24)

	for i := 0; i < 3; i++ {
		_, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
		require.NoError(t, err)
	}
	_, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
	require.ErrorIs(t, err, spin.ErrQuotaExhausted)

	// 跨过 UTC 午夜
	*env.now = time.Date(2026, 8, 29, 0, 0, 1, 0, time.UTC)

	result, err := env.service.PerformSpin(ctx, "user-1", jakarta, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Status.SpinsUsed)
	assert.Equal(t, 2, result.Status.SpinsRemaining)
}
