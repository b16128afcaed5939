package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mabar/app/models/place"
	"mabar/app/models/voucher"
)

// seedPlaceWithTemplate 建一个商家和它的可发放模板
func seedPlaceWithTemplate(t *testing.T, db *gorm.DB, validityHours int) (string, string) {
	t.Helper()

	p := place.Place{
		ID:        uuid.New().String(),
		Name:      "Toko Kopi Tuku",
		Latitude:  -6.26,
		Longitude: 106.81,
		Category:  place.CategoryCafe,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&p).Error)

	tpl := voucher.Template{
		ID:            uuid.New().String(),
		PlaceID:       p.ID,
		DiscountType:  voucher.DiscountPercentage,
		DiscountValue: 20,
		TitleEn:       "20% off all drinks",
		TitleID:       "Diskon 20% semua minuman",
		ValidFor:      voucher.ValidForBoth,
		ValidityHours: validityHours,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&tpl).Error)

	return p.ID, tpl.ID
}

func TestIssueVoucher(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	placeID, templateID := seedPlaceWithTemplate(t, db, 24)

	v, err := repo.Issue(ctx, "user-1", placeID, now)
	require.NoError(t, err)

	assert.Equal(t, "user-1", v.UserID)
	assert.Equal(t, templateID, v.TemplateID)
	assert.Equal(t, placeID, v.PlaceID)
	assert.Equal(t, voucher.StatusActive, v.Status)
	assert.Len(t, v.Code, voucher.CodeLength)
	assert.Equal(t, now, v.ClaimedAt)
	// 过期时刻 = 领取时刻 + 模板有效期
	assert.Equal(t, now.Add(24*time.Hour), v.ExpiresAt)
	assert.Nil(t, v.UsedAt)
}

func TestIssueWithoutTemplate(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()

	p := place.Place{ID: uuid.New().String(), Name: "Warung Tanpa Promo", IsActive: true}
	require.NoError(t, db.Create(&p).Error)

	_, err := repo.Issue(ctx, "user-1", p.ID, time.Now())
	assert.ErrorIs(t, err, voucher.ErrTemplateUnavailable)
}

func TestIssueIgnoresInactiveTemplate(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()

	placeID, _ := seedPlaceWithTemplate(t, db, 24)
	// 模板下架后不再发放
	require.NoError(t, db.Model(&voucher.Template{}).
		Where("place_id = ?", placeID).
		Update("is_active", false).Error)

	_, err := repo.Issue(ctx, "user-1", placeID, time.Now())
	assert.ErrorIs(t, err, voucher.ErrTemplateUnavailable)
}

func TestRedeemHappyPath(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	placeID, _ := seedPlaceWithTemplate(t, db, 24)
	v, err := repo.Issue(ctx, "user-1", placeID, now)
	require.NoError(t, err)

	redeemAt := now.Add(time.Hour)
	require.NoError(t, repo.Redeem(ctx, v.ID, "user-1", redeemAt))

	got, err := repo.GetByID(ctx, v.ID, redeemAt)
	require.NoError(t, err)
	assert.Equal(t, voucher.StatusUsed, got.Status)
	require.NotNil(t, got.UsedAt)
	assert.WithinDuration(t, redeemAt, *got.UsedAt, time.Second)
}

func TestRedeemTwice(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	placeID, _ := seedPlaceWithTemplate(t, db, 24)
	v, err := repo.Issue(ctx, "user-1", placeID, now)
	require.NoError(t, err)

	require.NoError(t, repo.Redeem(ctx, v.ID, "user-1", now.Add(time.Hour)))
	err = repo.Redeem(ctx, v.ID, "user-1", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, voucher.ErrVoucherNotActive)
}

// 并发核销同一张券，恰好一次成功
func TestRedeemConcurrent(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	placeID, _ := seedPlaceWithTemplate(t, db, 24)
	v, err := repo.Issue(ctx, "user-1", placeID, now)
	require.NoError(t, err)

	const workers = 5
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Redeem(ctx, v.ID, "user-1", now.Add(time.Hour))
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, voucher.ErrVoucherNotActive)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestRedeemNotOwned(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	placeID, _ := seedPlaceWithTemplate(t, db, 24)
	v, err := repo.Issue(ctx, "user-1", placeID, now)
	require.NoError(t, err)

	err = repo.Redeem(ctx, v.ID, "user-2", now.Add(time.Hour))
	assert.ErrorIs(t, err, voucher.ErrVoucherNotOwned)

	// 持有人名下的券不受影响
	got, err := repo.GetByID(ctx, v.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, voucher.StatusActive, got.Status)
}

func TestRedeemExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	placeID, _ := seedPlaceWithTemplate(t, db, 1)
	v, err := repo.Issue(ctx, "user-1", placeID, now)
	require.NoError(t, err)

	// 过了有效期才来核销
	err = repo.Redeem(ctx, v.ID, "user-1", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, voucher.ErrVoucherExpired)

	// 惰性过期顺手把持久化状态修正为 expired
	var stored voucher.Voucher
	require.NoError(t, db.Where("id = ?", v.ID).First(&stored).Error)
	assert.Equal(t, voucher.StatusExpired, stored.Status)
	assert.Nil(t, stored.UsedAt)
}

func TestRedeemNotFound(t *testing.T) {
	repo := NewVoucherRepositoryWithDB(newTestDB(t))

	err := repo.Redeem(context.Background(), uuid.New().String(), "user-1", time.Now())
	assert.ErrorIs(t, err, voucher.ErrVoucherNotFound)
}

func TestGetByIDLazyExpiry(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	placeID, _ := seedPlaceWithTemplate(t, db, 1)
	v, err := repo.Issue(ctx, "user-1", placeID, now)
	require.NoError(t, err)

	// 有效期内读取，保持 active
	got, err := repo.GetByID(ctx, v.ID, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, voucher.StatusActive, got.Status)

	// 过期后读取，对外即为 expired，且落库修正
	got, err = repo.GetByID(ctx, v.ID, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, voucher.StatusExpired, got.Status)

	var stored voucher.Voucher
	require.NoError(t, db.Where("id = ?", v.ID).First(&stored).Error)
	assert.Equal(t, voucher.StatusExpired, stored.Status)
}

func TestListByUserWithStatusFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepositoryWithDB(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	shortPlace, _ := seedPlaceWithTemplate(t, db, 1)
	longPlace, _ := seedPlaceWithTemplate(t, db, 48)

	short, err := repo.Issue(ctx, "user-1", shortPlace, now)
	require.NoError(t, err)
	long, err := repo.Issue(ctx, "user-1", longPlace, now.Add(time.Minute))
	require.NoError(t, err)

	// 其他用户的券不应出现在结果里
	_, err = repo.Issue(ctx, "user-2", longPlace, now)
	require.NoError(t, err)

	later := now.Add(2 * time.Hour)

	all, err := repo.ListByUser(ctx, "user-1", "", later)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// 按领取时间倒序
	assert.Equal(t, long.ID, all[0].ID)
	assert.Equal(t, short.ID, all[1].ID)

	// 短效券在列表读取时已被惰性过期
	active, err := repo.ListByUser(ctx, "user-1", voucher.StatusActive, later)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, long.ID, active[0].ID)

	expired, err := repo.ListByUser(ctx, "user-1", voucher.StatusExpired, later)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, short.ID, expired[0].ID)
}
