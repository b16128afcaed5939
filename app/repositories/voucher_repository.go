package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mabar/app/models/voucher"
	"mabar/pkg/config"
	"mabar/pkg/database"
	"mabar/pkg/logger"
)

// maxCodeAttempts 兑换码碰撞时的最大重新生成次数
const maxCodeAttempts = 5

// VoucherRepository 优惠券仓库，状态字段的唯一修改入口
type VoucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建仓库实例
func NewVoucherRepository() *VoucherRepository {
	return &VoucherRepository{
		db: database.DB,
	}
}

// NewVoucherRepositoryWithDB 使用指定连接创建仓库实例，测试用
func NewVoucherRepositoryWithDB(db *gorm.DB) *VoucherRepository {
	return &VoucherRepository{db: db}
}

// ActiveTemplateForPlace 查询商家当前可发放的优惠券模板
func (r *VoucherRepository) ActiveTemplateForPlace(ctx context.Context, placeID string) (*voucher.Template, error) {
	var tpl voucher.Template
	err := r.db.WithContext(ctx).
		Where("place_id = ? AND is_active = ?", placeID, true).
		Order("created_at DESC").
		First(&tpl).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, voucher.ErrTemplateUnavailable
		}
		return nil, fmt.Errorf("query voucher template: %w", err)
	}
	return &tpl, nil
}

// Issue 为用户签发一张优惠券，初始状态 active
// expires_at = claimed_at + 模板有效期，创建后不可变更
// 兑换码先查重后写入，数据库唯一索引兜底，碰撞时有限次重新生成
func (r *VoucherRepository) Issue(ctx context.Context, userID, placeID string, now time.Time) (*voucher.Voucher, error) {
	tpl, err := r.ActiveTemplateForPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}

	validity := tpl.ValidityHours
	if validity <= 0 {
		validity = config.GetInt("voucher.validity_hours", voucher.DefaultValidityHours)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := voucher.NewCode()
		if err != nil {
			return nil, fmt.Errorf("generate voucher code: %w", err)
		}

		// 先与存量兑换码查重
		var count int64
		if err := r.db.WithContext(ctx).Model(&voucher.Voucher{}).
			Where("code = ?", code).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check voucher code: %w", err)
		}
		if count > 0 {
			continue
		}

		v := &voucher.Voucher{
			ID:         uuid.New().String(),
			UserID:     userID,
			TemplateID: tpl.ID,
			PlaceID:    placeID,
			Code:       code,
			Status:     voucher.StatusActive,
			ClaimedAt:  now,
			ExpiresAt:  now.Add(time.Duration(validity) * time.Hour),
		}

		if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
			// 查重和写入之间仍可能撞上唯一索引，重新生成
			logger.WarnString("Voucher", "Issue", "code collision, regenerating: "+err.Error())
			continue
		}

		v.Template = tpl
		return v, nil
	}

	return nil, voucher.ErrCodeCollision
}

// Redeem 核销优惠券，active -> used
// 条件更新保证并发下恰好一次成功；失败时读回记录区分具体原因
func (r *VoucherRepository) Redeem(ctx context.Context, voucherID, requesterID string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&voucher.Voucher{}).
		Where("id = ? AND user_id = ? AND status = ? AND expires_at > ?",
			voucherID, requesterID, voucher.StatusActive, now).
		Updates(map[string]interface{}{
			"status":  voucher.StatusUsed,
			"used_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("redeem voucher: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// 条件更新没有命中，定位失败原因
	var v voucher.Voucher
	err := r.db.WithContext(ctx).Where("id = ?", voucherID).First(&v).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return voucher.ErrVoucherNotFound
		}
		return fmt.Errorf("load voucher: %w", err)
	}

	if v.UserID != requesterID {
		return voucher.ErrVoucherNotOwned
	}

	switch v.Status {
	case voucher.StatusActive:
		// 字段还是 active 但已过有效期，顺手落库为 expired（惰性过期）
		if v.IsExpiredAt(now) {
			r.markExpired(ctx, v.ID)
			return voucher.ErrVoucherExpired
		}
		// active、未过期、归属正确却没有命中，只能是并发核销抢先提交
		return voucher.ErrVoucherNotActive
	case voucher.StatusExpired:
		return voucher.ErrVoucherExpired
	default:
		return voucher.ErrVoucherNotActive
	}
}

// GetByID 查询单张优惠券，预加载模板和商家
// 读路径执行惰性过期：对外状态以 EffectiveStatus 为准，并顺手修正持久化字段
func (r *VoucherRepository) GetByID(ctx context.Context, voucherID string, now time.Time) (*voucher.Voucher, error) {
	var v voucher.Voucher
	err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Place").
		Where("id = ?", voucherID).
		First(&v).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, voucher.ErrVoucherNotFound
		}
		return nil, fmt.Errorf("load voucher: %w", err)
	}

	if v.Status == voucher.StatusActive && v.IsExpiredAt(now) {
		r.markExpired(ctx, v.ID)
		v.Status = voucher.StatusExpired
	}
	return &v, nil
}

// ListByUser 获取用户的优惠券，按领取时间倒序，可按状态过滤
// 查询前先批量修正该用户已过期但字段仍为 active 的记录，
// 保证过滤条件和返回的状态都是修正后的
func (r *VoucherRepository) ListByUser(ctx context.Context, userID string, status voucher.Status, now time.Time) ([]voucher.Voucher, error) {
	if err := r.db.WithContext(ctx).Model(&voucher.Voucher{}).
		Where("user_id = ? AND status = ? AND expires_at <= ?", userID, voucher.StatusActive, now).
		UpdateColumn("status", voucher.StatusExpired).Error; err != nil {
		// 修正失败不阻塞读取，EffectiveStatus 仍然兜底
		logger.WarnString("Voucher", "LazyExpire", err.Error())
	}

	query := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Place").
		Where("user_id = ?", userID)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var vouchers []voucher.Voucher
	if err := query.Order("claimed_at DESC").Find(&vouchers).Error; err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	return vouchers, nil
}

// markExpired 将过期券的持久化状态修正为 expired，active -> expired
// 修正是机会性的，失败只记日志，读路径的对外状态不受影响
func (r *VoucherRepository) markExpired(ctx context.Context, voucherID string) {
	err := r.db.WithContext(ctx).Model(&voucher.Voucher{}).
		Where("id = ? AND status = ?", voucherID, voucher.StatusActive).
		UpdateColumn("status", voucher.StatusExpired).Error
	if err != nil {
		logger.WarnString("Voucher", "LazyExpire", err.Error())
	}
}

// CreateTemplate 新增优惠券模板
func (r *VoucherRepository) CreateTemplate(ctx context.Context, tpl *voucher.Template) error {
	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(tpl).Error
}
