package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mabar/app/models/spin"
	"mabar/pkg/database"
)

// SpinRepository 每日转盘额度与抽取流水仓库
type SpinRepository struct {
	db *gorm.DB
}

// NewSpinRepository 创建仓库实例
func NewSpinRepository() *SpinRepository {
	return &SpinRepository{
		db: database.DB,
	}
}

// NewSpinRepositoryWithDB 使用指定连接创建仓库实例，测试用
func NewSpinRepositoryWithDB(db *gorm.DB) *SpinRepository {
	return &SpinRepository{db: db}
}

// GetStatus 查询某天的额度状态
// 额度记录惰性创建，没有记录时返回零用量视图，不落库
func (r *SpinRepository) GetStatus(ctx context.Context, userID, date string, maxSpins int) (spin.Status, error) {
	var record spin.DailySpin
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND spin_date = ?", userID, date).
		First(&record).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return spin.DefaultStatus(maxSpins), nil
		}
		return spin.DefaultStatus(maxSpins), fmt.Errorf("query daily spin status: %w", err)
	}

	return spin.StatusOf(&record), nil
}

// TryConsume 原子地消耗一次额度
// 先按 (user_id, spin_date) 幂等建行，再以条件更新做 check-and-increment：
//
//	UPDATE ... SET spins_used = spins_used + 1 WHERE spins_used < max_spins
//
// 两个并发请求只剩一个名额时，数据库保证恰好一个更新生效，不存在丢失更新
func (r *SpinRepository) TryConsume(ctx context.Context, userID, date string, maxSpins int) (bool, spin.Status, error) {
	if maxSpins <= 0 {
		maxSpins = spin.DefaultMaxSpins
	}

	var granted bool
	var record spin.DailySpin

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 惰性创建当天的额度记录，已存在时忽略
		seed := spin.DailySpin{
			UserID:   userID,
			SpinDate: date,
			MaxSpins: maxSpins,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "spin_date"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return fmt.Errorf("materialize daily spin record: %w", err)
		}

		// 2. 条件自增，额度用完时影响行数为 0
		result := tx.Model(&spin.DailySpin{}).
			Where("user_id = ? AND spin_date = ? AND spins_used < max_spins", userID, date).
			UpdateColumn("spins_used", gorm.Expr("spins_used + 1"))
		if result.Error != nil {
			return fmt.Errorf("consume spin: %w", result.Error)
		}
		granted = result.RowsAffected == 1

		// 3. 读回最新状态
		if err := tx.Where("user_id = ? AND spin_date = ?", userID, date).
			First(&record).Error; err != nil {
			return fmt.Errorf("reload daily spin record: %w", err)
		}
		return nil
	})

	if err != nil {
		return false, spin.DefaultStatus(maxSpins), err
	}
	return granted, spin.StatusOf(&record), nil
}

// CreateHistory 追加一条抽取流水
func (r *SpinRepository) CreateHistory(ctx context.Context, history *spin.History) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// ListHistory 获取用户的抽取流水，按时间倒序分页
func (r *SpinRepository) ListHistory(ctx context.Context, userID string, page, pageSize int) ([]spin.History, int64, error) {
	var entries []spin.History
	var total int64

	query := r.db.WithContext(ctx).Model(&spin.History{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("spun_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error

	return entries, total, err
}
