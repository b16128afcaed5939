// Package spin 存放每日转盘额度与抽取记录 Model 相关逻辑
package spin

import (
	"time"

	"mabar/app/models"
)

// DailySpin 每日转盘额度记录，(user_id, spin_date) 唯一
// 首次抽取时惰性创建，只增不删，按天累积形成历史
type DailySpin struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_daily_spins_user_date" json:"user_id"`
	SpinDate string `gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_spins_user_date" json:"spin_date"` // UTC 日历日，2006-01-02
	SpinsUsed int   `gorm:"not null;default:0" json:"spins_used"`
	MaxSpins  int   `gorm:"not null;default:3" json:"max_spins"`

	models.CommonTimestampsField
}

// TableName 表名
func (DailySpin) TableName() string {
	return "user_daily_spins"
}

// History 转盘抽取流水，只追加不修改
type History struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	PlaceID   string    `gorm:"type:varchar(36);not null;index" json:"place_id"`
	VoucherID string    `gorm:"type:varchar(36);default:null" json:"voucher_id,omitempty"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	RadiusKm  float64   `gorm:"not null" json:"radius_km"`
	SpunAt    time.Time `gorm:"not null;index" json:"spun_at"`
}

// TableName 表名
func (History) TableName() string {
	return "spin_history"
}
