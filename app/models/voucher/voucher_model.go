// Package voucher 存放优惠券 Model 相关逻辑
package voucher

import (
	"time"

	"mabar/app/models"
	"mabar/app/models/place"
)

// Template 优惠券模板，定义某个商家可发放的折扣内容
// 模板本身不可变，下架通过 is_active 控制
type Template struct {
	ID            string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PlaceID       string       `gorm:"type:varchar(36);not null;index" json:"place_id"`
	DiscountType  DiscountType `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue float64      `gorm:"not null" json:"discount_value"`
	TitleEn       string       `gorm:"type:varchar(255);not null" json:"title_en"`
	TitleID       string       `gorm:"type:varchar(255);not null" json:"title_id"`
	DescriptionEn string       `gorm:"type:text" json:"description_en,omitempty"`
	DescriptionID string       `gorm:"type:text" json:"description_id,omitempty"`
	TermsEn       string       `gorm:"type:text" json:"terms_en,omitempty"`
	TermsID       string       `gorm:"type:text" json:"terms_id,omitempty"`
	MinPurchase   float64      `gorm:"default:0" json:"min_purchase,omitempty"`
	MaxDiscount   float64      `gorm:"default:0" json:"max_discount,omitempty"`
	ValidFor      ValidFor     `gorm:"type:varchar(10);not null;default:'both'" json:"valid_for"`
	ValidityHours int          `gorm:"not null;default:24" json:"validity_hours"`
	IsActive      bool         `gorm:"default:true;index" json:"is_active"`

	models.CommonTimestampsField
}

// TableName 表名
func (Template) TableName() string {
	return "voucher_templates"
}

// Voucher 用户持有的优惠券实例
// 状态只能向前流转：active -> used 或 active -> expired
// expires_at 创建后不可变更，used_at 当且仅当 status == used 时有值
type Voucher struct {
	ID         string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	TemplateID string     `gorm:"type:varchar(36);not null;index" json:"template_id"`
	PlaceID    string     `gorm:"type:varchar(36);not null;index" json:"place_id"`
	Code       string     `gorm:"type:varchar(12);not null;uniqueIndex" json:"code"` // 可展示/扫码的兑换码
	Status     Status     `gorm:"type:varchar(10);not null;default:'active';index" json:"status"`
	ClaimedAt  time.Time  `gorm:"not null" json:"claimed_at"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	UsedAt     *time.Time `gorm:"default:null" json:"used_at,omitempty"`

	models.CommonTimestampsField

	// 关联数据，查询详情时预加载
	Template *Template    `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Place    *place.Place `gorm:"foreignKey:PlaceID" json:"place,omitempty"`
}

// TableName 表名
func (Voucher) TableName() string {
	return "user_vouchers"
}
