// Package place 存放附近商家 Model 相关逻辑
package place

import (
	"mabar/app/models"
)

// Place 附近商家模型，转盘抽取的候选对象
type Place struct {
	ID            string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	GooglePlaceID string   `gorm:"type:varchar(128);uniqueIndex;default:null" json:"google_place_id,omitempty"` // 外部地点服务的 ID
	Name          string   `gorm:"type:varchar(255);not null" json:"name"`
	Address       string   `gorm:"type:text" json:"address,omitempty"`
	Latitude      float64  `gorm:"not null;index" json:"latitude"`
	Longitude     float64  `gorm:"not null;index" json:"longitude"`
	Category      Category `gorm:"type:varchar(20);index" json:"category"`
	Rating        float64  `gorm:"default:0" json:"rating,omitempty"`
	PriceLevel    int      `gorm:"default:0" json:"price_level,omitempty"`
	PhotoURL      string   `gorm:"type:text" json:"photo_url,omitempty"`
	IsActive      bool     `gorm:"default:true;index" json:"is_active"`

	models.CommonTimestampsField
}

// TableName 表名
func (Place) TableName() string {
	return "places"
}
