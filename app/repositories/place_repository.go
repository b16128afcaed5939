package repositories

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mabar/app/models/place"
	"mabar/pkg/database"
)

// PlaceRepository 附近商家仓库，转盘抽取的候选集来源
type PlaceRepository struct {
	db *gorm.DB
}

// NewPlaceRepository 创建仓库实例
func NewPlaceRepository() *PlaceRepository {
	return &PlaceRepository{
		db: database.DB,
	}
}

// NewPlaceRepositoryWithDB 使用指定连接创建仓库实例，测试用
func NewPlaceRepositoryWithDB(db *gorm.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// FindNearby 半径范围内的候选商家，按距离从近到远
// 先用经纬度包围盒走索引粗筛，再在内存里按 Haversine 距离精筛，
// 同一套 SQL 在 PostgreSQL 和 SQLite 上行为一致
func (r *PlaceRepository) FindNearby(ctx context.Context, lat, lng, radiusKm float64, category string) ([]place.Place, error) {
	// 包围盒：1 度纬度约 111km，经度按纬度收缩
	latDelta := radiusKm / 111.0
	lngDelta := radiusKm / (111.0 * math.Cos(lat*math.Pi/180))
	if math.IsInf(lngDelta, 0) || math.IsNaN(lngDelta) {
		lngDelta = 180
	}

	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
		Where("longitude BETWEEN ? AND ?", lng-lngDelta, lng+lngDelta)

	if category != "" && category != place.CategoryAll {
		query = query.Where("category = ?", category)
	}

	var rough []place.Place
	if err := query.Find(&rough).Error; err != nil {
		return nil, fmt.Errorf("query nearby places: %w", err)
	}

	// 精确过滤并按距离排序
	type withDistance struct {
		p place.Place
		d float64
	}
	matched := make([]withDistance, 0, len(rough))
	for _, p := range rough {
		d := place.DistanceKm(lat, lng, p.Latitude, p.Longitude)
		if d <= radiusKm {
			matched = append(matched, withDistance{p: p, d: d})
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].d < matched[j].d
	})

	result := make([]place.Place, len(matched))
	for i, m := range matched {
		result[i] = m.p
	}
	return result, nil
}

// GetByID 查询单个商家
func (r *PlaceRepository) GetByID(ctx context.Context, placeID string) (*place.Place, error) {
	var p place.Place
	if err := r.db.WithContext(ctx).Where("id = ?", placeID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Create 新增商家
func (r *PlaceRepository) Create(ctx context.Context, p *place.Place) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// UpsertByExternalID 按外部地点 ID 批量导入商家
// 已存在的记录更新可变字段，返回写入条数
func (r *PlaceRepository) UpsertByExternalID(ctx context.Context, places []place.Place) (int, error) {
	if len(places) == 0 {
		return 0, nil
	}

	for i := range places {
		if places[i].ID == "" {
			places[i].ID = uuid.New().String()
		}
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "google_place_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "address", "latitude", "longitude",
			"category", "rating", "price_level", "photo_url", "is_active",
		}),
	}).Create(&places).Error
	if err != nil {
		return 0, fmt.Errorf("upsert places: %w", err)
	}
	return len(places), nil
}
