package place

import "math"

// Category 商家分类
type Category string

const (
	CategoryCafe       Category = "cafe"
	CategoryRestaurant Category = "restaurant"
	CategoryBar        Category = "bar"
	CategoryBakery     Category = "bakery"
)

// CategoryAll 表示不按分类过滤
const CategoryAll = "all"

// Categories 全部合法分类
var Categories = []Category{CategoryCafe, CategoryRestaurant, CategoryBar, CategoryBakery}

// EarthRadiusKm 地球半径
const EarthRadiusKm = 6371.0

// DistanceKm Haversine 球面距离，单位公里
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// IsValidCategory 校验分类是否合法，"all" 与空串视为不过滤
func IsValidCategory(c string) bool {
	if c == "" || c == CategoryAll {
		return true
	}
	for _, valid := range Categories {
		if Category(c) == valid {
			return true
		}
	}
	return false
}
