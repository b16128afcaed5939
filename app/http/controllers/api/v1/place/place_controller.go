package place

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	placemodel "mabar/app/models/place"
	"mabar/app/repositories"
	"mabar/app/requests"
	"mabar/pkg/config"
	"mabar/pkg/logger"
	"mabar/pkg/places"
	"mabar/pkg/response"
)

// PlaceController 附近商家接口
type PlaceController struct {
	repo     *repositories.PlaceRepository
	provider *places.Service
}

// NewPlaceController 创建控制器实例
func NewPlaceController() *PlaceController {
	return &PlaceController{
		repo:     repositories.NewPlaceRepository(),
		provider: newProvider(),
	}
}

// newProvider 根据配置构建地点服务客户端，配置缺失时返回 nil
func newProvider() *places.Service {
	urls := config.GetString("places.urls")
	apiKeys := config.GetString("places.api_keys")
	if urls == "" || apiKeys == "" {
		return nil
	}

	return places.NewService(&places.Config{
		URLs:       strings.Split(urls, ","),
		APIKeys:    strings.Split(apiKeys, ","),
		Timeout:    time.Duration(config.GetInt("places.timeout", 10)) * time.Second,
		MaxRetries: config.GetInt("places.max_retries", 3),
	})
}

// Nearby 查询附近商家，地图页数据源
// GET /v1/places/nearby?latitude=&longitude=&radius_km=&category=
func (pc *PlaceController) Nearby(c *gin.Context) {
	lat := cast.ToFloat64(c.Query("latitude"))
	lng := cast.ToFloat64(c.Query("longitude"))
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		response.Abort400(c, "Invalid coordinates")
		return
	}

	radius := cast.ToFloat64(c.DefaultQuery("radius_km", "3"))
	if radius < requests.MinRadiusKm || radius > requests.MaxRadiusKm {
		response.Abort400(c, "radius_km must be between 1 and 10")
		return
	}

	category := c.Query("category")
	if !placemodel.IsValidCategory(category) {
		response.Abort400(c, "Invalid category")
		return
	}

	result, err := pc.repo.FindNearby(c.Request.Context(), lat, lng, radius, category)
	if err != nil {
		response.Abort500(c, "Failed to load nearby places")
		return
	}

	response.Data(c, result)
}

// Sync 从外部地点服务导入附近商家
// POST /v1/places/sync
func (pc *PlaceController) Sync(c *gin.Context) {
	if pc.provider == nil {
		response.Abort500(c, "Place provider is not configured")
		return
	}

	request, err := requests.ValidateSyncPlaces(c)
	if err != nil {
		response.BadRequest(c, err, "Invalid sync request")
		return
	}

	fetched, err := pc.provider.FetchNearby(
		c.Request.Context(),
		request.Latitude, request.Longitude, request.RadiusKm, request.Category,
	)
	if err != nil {
		logger.ErrorString("Places", "Sync", err.Error())
		response.Abort500(c, "Place provider unavailable")
		return
	}

	imported := make([]placemodel.Place, 0, len(fetched))
	for _, p := range fetched {
		if p.ExternalID == "" || p.Name == "" {
			continue
		}
		imported = append(imported, placemodel.Place{
			GooglePlaceID: p.ExternalID,
			Name:          p.Name,
			Address:       p.Address,
			Latitude:      p.Latitude,
			Longitude:     p.Longitude,
			Category:      placemodel.Category(p.Category),
			Rating:        p.Rating,
			PriceLevel:    p.PriceLevel,
			PhotoURL:      p.PhotoURL,
			IsActive:      true,
		})
	}

	count, err := pc.repo.UpsertByExternalID(c.Request.Context(), imported)
	if err != nil {
		response.Abort500(c, "Failed to import places")
		return
	}

	response.Data(c, gin.H{
		"imported": count,
		"fetched":  len(fetched),
	})
}
