package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"mabar/app/models/place"
)

// SyncPlacesRequest 商家导入请求
type SyncPlacesRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	Category  string  `json:"category"`
}

// ValidateSyncPlaces 校验商家导入请求
func ValidateSyncPlaces(c *gin.Context) (*SyncPlacesRequest, error) {
	var req SyncPlacesRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("parse request body: %w", err)
	}

	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, fmt.Errorf("longitude must be between -180 and 180")
	}

	if req.RadiusKm == 0 {
		req.RadiusKm = DefaultRadiusKm
	}
	if req.RadiusKm < MinRadiusKm || req.RadiusKm > MaxRadiusKm {
		return nil, fmt.Errorf("radius_km must be between %v and %v", MinRadiusKm, MaxRadiusKm)
	}

	if !place.IsValidCategory(req.Category) {
		return nil, fmt.Errorf("invalid category: %s", req.Category)
	}

	return &req, nil
}
