package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"

	"mabar/app/models/place"
)

// 搜索半径的边界，与客户端的半径选项 1/3/5/10 对应
const (
	MinRadiusKm     = 1.0
	MaxRadiusKm     = 10.0
	DefaultRadiusKm = 3.0
)

// PerformSpinRequest 抽取请求
type PerformSpinRequest struct {
	UserID    string  `json:"user_id" valid:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	Category  string  `json:"category"`
}

// ValidatePerformSpin 校验抽取请求
func ValidatePerformSpin(c *gin.Context) (*PerformSpinRequest, error) {
	var req PerformSpinRequest

	// 1. 首先绑定 JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("parse request body: %w", err)
	}

	// 2. 验证规则
	rules := govalidator.MapData{
		"user_id": []string{"required"},
	}

	messages := govalidator.MapData{
		"user_id": []string{
			"required:User ID is required",
		},
	}

	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	// 3. 坐标与半径的数值校验
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

	// 4. 分类校验，"all" 与空串视为不过滤
	if !place.IsValidCategory(req.Category) {
		return nil, fmt.Errorf("invalid category: %s", req.Category)
	}

	return &req, nil
}
