package places

import "time"

// Config 地点服务配置
// 支持配置多个实例做负载均衡与故障转移
type Config struct {
	URLs       []string      // 实例地址列表
	APIKeys    []string      // 与地址一一对应的 API Key
	Timeout    time.Duration // 单次请求超时
	MaxRetries int           // 跨实例的最大重试次数
}

// ProviderPlace 地点服务返回的原始记录
type ProviderPlace struct {
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Category   string  `json:"category"`
	Rating     float64 `json:"rating"`
	PriceLevel int     `json:"price_level"`
	PhotoURL   string  `json:"photo_url"`
}

// nearbyResponse 附近地点查询的响应体
type nearbyResponse struct {
	Places []ProviderPlace `json:"places"`
}

// nearbyRequest 附近地点查询的请求体
type nearbyRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	Category  string  `json:"category,omitempty"`
}
