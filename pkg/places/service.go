// Package places 对接外部地点服务
// 支持多实例负载均衡、故障转移和自动恢复
package places

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"mabar/pkg/logger"
)

// 实例连续失败该次数后标记为不健康
const unhealthyThreshold = 3

// ErrNoHealthyInstance 所有实例都不可用
var ErrNoHealthyInstance = errors.New("no healthy place provider instance")

// Service 地点服务客户端
type Service struct {
	instances  []*Instance
	numRetries int
	mu         sync.RWMutex
}

// Instance 地点服务实例
type Instance struct {
	URL        string
	APIKey     string
	Health     bool
	Client     *resty.Client
	LastErr    error
	LastUsed   time.Time // 最后一次成功使用时间
	ErrorCount int       // 连续错误计数
}

// NewService 创建地点服务客户端
// 配置不完整时返回 nil，由调用方决定降级策略
func NewService(config *Config) *Service {
	if config == nil {
		return nil
	}
	if len(config.URLs) == 0 || len(config.APIKeys) == 0 || len(config.URLs) != len(config.APIKeys) {
		return nil
	}

	service := &Service{
		instances:  make([]*Instance, 0, len(config.URLs)),
		numRetries: config.MaxRetries,
	}
	if service.numRetries <= 0 {
		service.numRetries = 3
	}

	for i := range config.URLs {
		client := resty.New().
			SetBaseURL(config.URLs[i]).
			SetTimeout(config.Timeout).
			SetHeader("Authorization", "Bearer "+config.APIKeys[i]).
			SetHeader("Content-Type", "application/json")

		service.instances = append(service.instances, &Instance{
			URL:    config.URLs[i],
			APIKey: config.APIKeys[i],
			Health: true,
			Client: client,
		})
	}

	return service
}

// FetchNearby 从地点服务拉取附近的商家
// 在健康实例间故障转移，全部失败时返回最后一个错误
func (s *Service) FetchNearby(ctx context.Context, lat, lng, radiusKm float64, category string) ([]ProviderPlace, error) {
	payload := nearbyRequest{
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radiusKm,
		Category:  category,
	}

	var lastErr error
	for attempt := 0; attempt < s.numRetries; attempt++ {
		instance := s.pickInstance()
		if instance == nil {
			return nil, ErrNoHealthyInstance
		}

		var result nearbyResponse
		resp, err := instance.Client.R().
			SetContext(ctx).
			SetBody(payload).
			SetResult(&result).
			Post("/v1/places/nearby")

		if err != nil || resp.IsError() {
			if err == nil {
				err = fmt.Errorf("provider returned %s", resp.Status())
			}
			s.markFailure(instance, err)
			lastErr = err
			continue
		}

		s.markSuccess(instance)
		return result.Places, nil
	}

	return nil, fmt.Errorf("fetch nearby places: %w", lastErr)
}

// HealthCheck 探测任意一个实例是否可用
func (s *Service) HealthCheck(ctx context.Context) error {
	instance := s.pickInstance()
	if instance == nil {
		return ErrNoHealthyInstance
	}

	resp, err := instance.Client.R().SetContext(ctx).Get("/health")
	if err != nil {
		s.markFailure(instance, err)
		return err
	}
	if resp.IsError() {
		err = fmt.Errorf("provider health returned %s", resp.Status())
		s.markFailure(instance, err)
		return err
	}

	s.markSuccess(instance)
	return nil
}

// pickInstance 选择一个实例，优先健康实例里最久未使用的
// 全部不健康时选错误数最少的做探测式恢复
func (s *Service) pickInstance() *Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var picked *Instance
	for _, instance := range s.instances {
		if !instance.Health {
			continue
		}
		if picked == nil || instance.LastUsed.Before(picked.LastUsed) {
			picked = instance
		}
	}
	if picked != nil {
		return picked
	}

	for _, instance := range s.instances {
		if picked == nil || instance.ErrorCount < picked.ErrorCount {
			picked = instance
		}
	}
	return picked
}

// markSuccess 请求成功，恢复实例健康状态
func (s *Service) markSuccess(instance *Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance.Health = true
	instance.ErrorCount = 0
	instance.LastErr = nil
	instance.LastUsed = time.Now()
}

// markFailure 请求失败，连续失败过多时摘除实例
func (s *Service) markFailure(instance *Instance, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance.ErrorCount++
	instance.LastErr = err
	if instance.ErrorCount >= unhealthyThreshold {
		instance.Health = false
		logger.WarnString("Places", "Failover",
			fmt.Sprintf("instance %s marked unhealthy: %v", instance.URL, err))
	}
}
