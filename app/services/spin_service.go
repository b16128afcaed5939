// Package services 业务编排层，衔接仓库、抽取逻辑与流水队列
package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"mabar/app/models/place"
	"mabar/app/models/spin"
	"mabar/app/models/voucher"
	"mabar/app/repositories"
	"mabar/pkg/draw"
	"mabar/pkg/logger"
)

// HistoryRecorder 抽取流水的落盘入口
// 生产环境由 Redis 队列异步写入，测试里用同步实现
type HistoryRecorder interface {
	Enqueue(ctx context.Context, history *spin.History) error
}

// SearchArea 抽取的搜索范围
type SearchArea struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// SpinResult 一次成功抽取的结果
// 商家没有可用模板时 Voucher 为空，抽取本身仍然成立
type SpinResult struct {
	Place   place.Place      `json:"place"`
	Voucher *voucher.Voucher `json:"voucher,omitempty"`
	Status  spin.Status      `json:"spin_status"`
	History *spin.History    `json:"-"`
}

// SpinService 转盘业务编排
// 依赖全部显式注入，user 和时间都通过参数传递，不读全局状态
type SpinService struct {
	spins    *repositories.SpinRepository
	vouchers *repositories.VoucherRepository
	places   *repositories.PlaceRepository
	history  HistoryRecorder
	maxSpins int

	now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// SpinServiceConfig 编排层配置
type SpinServiceConfig struct {
	MaxSpins int
	// Now 时钟注入，缺省为 time.Now，测试可拨动逻辑时间
	Now func() time.Time
	// Seed 随机源种子，0 表示按当前时间初始化
	Seed int64
}

// NewSpinService 创建编排实例
func NewSpinService(
	spins *repositories.SpinRepository,
	vouchers *repositories.VoucherRepository,
	places *repositories.PlaceRepository,
	history HistoryRecorder,
	config SpinServiceConfig,
) *SpinService {
	if config.MaxSpins <= 0 {
		config.MaxSpins = spin.DefaultMaxSpins
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &SpinService{
		spins:    spins,
		vouchers: vouchers,
		places:   places,
		history:  history,
		maxSpins: config.MaxSpins,
		now:      config.Now,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// GetStatus 查询当天额度状态
// 存储不可用时降级为零用量默认视图，错误只记日志，页面保持可用
func (s *SpinService) GetStatus(ctx context.Context, userID string) spin.Status {
	date := spin.DateOf(s.now())
	status, err := s.spins.GetStatus(ctx, userID, date, s.maxSpins)
	if err != nil {
		logger.ErrorString("Spin", "GetStatus", err.Error())
		return spin.DefaultStatus(s.maxSpins)
	}
	return status
}

// PerformSpin 执行一次抽取
//
// 流程：取候选集 -> 消耗额度 -> 等概率抽取 -> 签发优惠券 -> 记录流水。
// 候选集在消耗额度之前获取，附近没有商家时不扣次数。
// 拒绝原因通过哨兵错误区分：
//   - draw.ErrEmptyCandidates 附近没有候选商家
//   - spin.ErrQuotaExhausted  当日额度用完
func (s *SpinService) PerformSpin(ctx context.Context, userID string, area SearchArea, category string) (*SpinResult, error) {
	now := s.now()
	date := spin.DateOf(now)

	// 1. 先取候选集，为空时不消耗额度
	candidates, err := s.places.FindNearby(ctx, area.Latitude, area.Longitude, area.RadiusKm, category)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, draw.ErrEmptyCandidates
	}

	// 2. 原子消耗一次额度
	granted, status, err := s.spins.TryConsume(ctx, userID, date, s.maxSpins)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, spin.ErrQuotaExhausted
	}

	// 3. 等概率抽取
	s.rngMu.Lock()
	picked, err := draw.Pick(candidates, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		return nil, err
	}

	// 4. 签发优惠券，商家没有可用模板时抽取结果照常返回
	var issued *voucher.Voucher
	issued, err = s.vouchers.Issue(ctx, userID, picked.ID, now)
	if err != nil {
		if !errors.Is(err, voucher.ErrTemplateUnavailable) {
			return nil, err
		}
		issued = nil
	}

	// 5. 记录抽取流水，入队失败时退化为同步写入
	history := &spin.History{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlaceID:   picked.ID,
		Latitude:  area.Latitude,
		Longitude: area.Longitude,
		RadiusKm:  area.RadiusKm,
		SpunAt:    now,
	}
	if issued != nil {
		history.VoucherID = issued.ID
	}
	if err := s.history.Enqueue(ctx, history); err != nil {
		logger.WarnString("Spin", "HistoryEnqueue", err.Error())
		if err := s.spins.CreateHistory(ctx, history); err != nil {
			logger.ErrorString("Spin", "HistoryFallback", err.Error())
		}
	}

	return &SpinResult{
		Place:   picked,
		Voucher: issued,
		Status:  status,
		History: history,
	}, nil
}

// RedeemVoucher 核销优惠券
func (s *SpinService) RedeemVoucher(ctx context.Context, voucherID, userID string) error {
	return s.vouchers.Redeem(ctx, voucherID, userID, s.now())
}
