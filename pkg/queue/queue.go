// Package queue 抽取流水的 Redis 队列
// 抽取成功后流水先入队，由后台工作器批量落盘，写盘抖动不拖慢接口
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"mabar/app/models/spin"
	"mabar/pkg/config"
	"mabar/pkg/redis"
)

// QueueService Redis 队列服务
type QueueService struct {
	client      *redis.RedisClient
	prefix      string
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueueService 创建新的队列服务实例
func NewQueueService() *QueueService {
	rateLimit := config.GetInt("queue.rate_limit", 1000)
	burst := config.GetInt("queue.rate_burst", rateLimit)

	return &QueueService{
		client:      redis.GetRedis(redis.QueueDB),
		prefix:      config.GetString("redis.queue_prefix", "mabar:history"),
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		metrics:     NewQueueMetrics(),
	}
}

// queueKey 流水队列的键名
func (q *QueueService) queueKey() string {
	return q.prefix + ":pending"
}

// Enqueue 抽取流水入队，实现 services.HistoryRecorder
func (q *QueueService) Enqueue(ctx context.Context, history *spin.History) error {
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("queue rate limit: %w", err)
	}

	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := q.client.Client.LPush(ctx, q.queueKey(), payload).Err(); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("push history: %w", err)
	}

	q.metrics.RecordSuccess(OpPush)
	return nil
}

// Dequeue 阻塞式取出一条待落盘的流水
// 队列为空等待超时后返回 redis.Nil
func (q *QueueService) Dequeue(ctx context.Context, timeout time.Duration) (*spin.History, error) {
	result, err := q.client.Client.BRPop(ctx, timeout, q.queueKey()).Result()
	if err != nil {
		if err != goredis.Nil {
			q.metrics.RecordError(OpPop)
		}
		return nil, err
	}

	// BRPop 返回 [key, value]
	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected brpop result: %v", result)
	}

	var history spin.History
	if err := json.Unmarshal([]byte(result[1]), &history); err != nil {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}

	q.metrics.RecordSuccess(OpPop)
	return &history, nil
}

// PendingCount 队列积压长度
func (q *QueueService) PendingCount(ctx context.Context) (int64, error) {
	return q.client.Client.LLen(ctx, q.queueKey()).Result()
}

// Ping 队列健康检查
func (q *QueueService) Ping(ctx context.Context) error {
	return q.client.Client.Ping(ctx).Err()
}

// Metrics 返回队列指标
func (q *QueueService) Metrics() *QueueMetrics {
	return q.metrics
}
