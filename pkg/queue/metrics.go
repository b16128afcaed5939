package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricOperation 指标操作类型
type MetricOperation string

const (
	OpPush    MetricOperation = "push"
	OpPop     MetricOperation = "pop"
	OpPersist MetricOperation = "persist"
)

// QueueMetrics 队列性能指标
type QueueMetrics struct {
	successCounts sync.Map // map[MetricOperation]*int64
	errorCounts   sync.Map // map[MetricOperation]*int64

	mu             sync.Mutex
	totalPersisted int64
	totalElapsed   time.Duration
}

// NewQueueMetrics 创建指标收集器
func NewQueueMetrics() *QueueMetrics {
	return &QueueMetrics{}
}

func (m *QueueMetrics) counter(store *sync.Map, op MetricOperation) *int64 {
	if v, ok := store.Load(op); ok {
		return v.(*int64)
	}
	v, _ := store.LoadOrStore(op, new(int64))
	return v.(*int64)
}

// RecordSuccess 记录一次成功操作
func (m *QueueMetrics) RecordSuccess(op MetricOperation) {
	atomic.AddInt64(m.counter(&m.successCounts, op), 1)
}

// RecordError 记录一次失败操作
func (m *QueueMetrics) RecordError(op MetricOperation) {
	atomic.AddInt64(m.counter(&m.errorCounts, op), 1)
}

// SuccessCount 查询成功次数
func (m *QueueMetrics) SuccessCount(op MetricOperation) int64 {
	return atomic.LoadInt64(m.counter(&m.successCounts, op))
}

// ErrorCount 查询失败次数
func (m *QueueMetrics) ErrorCount(op MetricOperation) int64 {
	return atomic.LoadInt64(m.counter(&m.errorCounts, op))
}

// RecordPersistTime 记录一次落盘耗时
func (m *QueueMetrics) RecordPersistTime(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPersisted++
	m.totalElapsed += elapsed
}

// AvgPersistTime 平均落盘耗时
func (m *QueueMetrics) AvgPersistTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalPersisted == 0 {
		return 0
	}
	return m.totalElapsed / time.Duration(m.totalPersisted)
}
