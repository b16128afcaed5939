package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"mabar/app/repositories"
	"mabar/pkg/logger"
)

// Worker 流水落盘工作器组
// 从 Redis 队列取出抽取流水并写入 spin_history 表
type Worker struct {
	queueService *QueueService
	spinRepo     *repositories.SpinRepository
	stopChan     chan struct{}
	wg           sync.WaitGroup
	config       WorkerConfig
}

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount     int           // 并发工作器数量
	MaxRetries      int           // 单条流水落盘的最大重试次数
	RetryInterval   time.Duration // 重试间隔
	PopTimeout      time.Duration // 队列阻塞等待时长
	ShutdownTimeout time.Duration // 关闭超时时间
}

// NewWorker 创建新的工作器组
func NewWorker(qs *QueueService, spinRepo *repositories.SpinRepository, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = time.Second
	}
	if config.PopTimeout <= 0 {
		config.PopTimeout = 5 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		queueService: qs,
		spinRepo:     spinRepo,
		stopChan:     make(chan struct{}),
		config:       config,
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.run(i)
	}
}

// run 单个工作器循环
func (w *Worker) run(id int) {
	defer w.wg.Done()

	logger.InfoString("HistoryWorker", "Start", fmt.Sprintf("worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("HistoryWorker", "Stop", fmt.Sprintf("worker %d stopping", id))
			return
		default:
			if err := w.processNext(); err != nil {
				logger.ErrorString("HistoryWorker", "Process", fmt.Sprintf("worker %d: %v", id, err))
				time.Sleep(w.config.RetryInterval)
			}
		}
	}
}

// processNext 取出并落盘一条流水
func (w *Worker) processNext() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.PopTimeout+10*time.Second)
	defer cancel()

	history, err := w.queueService.Dequeue(ctx, w.config.PopTimeout)
	if err != nil {
		// 队列为空不是错误
		if err == goredis.Nil {
			return nil
		}
		return fmt.Errorf("dequeue history: %w", err)
	}

	start := time.Now()
	defer func() {
		w.queueService.Metrics().RecordPersistTime(time.Since(start))
	}()

	// 有界重试，流水是只追加数据，重复写入会撞主键，安全
	var lastErr error
	for attempt := 0; attempt < w.config.MaxRetries; attempt++ {
		if err := w.spinRepo.CreateHistory(ctx, history); err != nil {
			lastErr = err
			time.Sleep(w.config.RetryInterval)
			continue
		}
		w.queueService.Metrics().RecordSuccess(OpPersist)
		return nil
	}

	w.queueService.Metrics().RecordError(OpPersist)
	return fmt.Errorf("persist history %s: %w", history.ID, lastErr)
}

// Stop 优雅关闭工作器组
func (w *Worker) Stop() {
	close(w.stopChan)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("HistoryWorker", "Stop", "all workers stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("HistoryWorker", "Stop", "worker shutdown timed out")
	}
}
