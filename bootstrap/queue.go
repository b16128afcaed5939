package bootstrap

import (
	"time"

	"mabar/app/repositories"
	"mabar/pkg/config"
	"mabar/pkg/logger"
	"mabar/pkg/queue"
	"mabar/pkg/redis"
)

// SetupQueue 启动抽取流水落盘工作器
// 返回 Worker 以便主程序在退出时优雅停止
func SetupQueue() *queue.Worker {
	if redis.Manager == nil {
		logger.ErrorString("Queue", "Setup", "Redis manager not initialized")
		return nil
	}

	queueService := queue.NewQueueService()
	spinRepo := repositories.NewSpinRepository()

	worker := queue.NewWorker(queueService, spinRepo, queue.WorkerConfig{
		WorkerCount:     config.GetInt("queue.worker_count", 4),
		MaxRetries:      config.GetInt("queue.retry_times", 3),
		RetryInterval:   time.Duration(config.GetInt("queue.retry_delay", 1)) * time.Second,
		PopTimeout:      time.Duration(config.GetInt("queue.pop_timeout", 5)) * time.Second,
		ShutdownTimeout: 30 * time.Second,
	})

	go worker.Start()

	logger.InfoString("Queue", "Setup", "流水落盘工作器启动成功")
	return worker
}
