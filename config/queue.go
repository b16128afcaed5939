package config

import "mabar/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			// 入队速率限制，防止抽取高峰打垮 Redis
			"rate_limit": config.Env("QUEUE_RATE_LIMIT", 200),
			"rate_burst": config.Env("QUEUE_RATE_BURST", 50),

			// 落盘工作器配置
			"worker_count":  config.Env("QUEUE_WORKER_COUNT", 4),
			"retry_times":   config.Env("QUEUE_RETRY_TIMES", 3),
			"retry_delay":   config.Env("QUEUE_RETRY_DELAY", 1),
			"pop_timeout":   config.Env("QUEUE_POP_TIMEOUT", 5),
		}
	})
}
