/*
	Package redis 提供 Redis 连接和操作的工具包

	1. 连接池管理
	2. 自动重连
	3. 并发安全
*/
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mabar/pkg/logger"

	redis "github.com/redis/go-redis/v9"
)

// 关键配置常量
const (
	// DefaultPoolSize Redis 连接池大小
	DefaultPoolSize = 100
	// DefaultTimeout 默认操作超时时间
	DefaultTimeout = 5 * time.Second
	// DefaultMinIdleConns 最小空闲连接数
	DefaultMinIdleConns = 10
	// DefaultMaxRetries 最大重试次数
	DefaultMaxRetries = 3
	// DefaultIdleTimeout 空闲超时
	DefaultIdleTimeout = 5 * time.Minute
)

// RedisInstance Redis 实例类型
type RedisInstance string

const (
	MainDB  RedisInstance = "main"  // 主数据库实例（限流等业务存储）
	QueueDB RedisInstance = "queue" // 抽取流水队列专用实例
)

// RedisClient Redis 客户端封装
type RedisClient struct {
	Client  *redis.Client
	Context context.Context
}

// RedisConfig Redis 配置结构
type RedisConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	Timeout      time.Duration
}

// RedisManager 管理多个 Redis 实例
type RedisManager struct {
	instances map[RedisInstance]*RedisClient
	mutex     sync.RWMutex
}

var (
	once    sync.Once
	Manager *RedisManager
	Redis   *RedisClient // 主实例的快捷引用
)

// InitRedis 初始化 Redis 管理器
func InitRedis(address, username, password string, mainDB, queueDB int) {
	once.Do(func() {
		Manager = &RedisManager{
			instances: make(map[RedisInstance]*RedisClient),
		}

		base := RedisConfig{
			Address:      address,
			Username:     username,
			Password:     password,
			PoolSize:     DefaultPoolSize,
			MinIdleConns: DefaultMinIdleConns,
			Timeout:      DefaultTimeout,
		}

		mainConfig := base
		mainConfig.DB = mainDB
		Manager.instances[MainDB] = NewClient(mainConfig)

		queueConfig := base
		queueConfig.DB = queueDB
		Manager.instances[QueueDB] = NewClient(queueConfig)

		Redis = Manager.instances[MainDB]
	})
}

// NewClient 创建新的 Redis 客户端
func NewClient(config RedisConfig) *RedisClient {
	rds := &RedisClient{
		Context: context.Background(),
	}

	rds.Client = redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Username:     config.Username,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,

		// 连接池配置
		PoolTimeout:     config.Timeout,
		ConnMaxIdleTime: DefaultIdleTimeout,
		ConnMaxLifetime: 24 * time.Hour,

		// 读写超时
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		// 重试策略
		MaxRetries:      DefaultMaxRetries,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	// 测试连接
	if err := rds.Ping(); err != nil {
		panic(fmt.Sprintf("Redis 连接失败: %v", err))
	}

	return rds
}

// GetRedis 获取指定的 Redis 实例
func GetRedis(instance RedisInstance) *RedisClient {
	Manager.mutex.RLock()
	defer Manager.mutex.RUnlock()

	if client, ok := Manager.instances[instance]; ok {
		return client
	}
	return Redis // 默认返回主实例
}

// Ping 测试 Redis 连接
func (rds *RedisClient) Ping() error {
	ctx, cancel := context.WithTimeout(rds.Context, DefaultTimeout)
	defer cancel()

	_, err := rds.Client.Ping(ctx).Result()
	return err
}

// Set 存储键值对
func (rds *RedisClient) Set(key string, value interface{}, expiration time.Duration) bool {
	ctx, cancel := context.WithTimeout(rds.Context, DefaultTimeout)
	defer cancel()

	if err := rds.Client.Set(ctx, key, value, expiration).Err(); err != nil {
		logger.ErrorString("Redis", "Set", err.Error())
		return false
	}
	return true
}

// Get 获取键值
func (rds *RedisClient) Get(key string) string {
	ctx, cancel := context.WithTimeout(rds.Context, DefaultTimeout)
	defer cancel()

	result, err := rds.Client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.ErrorString("Redis", "Get", err.Error())
		}
		return ""
	}
	return result
}

// Has 检查键是否存在
func (rds *RedisClient) Has(key string) bool {
	ctx, cancel := context.WithTimeout(rds.Context, DefaultTimeout)
	defer cancel()

	n, err := rds.Client.Exists(ctx, key).Result()
	if err != nil {
		logger.ErrorString("Redis", "Has", err.Error())
		return false
	}
	return n > 0
}

// Del 删除键
func (rds *RedisClient) Del(keys ...string) bool {
	ctx, cancel := context.WithTimeout(rds.Context, DefaultTimeout)
	defer cancel()

	if err := rds.Client.Del(ctx, keys...).Err(); err != nil {
		logger.ErrorString("Redis", "Del", err.Error())
		return false
	}
	return true
}
