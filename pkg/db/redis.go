package db

import (
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisConfig 为空 Host 时表示不启用 redis
type RedisConfig struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	Password string `mapstructure:"password" json:"password"`
	DB       int    `mapstructure:"db" json:"db"`
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// NewRedis 创建 redis 客户端，未配置时返回 nil
func NewRedis(cfg RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}
	port := cfg.Port
	if port == 0 {
		port = 6379
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
