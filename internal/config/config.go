package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host" env:"SERVER_HOST"`
	Port           int      `yaml:"port" env:"SERVER_PORT"`
	MaxConnections int      `yaml:"max_connections" env:"SERVER_MAX_CONNECTIONS"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" envSeparator:","`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// GameConfig 对局配置
type GameConfig struct {
	RoomExpiration int `yaml:"room_expiration"`  // 房间数据过期时间（小时）
	ActionLogLimit int `yaml:"action_log_limit"` // 操作日志条数上限
	WriteQueueSize int `yaml:"write_queue_size"` // 每房间持久化队列长度
}

// RoomExpirationDuration 返回房间数据过期时长
func (c *GameConfig) RoomExpirationDuration() time.Duration {
	return time.Duration(c.RoomExpiration) * time.Hour
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"SECURITY_RATE_MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"SECURITY_RATE_MAX_PER_MINUTE"`
	BanDuration  int `yaml:"ban_duration" env:"SECURITY_RATE_BAN_DURATION"` // 封禁时长（秒）
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 单连接消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"SECURITY_MSG_MAX_PER_SECOND"`
}

// Load 加载配置文件，环境变量优先于文件
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 环境变量覆盖，部署时无需改动配置文件
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults 填充零值字段
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 1780
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 1024
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Game.RoomExpiration == 0 {
		cfg.Game.RoomExpiration = 48
	}
	if cfg.Game.ActionLogLimit == 0 {
		cfg.Game.ActionLogLimit = 100
	}
	if cfg.Game.WriteQueueSize == 0 {
		cfg.Game.WriteQueueSize = 64
	}
	if cfg.Security.RateLimit.MaxPerSecond == 0 {
		cfg.Security.RateLimit.MaxPerSecond = 10
	}
	if cfg.Security.RateLimit.MaxPerMinute == 0 {
		cfg.Security.RateLimit.MaxPerMinute = 120
	}
	if cfg.Security.RateLimit.BanDuration == 0 {
		cfg.Security.RateLimit.BanDuration = 60
	}
	if cfg.Security.MessageLimit.MaxPerSecond == 0 {
		cfg.Security.MessageLimit.MaxPerSecond = 20
	}
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
