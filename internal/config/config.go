// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（数据库 URI、JWT 密钥）
//  2. 环境变量覆盖 .env 中的同名配置
//
// DATABASE_URI 缺失或连接失败不会导致进程退出，
// 服务降级运行，所有存储路由返回错误（沿用原服务行为）。
package config

import (
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// .env 查找路径（支持从子目录运行测试）
var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Config 应用配置
type Config struct {
	DatabaseURI    string
	DatabaseName   string
	APIPort        string
	JWTSecret      string
	AccessTokenTTL time.Duration
	LogLevel       string
	LogFormat      string
}

// Load 加载配置
//
// 先尝试加载 .env 文件（不存在则忽略），再读取环境变量。
func Load() Config {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg := Config{
		DatabaseURI:    os.Getenv("DATABASE_URI"),
		DatabaseName:   getEnv("MONGO_DB", "notes_admin"),
		APIPort:        getEnv("API_PORT", "3500"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: 15 * time.Minute,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.AccessTokenTTL = d
		}
	}

	return cfg
}

// String 返回脱敏后的配置描述（URI 中的凭据被隐藏）
func (c Config) String() string {
	return "db=" + redactURI(c.DatabaseURI) + " dbname=" + c.DatabaseName + " port=" + c.APIPort
}

// getEnv 读取环境变量，为空时返回默认值
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// redactURI 隐藏连接 URI 中的用户名密码
func redactURI(uri string) string {
	if uri == "" {
		return "(not set)"
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "(invalid)"
	}
	if u.User != nil {
		u.User = url.UserPassword("***", "***")
	}
	return u.String()
}
