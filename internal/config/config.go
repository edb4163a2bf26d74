// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（FLASH_SECRET、MONGO_PASSWORD）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod（缺少必需配置时启动失败）
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	Session SessionConfig `yaml:"session"`
	Flash   FlashConfig   `yaml:"flash"`
	Auth    AuthConfig    `yaml:"auth"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type MongoConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Name string `yaml:"name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	DB   int    `yaml:"db"`
}

// SessionConfig 会话配置
// TTL 为 time.ParseDuration 接受的字符串（如 "15m"），加载时解析
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	TTL        string `yaml:"ttl"`
}

type FlashConfig struct {
	CookieName string `yaml:"cookie_name"`
}

type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env           Environment
	MongoURL      string
	MongoDBName   string
	RedisURL      string
	APIPort       string
	SessionCookie string
	SessionTTL    time.Duration
	FlashCookie   string
	FlashSecret   string
	BcryptCost    int
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
//  1. 加载 .env（敏感信息 + APP_ENV）
//  2. 根据 APP_ENV 加载 configs/{env}.yaml
//  3. 构建并校验最终配置
func Load() (*Config, error) {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	sessionTTL, err := time.ParseDuration(yamlCfg.Session.TTL)
	if err != nil {
		return nil, fmt.Errorf("config: invalid session.ttl %q: %w", yamlCfg.Session.TTL, err)
	}

	cfg := &Config{
		Env:           env,
		MongoURL:      getEnv("MONGO_URL", buildMongoURL(yamlCfg.Mongo, os.Getenv("MONGO_PASSWORD"))),
		MongoDBName:   yamlCfg.Mongo.Name,
		RedisURL:      getEnv("REDIS_URL", buildRedisURL(yamlCfg.Redis)),
		APIPort:       getEnv("PORT", yamlCfg.Server.Port),
		SessionCookie: yamlCfg.Session.CookieName,
		SessionTTL:    sessionTTL,
		FlashCookie:   yamlCfg.Flash.CookieName,
		FlashSecret:   os.Getenv("FLASH_SECRET"),
		BcryptCost:    yamlCfg.Auth.BcryptCost,
	}

	// 开发/测试环境允许使用弱默认密钥
	if cfg.FlashSecret == "" && env != EnvProduction {
		cfg.FlashSecret = "dev-flash-secret"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate 校验必需配置；生产环境缺失即启动失败
func (c *Config) validate() error {
	var missing []string
	if c.MongoURL == "" {
		missing = append(missing, "MONGO_URL")
	}
	if c.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if c.FlashSecret == "" {
		missing = append(missing, "FLASH_SECRET")
	}
	if c.SessionCookie == "" || c.FlashCookie == "" {
		missing = append(missing, "cookie names")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Server:  ServerConfig{Port: "8080"},
		Mongo:   MongoConfig{Host: "localhost", Port: 27017, Name: "job_board"},
		Redis:   RedisConfig{Host: "localhost", Port: 6379, DB: 0},
		Session: SessionConfig{CookieName: "sid", TTL: "15m"},
		Flash:   FlashConfig{CookieName: "flash"},
		Auth:    AuthConfig{BcryptCost: 12},
	}

	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				log.Printf("WARNING: config: parse %s failed: %v", path, err)
			}
			break
		}
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				log.Printf("WARNING: config: parse %s failed: %v", path, err)
			}
			break
		}
	}

	return cfg
}

// buildMongoURL 构建 MongoDB 连接字符串
func buildMongoURL(m MongoConfig, password string) string {
	if m.User != "" && password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", m.User, password, m.Host, m.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d", m.Host, m.Port)
}

// buildRedisURL 构建 Redis 连接字符串
func buildRedisURL(r RedisConfig) string {
	return fmt.Sprintf("redis://%s:%d/%d", r.Host, r.Port, r.DB)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Mongo: %s/%s, Redis: %s}",
		c.Env, maskPassword(c.MongoURL), c.MongoDBName, c.RedisURL)
}

// maskPassword 隐藏连接串中的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
