// Package session Redis 会话管理
//
// 会话令牌是客户端持有的不透明 UUID，服务端以 "session:<token>" 为键
// 存储用户 ID。过期策略为 15 分钟不活动滑动过期：每次成功解析都会
// 重置 TTL。
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 会话键前缀
const keyPrefix = "session:"

// DefaultTTL 默认的不活动过期时间
const DefaultTTL = 15 * time.Minute

// Manager Redis 会话管理器
type Manager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewManager 创建会话管理器
// ttl <= 0 时使用 DefaultTTL
func NewManager(client *redis.Client, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{client: client, ttl: ttl}
}

// NewRedisClient 从 URL 创建 Redis 客户端并验证连接
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("session: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: connect to redis: %w", err)
	}

	log.Printf("[session] Connected to Redis")
	return client, nil
}

// Create 为用户建立新会话，返回不透明令牌
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := m.client.Set(ctx, keyPrefix+token, userID, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: create: %w", err)
	}
	return token, nil
}

// Resolve 解析令牌为用户 ID，并重置 TTL（滑动过期）
// 令牌无效或已过期时返回 ("", nil)
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	key := keyPrefix + token
	userID, err := m.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: resolve: %w", err)
	}

	// 滑动续期
	if err := m.client.Expire(ctx, key, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: renew: %w", err)
	}
	return userID, nil
}

// Destroy 销毁会话（幂等：令牌不存在也视为成功）
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session: destroy: %w", err)
	}
	return nil
}

// TTL 返回配置的不活动过期时间
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
