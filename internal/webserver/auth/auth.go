// Package auth 会话认证：密码哈希、会话中间件、注册/登录/注销流程
package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// contextKey context 键类型
type contextKey string

const ctxKeyAuthUser contextKey = "auth_user"

// AuthUser 当前请求解析出的登录用户
type AuthUser struct {
	ID       string
	Email    string
	Username string
}

// Config 认证配置
type Config struct {
	SessionCookie string        `yaml:"session_cookie"` // 会话 Cookie 名称，如 "sid"
	SessionTTL    time.Duration `yaml:"session_ttl"`    // 不活动过期时间
	BcryptCost    int           `yaml:"bcrypt_cost"`    // 进程级共享的哈希代价因子
}

// DefaultConfig 返回默认认证配置
func DefaultConfig() Config {
	return Config{
		SessionCookie: "sid",
		SessionTTL:    15 * time.Minute,
		BcryptCost:    12,
	}
}

// ============================================================================
// 密码哈希
// ============================================================================

// HashPassword 使用 bcrypt 哈希密码
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword 验证密码
//
// 不匹配返回 (false, nil)；哈希本身损坏等基础设施错误返回 (false, err)，
// 调用方据此区分"凭证错误"与"服务端错误"。
func CheckPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	return false, fmt.Errorf("auth: compare password: %w", err)
}

// ============================================================================
// Context 辅助函数
// ============================================================================

// WithAuthUser 将登录用户注入 context
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, ctxKeyAuthUser, user)
}

// GetAuthUser 从 context 获取登录用户，匿名请求返回 nil
func GetAuthUser(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(ctxKeyAuthUser).(*AuthUser)
	return user
}
