package auth

import (
	"context"
	"log"
	"net/http"

	"job-board/internal/webserver/flash"
)

// Sessions 会话管理接口（session.Manager 的子集）
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

// Middleware 创建会话解析中间件
//
// 从会话 Cookie 解析登录身份并注入 context；解析同时完成滑动续期
// （服务端重置 TTL，客户端刷新 Cookie MaxAge）。令牌无效、已过期或
// 解析出错时一律按匿名继续，不中断请求。
func Middleware(cfg Config, sessions Sessions, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				log.Printf("[auth] session resolve error: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil || user == nil {
				next.ServeHTTP(w, r)
				return
			}

			// 客户端侧滑动续期
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.SessionCookie,
				Value:    cookie.Value,
				Path:     "/",
				MaxAge:   int(cfg.SessionTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithAuthUser(r.Context(), &AuthUser{
				ID:       user.ID.Hex(),
				Email:    user.Email,
				Username: user.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePage 页面路由登录守卫
// 匿名请求写入 return_to 闪存并重定向到登录页，登录成功后跳回原地址
func RequirePage(codec *flash.Codec, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if GetAuthUser(r.Context()) == nil {
			codec.Set(w, flash.Message{Type: flash.TypeReturnTo, Text: r.URL.Path})
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireJSON JSON 路由登录守卫
func RequireJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if GetAuthUser(r.Context()) == nil {
			http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// MethodOverride 方法重写中间件
//
// 浏览器表单只支持 GET/POST，带 _method=PUT|DELETE 的 POST 请求
// 在路由前被改写为对应方法（等价于 Express 的 method-override）。
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.PostFormValue("_method") {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}
