// Package server 提供 HTTP 服务的顶层组装
//
// 请求处理链（由外到内）：
//   - Prometheus 指标中间件
//   - 方法重写中间件（表单 _method=PUT|DELETE）
//   - 会话解析中间件（识别登录身份 + 滑动续期）
//   - 业务路由（auth 包、listing 包、控制台页面）
//
// 文件组织：
//   - common.go: Handler 定义、路由组装、控制台页面
//   - metrics.go: Prometheus 指标
package server

import (
	"log"
	"net/http"

	"job-board/internal/webserver/auth"
	"job-board/internal/webserver/flash"
	"job-board/internal/webserver/listing"
	"job-board/internal/webserver/views"
)

// Handler HTTP 服务顶层处理器
type Handler struct {
	users    auth.UserStore
	listings listing.ListingStore
	sessions auth.Sessions
	flash    *flash.Codec
	authCfg  auth.Config
	metrics  *Metrics
}

// NewHandler 创建 Handler 实例
// 所有依赖通过参数显式注入，进程启动后不再变更
func NewHandler(users auth.UserStore, listings listing.ListingStore, sessions auth.Sessions, codec *flash.Codec, authCfg auth.Config) *Handler {
	return &Handler{
		users:    users,
		listings: listings,
		sessions: sessions,
		flash:    codec,
		authCfg:  authCfg,
		metrics:  NewMetrics("job_board"),
	}
}

// Router 组装完整的请求处理链
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// 认证路由（注册/登录/注销）
	authHandler := auth.NewHandler(h.users, h.sessions, h.flash, h.authCfg)
	authHandler.RegisterRoutes(mux)

	// 职位路由（页面路由带 return_to 守卫，JSON 路由返回 401）
	page := func(next http.HandlerFunc) http.HandlerFunc {
		return auth.RequirePage(h.flash, next)
	}
	listingHandler := listing.NewHandler(h.listings, h.flash)
	listingHandler.RegisterRoutes(mux, page, auth.RequireJSON)

	// 控制台
	mux.HandleFunc("GET /dashboard", page(h.Dashboard))
	mux.HandleFunc("GET /{$}", h.Root)

	var handler http.Handler = mux
	handler = auth.Middleware(h.authCfg, h.sessions, h.users)(handler)
	handler = auth.MethodOverride(handler)
	handler = h.metrics.MetricsMiddleware(handler)
	return handler
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Root 首页：按登录状态跳转
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	if auth.GetAuthUser(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Dashboard 控制台：当前用户的职位列表 + 在途闪存
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	owner := auth.GetAuthUser(r.Context())
	data := views.Data{
		Flash:    h.flash.TakeMessage(w, r),
		Username: owner.Username,
	}

	listings, err := h.listings.ListListingsByOwner(r.Context(), owner.ID)
	if err != nil {
		log.Printf("[server] ListListingsByOwner error: %v", err)
		data.Flash = &flash.Message{Type: flash.TypeServerError, Text: flash.TextServerError}
	} else {
		data.Listings = listings
	}

	views.Render(w, http.StatusOK, "dashboard", data)
}
