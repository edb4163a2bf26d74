package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"job-board/internal/model"
	"job-board/internal/webserver/flash"
	"job-board/internal/webserver/views"
)

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	FindUsersByEmailOrUsername(ctx context.Context, email, username string) ([]*model.User, error)
}

// Handler 认证 HTTP 处理器
type Handler struct {
	store    UserStore
	sessions Sessions
	flash    *flash.Codec
	cfg      Config
}

// NewHandler 创建认证处理器
func NewHandler(store UserStore, sessions Sessions, codec *flash.Codec, cfg Config) *Handler {
	return &Handler{store: store, sessions: sessions, flash: codec, cfg: cfg}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /signup", h.SignupPage)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
}

// ============================================================================
// 页面
// ============================================================================

// SignupPage 注册表单页；已登录用户直接去控制台，不触碰闪存
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	if GetAuthUser(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	views.Render(w, http.StatusOK, "signup", views.Data{
		Flash: h.flash.TakeMessage(w, r),
	})
}

// LoginPage 登录表单页；已登录用户直接去控制台，不触碰闪存
//
// 渲染表单只消费展示型闪存（注册成功 / 凭证错误 / 服务端错误）。
// 在途的 return_to 要留给随后的 POST /login 决定跳转目标，
// 读取后原样写回且不在页面上展示。
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if GetAuthUser(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	msg := h.flash.TakeMessage(w, r)
	if msg != nil && msg.Type == flash.TypeReturnTo {
		h.flash.Set(w, *msg)
		msg = nil
	}
	views.Render(w, http.StatusOK, "login", views.Data{Flash: msg})
}

// ============================================================================
// 注册流程
// ============================================================================

// Signup 用户注册
//
// 字段校验失败或邮箱/用户名已被占用时都静默重定向回注册页，
// 不写入闪存——避免给自动化客户端区分"校验失败"与"已注册"的信号。
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	fname := strings.TrimSpace(r.PostFormValue("fname"))
	username := model.NormalizeUsername(r.PostFormValue("username"))
	email := model.NormalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	confirmation := r.PostFormValue("passwordConfirmation")

	if fname == "" || username == "" || !model.IsValidEmail(email) ||
		!model.IsValidPlainPassword(password) || password != confirmation {
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	// 唯一性预检查（OR 查询）；最终一致性由存储层唯一索引保证
	existing, err := h.store.FindUsersByEmailOrUsername(r.Context(), email, username)
	if err != nil {
		log.Printf("[auth.signup] FindUsersByEmailOrUsername error: %v", err)
		h.serverError(w, r, "/signup", "")
		return
	}
	if len(existing) > 0 {
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	hash, err := HashPassword(password, h.cfg.BcryptCost)
	if err != nil {
		log.Printf("[auth.signup] HashPassword error: %v", err)
		h.serverError(w, r, "/signup", "")
		return
	}

	user := &model.User{
		FName:        fname,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		// 预检查后的竞态唯一键冲突也落到这里，与其它创建失败同样处理
		log.Printf("[auth.signup] CreateUser error: %v", err)
		h.serverError(w, r, "/signup", "")
		return
	}

	log.Printf("[auth] User signed up: %s (%s)", user.Email, user.ID.Hex())
	h.flash.Set(w, flash.Message{Type: flash.TypeSignupSuccess, Text: flash.TextSignupSuccess})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ============================================================================
// 登录流程
// ============================================================================

// Login 用户登录
//
// 未知邮箱与密码错误产生完全相同的响应（client_error + 回显邮箱），
// 不泄露哪个字段出错。
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := model.NormalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	// 读取并清除在途闪存；return_to 决定登录成功后的跳转目标
	target := "/dashboard"
	if pending := h.flash.TakeMessage(w, r); pending != nil &&
		pending.Type == flash.TypeReturnTo && strings.HasPrefix(pending.Text, "/") {
		target = pending.Text
	}

	if !model.IsValidEmail(email) || password == "" {
		h.clientError(w, r, email)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		log.Printf("[auth.login] GetUserByEmail error: %v", err)
		h.serverError(w, r, "/login", email)
		return
	}
	if user == nil {
		h.clientError(w, r, email)
		return
	}

	ok, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		log.Printf("[auth.login] CheckPassword error: %v", err)
		h.serverError(w, r, "/login", email)
		return
	}
	if !ok {
		h.clientError(w, r, email)
		return
	}

	token, err := h.sessions.Create(r.Context(), user.ID.Hex())
	if err != nil {
		log.Printf("[auth.login] session create error: %v", err)
		h.serverError(w, r, "/login", email)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Printf("[auth] User logged in: %s", user.Email)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Logout 注销（幂等：匿名调用也成功）
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cfg.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			log.Printf("[auth.logout] session destroy error: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ============================================================================
// 失败路径
// ============================================================================

func (h *Handler) clientError(w http.ResponseWriter, r *http.Request, email string) {
	h.flash.Set(w, flash.Message{Type: flash.TypeClientError, Text: flash.TextClientError, Email: email})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, location, email string) {
	h.flash.Set(w, flash.Message{Type: flash.TypeServerError, Text: flash.TextServerError, Email: email})
	http.Redirect(w, r, location, http.StatusSeeOther)
}
