// Package listing 职位领域 - HTTP 处理
//
// 所有操作都以 (listing id, 当前登录用户 id) 为条件委托给存储层，
// 归属校验完全由过滤条件承担。
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"job-board/internal/model"
	"job-board/internal/storage"
	"job-board/internal/webserver/auth"
	"job-board/internal/webserver/flash"
	"job-board/internal/webserver/views"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ListingStore 职位存储接口
type ListingStore interface {
	CreateListing(ctx context.Context, listing *model.Listing) error
	CountActiveListingsByOwner(ctx context.Context, ownerID string) (int64, error)
	ListListingsByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error)
	GetListingByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Listing, error)
	DeleteListingByIDAndOwner(ctx context.Context, id, ownerID string) (int64, error)
	UpdateListingByIDAndOwner(ctx context.Context, id, ownerID string, patch *model.ListingPatch) (matched, modified int64, err error)
}

// Handler 职位领域 HTTP 处理器
type Handler struct {
	store ListingStore
	flash *flash.Codec
}

// NewHandler 创建职位处理器
func NewHandler(store ListingStore, codec *flash.Codec) *Handler {
	return &Handler{store: store, flash: codec}
}

// RegisterRoutes 注册职位相关路由
// page/api 分别是页面路由与 JSON 路由的登录守卫
func (h *Handler) RegisterRoutes(mux *http.ServeMux, page, api func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /listings/new", page(h.NewForm))
	mux.HandleFunc("POST /listings", page(h.Create))
	mux.HandleFunc("GET /listings/{id}", page(h.Get))
	mux.HandleFunc("GET /listings/{id}/edit", page(h.EditForm))
	mux.HandleFunc("PUT /listings/{id}", page(h.Update))
	mux.HandleFunc("DELETE /listings/{id}", api(h.Delete))
}

// ============================================================================
// 页面
// ============================================================================

// NewForm 创建表单页
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	views.Render(w, http.StatusOK, "listing_new", views.Data{
		Flash:    h.flash.TakeMessage(w, r),
		Username: auth.GetAuthUser(r.Context()).Username,
	})
}

// Get 职位详情页
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner := auth.GetAuthUser(r.Context())

	l, err := h.store.GetListingByIDAndOwner(r.Context(), r.PathValue("id"), owner.ID)
	if err != nil {
		log.Printf("[listing] GetListingByIDAndOwner error: %v", err)
		h.serverError(w, r)
		return
	}
	if l == nil {
		views.NotFound(w, views.Data{Username: owner.Username})
		return
	}

	views.Render(w, http.StatusOK, "listing_detail", views.Data{
		Flash:    h.flash.TakeMessage(w, r),
		Username: owner.Username,
		Listing:  l,
	})
}

// EditForm 编辑表单页
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	owner := auth.GetAuthUser(r.Context())

	l, err := h.store.GetListingByIDAndOwner(r.Context(), r.PathValue("id"), owner.ID)
	if err != nil {
		log.Printf("[listing] GetListingByIDAndOwner error: %v", err)
		h.serverError(w, r)
		return
	}
	if l == nil {
		views.NotFound(w, views.Data{Username: owner.Username})
		return
	}

	views.Render(w, http.StatusOK, "listing_edit", views.Data{
		Flash:    h.flash.TakeMessage(w, r),
		Username: owner.Username,
		Listing:  l,
	})
}

// ============================================================================
// 变更操作
// ============================================================================

// Create 创建职位
//
// 限额检查与创建之间没有事务：同一用户的两个并发请求可能都观察到
// count=9 并双双成功，短暂超过上限。这是沿用原设计的取舍，而非缺陷。
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner := auth.GetAuthUser(r.Context())

	n, err := h.store.CountActiveListingsByOwner(r.Context(), owner.ID)
	if err != nil {
		log.Printf("[listing] CountActiveListingsByOwner error: %v", err)
		h.serverError(w, r)
		return
	}
	if n >= model.MaxActiveListingsPerOwner {
		h.flash.Set(w, flash.Message{Type: flash.TypeOverLimit, Text: flash.TextOverLimit})
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	l, err := parseListingForm(r)
	if err != nil {
		log.Printf("[listing] parse form error: %v", err)
		h.serverError(w, r)
		return
	}
	ownerID, err := bson.ObjectIDFromHex(owner.ID)
	if err != nil {
		h.serverError(w, r)
		return
	}
	l.OwnerID = ownerID

	if err := h.store.CreateListing(r.Context(), l); err != nil {
		log.Printf("[listing] CreateListing error: %v", err)
		h.serverError(w, r)
		return
	}

	log.Printf("[listing] Listing created: %s by %s", l.ID.Hex(), owner.ID)
	h.flash.Set(w, flash.Message{Type: flash.TypePostSuccess, Text: flash.TextPostSuccess})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Update 更新职位
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	owner := auth.GetAuthUser(r.Context())

	patch, err := parseListingPatch(r)
	if err != nil {
		log.Printf("[listing] parse patch error: %v", err)
		h.serverError(w, r)
		return
	}

	matched, modified, err := h.store.UpdateListingByIDAndOwner(r.Context(), r.PathValue("id"), owner.ID, patch)
	if err != nil {
		// 校验失败、非法 ID、基础设施错误：页面端一律泛化为 server_error
		log.Printf("[listing] UpdateListingByIDAndOwner error: %v", err)
		h.serverError(w, r)
		return
	}
	if matched == 0 {
		views.NotFound(w, views.Data{Username: owner.Username})
		return
	}
	if modified == 0 {
		h.flash.Set(w, flash.Message{Type: flash.TypeNoUpdate, Text: flash.TextNoUpdate})
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.flash.Set(w, flash.Message{Type: flash.TypeUpdateSuccess, Text: flash.TextUpdateSuccess})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Delete 删除职位（JSON 响应，状态码 200/400/404/500）
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := auth.GetAuthUser(r.Context())

	n, err := h.store.DeleteListingByIDAndOwner(r.Context(), r.PathValue("id"), owner.ID)
	if errors.Is(err, storage.ErrInvalidID) {
		writeJSONError(w, http.StatusBadRequest, "invalid listing id")
		return
	}
	if err != nil {
		log.Printf("[listing] DeleteListingByIDAndOwner error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}
	if n == 0 {
		writeJSONError(w, http.StatusNotFound, "listing not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int64{"deleted": n})
}

// ============================================================================
// 表单解析
// ============================================================================

// parseListingForm 从表单解析新职位字段
// 枚举归一化与字段校验在存储层统一执行，这里只做类型转换
func parseListingForm(r *http.Request) (*model.Listing, error) {
	l := &model.Listing{
		Title:       r.PostFormValue("title"),
		Type:        model.ListingType(r.PostFormValue("type")),
		Description: r.PostFormValue("description"),
		Lang:        model.Language(r.PostFormValue("lang")),
		IsOnline:    parseCheckbox(r.PostFormValue("isOnline")),
	}

	if raw := strings.TrimSpace(r.PostFormValue("budget")); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		l.Budget = &budget
	}

	if raw := strings.TrimSpace(r.PostFormValue("dueDate")); raw != "" {
		due, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
		l.DueDate = due.Add(24*time.Hour - time.Second) // 当日结束前有效
	}

	return l, nil
}

// parseListingPatch 从表单解析更新补丁，缺省字段不参与更新
func parseListingPatch(r *http.Request) (*model.ListingPatch, error) {
	patch := &model.ListingPatch{}

	if v, ok := formValue(r, "title"); ok {
		patch.Title = &v
	}
	if v, ok := formValue(r, "type"); ok {
		patch.Type = &v
	}
	if v, ok := formValue(r, "description"); ok {
		patch.Description = &v
	}
	if v, ok := formValue(r, "lang"); ok {
		patch.Lang = &v
	}
	if v, ok := formValue(r, "status"); ok {
		patch.Status = &v
	}
	if v, ok := formValue(r, "budget"); ok {
		budget, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		patch.Budget = &budget
	}
	if v, ok := formValue(r, "dueDate"); ok {
		due, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, err
		}
		due = due.Add(24*time.Hour - time.Second)
		patch.DueDate = &due
	}
	if r.PostForm.Has("isOnline") || r.PostForm.Has("_method") {
		online := parseCheckbox(r.PostFormValue("isOnline"))
		patch.IsOnline = &online
	}

	return patch, nil
}

// formValue 返回非空表单值
func formValue(r *http.Request, key string) (string, bool) {
	v := strings.TrimSpace(r.PostFormValue(key))
	return v, v != ""
}

func parseCheckbox(v string) bool {
	return v == "on" || v == "true" || v == "1"
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request) {
	h.flash.Set(w, flash.Message{Type: flash.TypeServerError, Text: flash.TextServerError})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
