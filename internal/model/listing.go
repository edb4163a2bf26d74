package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// ListingType - 职位类型
// ============================================================================

// ListingType 职位类型
type ListingType string

const (
	ListingTypeLongTerm  ListingType = "LONG_TERM"
	ListingTypeShortTerm ListingType = "SHORT_TERM"
	ListingTypeFullTime  ListingType = "FULL_TIME"
)

// ParseListingType 大小写不敏感地解析职位类型
func ParseListingType(s string) (ListingType, bool) {
	switch ListingType(strings.ToUpper(strings.TrimSpace(s))) {
	case ListingTypeLongTerm:
		return ListingTypeLongTerm, true
	case ListingTypeShortTerm:
		return ListingTypeShortTerm, true
	case ListingTypeFullTime:
		return ListingTypeFullTime, true
	}
	return "", false
}

// ============================================================================
// ListingStatus - 职位状态
// ============================================================================

// ListingStatus 职位状态
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "ACTIVE"
	ListingStatusLocked    ListingStatus = "LOCKED"
	ListingStatusCompleted ListingStatus = "COMPLETED"
)

// ParseListingStatus 大小写不敏感地解析职位状态
func ParseListingStatus(s string) (ListingStatus, bool) {
	switch ListingStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case ListingStatusActive:
		return ListingStatusActive, true
	case ListingStatusLocked:
		return ListingStatusLocked, true
	case ListingStatusCompleted:
		return ListingStatusCompleted, true
	}
	return "", false
}

// ============================================================================
// Language - 支持的编程语言
// ============================================================================

// Language 职位要求的编程语言
type Language string

// 支持的语言集合
var supportedLanguages = map[Language]bool{
	"C": true, "CPP": true, "CSHARP": true, "GO": true, "JAVA": true,
	"JAVASCRIPT": true, "KOTLIN": true, "PHP": true, "PYTHON": true,
	"RUBY": true, "RUST": true, "SWIFT": true, "TYPESCRIPT": true,
}

// ParseLanguage 大小写不敏感地解析语言
func ParseLanguage(s string) (Language, bool) {
	lang := Language(strings.ToUpper(strings.TrimSpace(s)))
	if supportedLanguages[lang] {
		return lang, true
	}
	return "", false
}

// ============================================================================
// Listing - 职位信息
// ============================================================================

// 字段约束常量
const (
	TitleMaxLen       = 75
	DescriptionMaxLen = 1000
	BudgetMin         = 1

	// MaxActiveListingsPerOwner 每个用户的 ACTIVE 职位上限
	MaxActiveListingsPerOwner = 10
)

// Listing 职位信息
//
// OwnerID 创建后不可变；所有查询和变更都以 (_id, owner_id) 为条件，
// 这是职位数据唯一的访问控制机制。
type Listing struct {
	ID               bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	Title            string         `json:"title" bson:"title"`
	Type             ListingType    `json:"type" bson:"type"`
	Description      string         `json:"description" bson:"description"`
	Lang             Language       `json:"lang" bson:"lang"`
	Budget           *float64       `json:"budget,omitempty" bson:"budget,omitempty"`
	DueDate          time.Time      `json:"due_date" bson:"due_date"`
	IsOnline         bool           `json:"is_online" bson:"is_online"`
	AssignedWorkerID *bson.ObjectID `json:"assigned_worker_id,omitempty" bson:"assigned_worker_id,omitempty"`
	Status           ListingStatus  `json:"status" bson:"status"`
	OwnerID          bson.ObjectID  `json:"owner_id" bson:"owner_id"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at"`
}

// Normalize 归一化字段：去空白、枚举大写、status 空值取默认 ACTIVE
func (l *Listing) Normalize() {
	l.Title = strings.TrimSpace(l.Title)
	l.Description = strings.TrimSpace(l.Description)
	l.Type = ListingType(strings.ToUpper(strings.TrimSpace(string(l.Type))))
	l.Lang = Language(strings.ToUpper(strings.TrimSpace(string(l.Lang))))
	if l.Status == "" {
		l.Status = ListingStatusActive
		return
	}
	l.Status = ListingStatus(strings.ToUpper(strings.TrimSpace(string(l.Status))))
}

// Validate 校验字段约束，返回 *ValidationError 或 nil
// 调用前应先 Normalize
//
// requireFutureDue 为 true 时要求 DueDate 严格晚于当前时间（创建时，
// 以及更新时补丁显式修改了 DueDate 的场合）。
func (l *Listing) Validate(requireFutureDue bool) error {
	var fields []string
	// 长度按字符数而非字节数
	if l.Title == "" || utf8.RuneCountInString(l.Title) > TitleMaxLen {
		fields = append(fields, "title")
	}
	if _, ok := ParseListingType(string(l.Type)); !ok {
		fields = append(fields, "type")
	}
	if l.Description == "" || utf8.RuneCountInString(l.Description) > DescriptionMaxLen {
		fields = append(fields, "description")
	}
	if _, ok := ParseLanguage(string(l.Lang)); !ok {
		fields = append(fields, "lang")
	}
	if l.Budget != nil && *l.Budget < BudgetMin {
		fields = append(fields, "budget")
	}
	if l.DueDate.IsZero() || (requireFutureDue && !l.DueDate.After(time.Now())) {
		fields = append(fields, "due_date")
	}
	if _, ok := ParseListingStatus(string(l.Status)); !ok {
		fields = append(fields, "status")
	}
	if l.OwnerID.IsZero() {
		fields = append(fields, "owner_id")
	}
	return newValidationError(fields)
}

// ============================================================================
// ListingPatch - 职位更新补丁
// ============================================================================

// ListingPatch 职位更新补丁，nil 字段表示不修改
// OwnerID 不可通过补丁修改
type ListingPatch struct {
	Title       *string
	Type        *string
	Description *string
	Lang        *string
	Budget      *float64
	DueDate     *time.Time
	IsOnline    *bool
	Status      *string
}

// IsEmpty 补丁是否不包含任何字段
func (p *ListingPatch) IsEmpty() bool {
	return p.Title == nil && p.Type == nil && p.Description == nil &&
		p.Lang == nil && p.Budget == nil && p.DueDate == nil &&
		p.IsOnline == nil && p.Status == nil
}

// ApplyTo 将补丁套用到 listing 上（就地修改），不做校验
// 调用方应随后 Normalize + Validate 合并后的文档
func (p *ListingPatch) ApplyTo(l *Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Type != nil {
		l.Type = ListingType(*p.Type)
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Lang != nil {
		l.Lang = Language(*p.Lang)
	}
	if p.Budget != nil {
		l.Budget = p.Budget
	}
	if p.DueDate != nil {
		l.DueDate = *p.DueDate
	}
	if p.IsOnline != nil {
		l.IsOnline = *p.IsOnline
	}
	if p.Status != nil {
		l.Status = ListingStatus(*p.Status)
	}
}
