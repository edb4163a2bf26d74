package model

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// NinjaStatus - 接单资格状态
// ============================================================================

// NinjaStatus 用户的接单资格（是否为 ninja）
type NinjaStatus string

const (
	NinjaStatusNo       NinjaStatus = "NO"
	NinjaStatusYes      NinjaStatus = "YES"
	NinjaStatusPending  NinjaStatus = "PENDING"
	NinjaStatusRejected NinjaStatus = "REJECTED"
)

// ParseNinjaStatus 大小写不敏感地解析接单资格状态
func ParseNinjaStatus(s string) (NinjaStatus, bool) {
	switch NinjaStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case NinjaStatusNo:
		return NinjaStatusNo, true
	case NinjaStatusYes:
		return NinjaStatusYes, true
	case NinjaStatusPending:
		return NinjaStatusPending, true
	case NinjaStatusRejected:
		return NinjaStatusRejected, true
	}
	return "", false
}

// ============================================================================
// User - 用户
// ============================================================================

// 字段约束常量
const (
	FNameMaxLen       = 50
	UsernameMinLen    = 7
	UsernameMaxLen    = 15
	PasswordPlainMin  = 10
	PasswordPlainMax  = 20
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	fnameRegex = regexp.MustCompile(`^[\p{L} .'-]+$`)
)

// User 用户
//
// PasswordHash 存储 bcrypt 哈希，永不序列化回调用方；
// 明文口令的长度约束（10–20）在哈希前由注册流程校验。
type User struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	FName        string        `json:"fname" bson:"fname"`
	Username     string        `json:"username" bson:"username"`
	Email        string        `json:"email" bson:"email"`
	PasswordHash string        `json:"-" bson:"password_hash"`
	IsNinja      NinjaStatus   `json:"is_ninja" bson:"is_ninja"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// Normalize 归一化字段：去空白、username/email 小写、isNinja 大写（空值取默认 NO）
func (u *User) Normalize() {
	u.FName = strings.TrimSpace(u.FName)
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = NormalizeEmail(u.Email)
	if u.IsNinja == "" {
		u.IsNinja = NinjaStatusNo
		return
	}
	u.IsNinja = NinjaStatus(strings.ToUpper(string(u.IsNinja)))
}

// Validate 校验字段约束，返回 *ValidationError 或 nil
// 调用前应先 Normalize
func (u *User) Validate() error {
	var fields []string
	// 长度按字符数而非字节数：fname 允许非拉丁字母
	if u.FName == "" || utf8.RuneCountInString(u.FName) > FNameMaxLen || !fnameRegex.MatchString(u.FName) {
		fields = append(fields, "fname")
	}
	if len(u.Username) < UsernameMinLen || len(u.Username) > UsernameMaxLen {
		fields = append(fields, "username")
	}
	if !IsValidEmail(u.Email) {
		fields = append(fields, "email")
	}
	if u.PasswordHash == "" {
		fields = append(fields, "password")
	}
	if _, ok := ParseNinjaStatus(string(u.IsNinja)); !ok {
		fields = append(fields, "is_ninja")
	}
	return newValidationError(fields)
}

// NormalizeEmail 去空白并小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername 去空白并小写
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// IsValidEmail 校验邮箱格式
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPlainPassword 校验明文口令长度（哈希前）
func IsValidPlainPassword(plain string) bool {
	return len(plain) >= PasswordPlainMin && len(plain) <= PasswordPlainMax
}
