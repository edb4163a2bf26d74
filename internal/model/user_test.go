package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUser() *User {
	return &User{
		FName:        "Taro Yamada",
		Username:     "taroyamada",
		Email:        "taro@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		IsNinja:      NinjaStatusNo,
	}
}

func TestUser_NormalizeLowercasesAndTrims(t *testing.T) {
	u := &User{
		FName:    "  Taro Yamada ",
		Username: " TaroYamada ",
		Email:    "  Taro@Example.COM ",
		IsNinja:  "pending",
	}
	u.Normalize()

	assert.Equal(t, "Taro Yamada", u.FName)
	assert.Equal(t, "taroyamada", u.Username)
	assert.Equal(t, "taro@example.com", u.Email)
	assert.Equal(t, NinjaStatusPending, u.IsNinja)
}

func TestUser_NormalizeDefaultsNinjaStatus(t *testing.T) {
	u := validUser()
	u.IsNinja = ""
	u.Normalize()
	assert.Equal(t, NinjaStatusNo, u.IsNinja)
}

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*User)
		wantField string
	}{
		{"空 fname", func(u *User) { u.FName = "" }, "fname"},
		{"fname 超长", func(u *User) { u.FName = strings.Repeat("a", FNameMaxLen+1) }, "fname"},
		{"fname 含非法字符", func(u *User) { u.FName = "Taro<script>" }, "fname"},
		{"username 过短", func(u *User) { u.Username = "short" }, "username"},
		{"username 过长", func(u *User) { u.Username = strings.Repeat("a", UsernameMaxLen+1) }, "username"},
		{"email 格式非法", func(u *User) { u.Email = "not-an-email" }, "email"},
		{"password 哈希为空", func(u *User) { u.PasswordHash = "" }, "password"},
		{"is_ninja 非法", func(u *User) { u.IsNinja = "MAYBE" }, "is_ninja"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)

			err := u.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.wantField)
		})
	}
}

func TestUser_ValidateOK(t *testing.T) {
	u := validUser()
	u.Normalize()
	assert.NoError(t, u.Validate())
}

// TestUser_FNameLengthCountsRunes fname 上限按字符数计，非拉丁姓名
// 每个字符占多个字节也不应被误判超长
func TestUser_FNameLengthCountsRunes(t *testing.T) {
	u := validUser()
	u.FName = strings.Repeat("山", FNameMaxLen) // 每字符 3 字节
	assert.NoError(t, u.Validate())

	u.FName = strings.Repeat("山", FNameMaxLen+1)
	err := u.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "fname")
}

// TestUser_PasswordHashNeverMarshaled 验证密码哈希不会被序列化回调用方
func TestUser_PasswordHashNeverMarshaled(t *testing.T) {
	u := validUser()
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), u.PasswordHash)
}

func TestParseNinjaStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   NinjaStatus
		wantOK bool
	}{
		{"no", NinjaStatusNo, true},
		{"Yes", NinjaStatusYes, true},
		{"PENDING", NinjaStatusPending, true},
		{"rejected", NinjaStatusRejected, true},
		{" yes ", NinjaStatusYes, true},
		{"maybe", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseNinjaStatus(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestIsValidPlainPassword(t *testing.T) {
	assert.False(t, IsValidPlainPassword("short"))
	assert.False(t, IsValidPlainPassword(strings.Repeat("a", PasswordPlainMin-1)))
	assert.True(t, IsValidPlainPassword(strings.Repeat("a", PasswordPlainMin)))
	assert.True(t, IsValidPlainPassword(strings.Repeat("a", PasswordPlainMax)))
	assert.False(t, IsValidPlainPassword(strings.Repeat("a", PasswordPlainMax+1)))
}
