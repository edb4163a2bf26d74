package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func validListing() *Listing {
	return &Listing{
		Title:       "Bumble",
		Type:        ListingTypeFullTime,
		Description: "new app",
		Lang:        "JAVA",
		DueDate:     time.Now().Add(24 * time.Hour),
		Status:      ListingStatusActive,
		OwnerID:     bson.NewObjectID(),
	}
}

// TestListing_NormalizeEnumCase 验证枚举输入大小写归一化
// 对应示例：type=full_time, lang=java 持久化为 FULL_TIME / JAVA
func TestListing_NormalizeEnumCase(t *testing.T) {
	l := &Listing{
		Title:       " Bumble ",
		Type:        "full_time",
		Description: "new app",
		Lang:        "java",
		DueDate:     time.Now().Add(24 * time.Hour),
		OwnerID:     bson.NewObjectID(),
	}
	l.Normalize()

	assert.Equal(t, "Bumble", l.Title)
	assert.Equal(t, ListingTypeFullTime, l.Type)
	assert.Equal(t, Language("JAVA"), l.Lang)
	assert.Equal(t, ListingStatusActive, l.Status)
	assert.False(t, l.IsOnline)
	require.NoError(t, l.Validate(true))
}

func TestListing_Validate(t *testing.T) {
	budget := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		mutate    func(*Listing)
		wantField string
	}{
		{"空标题", func(l *Listing) { l.Title = "" }, "title"},
		{"标题超长", func(l *Listing) { l.Title = strings.Repeat("x", TitleMaxLen+1) }, "title"},
		{"非法类型", func(l *Listing) { l.Type = "GIG" }, "type"},
		{"空描述", func(l *Listing) { l.Description = "" }, "description"},
		{"描述超长", func(l *Listing) { l.Description = strings.Repeat("x", DescriptionMaxLen+1) }, "description"},
		{"不支持的语言", func(l *Listing) { l.Lang = "KLINGON" }, "lang"},
		{"预算低于下限", func(l *Listing) { l.Budget = budget(0.5) }, "budget"},
		{"截止日期为零值", func(l *Listing) { l.DueDate = time.Time{} }, "due_date"},
		{"截止日期已过", func(l *Listing) { l.DueDate = time.Now().Add(-time.Hour) }, "due_date"},
		{"非法状态", func(l *Listing) { l.Status = "PAUSED" }, "status"},
		{"缺少 owner", func(l *Listing) { l.OwnerID = bson.ObjectID{} }, "owner_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validListing()
			tt.mutate(l)

			err := l.Validate(true)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.wantField)
		})
	}
}

// TestListing_LengthCountsRunes 标题/描述上限按字符数计，多字节字符不应虚增长度
func TestListing_LengthCountsRunes(t *testing.T) {
	l := validListing()
	l.Title = strings.Repeat("职", TitleMaxLen) // 每字符 3 字节
	l.Description = strings.Repeat("描", DescriptionMaxLen)
	assert.NoError(t, l.Validate(true))

	l.Title = strings.Repeat("职", TitleMaxLen+1)
	err := l.Validate(true)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
}

// TestListing_ValidatePastDueAllowedOnUpdate 更新未改动截止日期时不要求其在未来
func TestListing_ValidatePastDueAllowedOnUpdate(t *testing.T) {
	l := validListing()
	l.DueDate = time.Now().Add(-time.Hour)
	assert.NoError(t, l.Validate(false))
}

func TestListingPatch_ApplyTo(t *testing.T) {
	l := validListing()
	title := "New Title"
	lang := "go"
	online := true

	p := &ListingPatch{Title: &title, Lang: &lang, IsOnline: &online}
	assert.False(t, p.IsEmpty())

	p.ApplyTo(l)
	l.Normalize()

	assert.Equal(t, "New Title", l.Title)
	assert.Equal(t, Language("GO"), l.Lang)
	assert.True(t, l.IsOnline)
	assert.NoError(t, l.Validate(false))
}

func TestListingPatch_IsEmpty(t *testing.T) {
	assert.True(t, (&ListingPatch{}).IsEmpty())
}

func TestParseListingType(t *testing.T) {
	tests := []struct {
		in     string
		want   ListingType
		wantOK bool
	}{
		{"long_term", ListingTypeLongTerm, true},
		{"Short_Term", ListingTypeShortTerm, true},
		{"FULL_TIME", ListingTypeFullTime, true},
		{"part_time", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseListingType(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseLanguage(t *testing.T) {
	got, ok := ParseLanguage("python")
	require.True(t, ok)
	assert.Equal(t, Language("PYTHON"), got)

	_, ok = ParseLanguage("klingon")
	assert.False(t, ok)
}
