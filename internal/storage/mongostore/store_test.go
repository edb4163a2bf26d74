package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"job-board/internal/model"
	"job-board/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// testStore 创建测试用 Store，使用独立数据库避免污染
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	s, err := NewStore(uri, "job_board_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	ctx := context.Background()
	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		s.db.Drop(context.Background())
		s.Close()
	})

	return s
}

func testUser(email, username string) *model.User {
	return &model.User{
		FName:        "Taro Yamada",
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
	}
}

func testListing(owner bson.ObjectID) *model.Listing {
	return &model.Listing{
		Title:       "Bumble",
		Type:        "full_time",
		Description: "new app",
		Lang:        "java",
		DueDate:     time.Now().Add(24 * time.Hour),
		OwnerID:     owner,
	}
}

func TestUserCreateAndLookup(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u := testUser("Taro@Example.com", "TaroYamada")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID.IsZero() {
		t.Fatal("Expected assigned ID")
	}

	// 归一化：email/username 小写
	got, err := s.GetUserByEmail(ctx, "taro@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil {
		t.Fatal("Expected user, got nil")
	}
	if got.Username != "taroyamada" {
		t.Errorf("Username = %q, want %q", got.Username, "taroyamada")
	}
	if got.IsNinja != model.NinjaStatusNo {
		t.Errorf("IsNinja = %q, want %q", got.IsNinja, model.NinjaStatusNo)
	}

	// 不存在 → (nil, nil)
	got, err = s.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || got != nil {
		t.Errorf("GetUserByEmail(miss) = (%v, %v), want (nil, nil)", got, err)
	}

	// 非法 ID → ErrInvalidID
	if _, err := s.GetUserByID(ctx, "not-an-oid"); !errors.Is(err, storage.ErrInvalidID) {
		t.Errorf("GetUserByID(bad) err = %v, want ErrInvalidID", err)
	}
}

func TestUserUniqueIndex(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("dup@example.com", "username1")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// 同邮箱
	err := s.CreateUser(ctx, testUser("dup@example.com", "username2"))
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate email err = %v, want ErrDuplicate", err)
	}

	// 同用户名
	err = s.CreateUser(ctx, testUser("other@example.com", "username1"))
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate username err = %v, want ErrDuplicate", err)
	}
}

func TestFindUsersByEmailOrUsername(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("a@example.com", "usernamea")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, testUser("b@example.com", "usernameb")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// OR 查询命中两条
	users, err := s.FindUsersByEmailOrUsername(ctx, "a@example.com", "usernameb")
	if err != nil {
		t.Fatalf("FindUsersByEmailOrUsername: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len = %d, want 2", len(users))
	}

	// 无匹配返回空切片而非 nil
	users, err = s.FindUsersByEmailOrUsername(ctx, "x@example.com", "usernamex")
	if err != nil {
		t.Fatalf("FindUsersByEmailOrUsername: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("miss = %v, want empty slice", users)
	}
}

func TestListingCreateNormalizes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	owner := bson.NewObjectID()
	l := testListing(owner)
	if err := s.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	got, err := s.GetListingByIDAndOwner(ctx, l.ID.Hex(), owner.Hex())
	if err != nil {
		t.Fatalf("GetListingByIDAndOwner: %v", err)
	}
	if got == nil {
		t.Fatal("Expected listing, got nil")
	}
	if got.Type != model.ListingTypeFullTime {
		t.Errorf("Type = %q, want FULL_TIME", got.Type)
	}
	if got.Lang != "JAVA" {
		t.Errorf("Lang = %q, want JAVA", got.Lang)
	}
	if got.Status != model.ListingStatusActive {
		t.Errorf("Status = %q, want ACTIVE", got.Status)
	}
	if got.IsOnline {
		t.Error("IsOnline = true, want false")
	}
}

func TestListingValidation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	l := testListing(bson.NewObjectID())
	l.Lang = "KLINGON"
	err := s.CreateListing(ctx, l)

	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestListingOwnerScoping(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ownerA := bson.NewObjectID()
	ownerB := bson.NewObjectID()
	l := testListing(ownerA)
	if err := s.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	// 他人无法读取
	got, err := s.GetListingByIDAndOwner(ctx, l.ID.Hex(), ownerB.Hex())
	if err != nil || got != nil {
		t.Errorf("cross-owner get = (%v, %v), want (nil, nil)", got, err)
	}

	// 他人无法删除
	n, err := s.DeleteListingByIDAndOwner(ctx, l.ID.Hex(), ownerB.Hex())
	if err != nil || n != 0 {
		t.Errorf("cross-owner delete = (%d, %v), want (0, nil)", n, err)
	}

	// owner 删除成功
	n, err = s.DeleteListingByIDAndOwner(ctx, l.ID.Hex(), ownerA.Hex())
	if err != nil || n != 1 {
		t.Errorf("owner delete = (%d, %v), want (1, nil)", n, err)
	}
}

func TestListingDeleteInvalidIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	l := testListing(bson.NewObjectID())
	if err := s.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	// id 非法 → ErrInvalidID
	if _, err := s.DeleteListingByIDAndOwner(ctx, "garbage", l.OwnerID.Hex()); !errors.Is(err, storage.ErrInvalidID) {
		t.Errorf("bad id err = %v, want ErrInvalidID", err)
	}

	// owner 为空 → 无匹配而非报错
	n, err := s.DeleteListingByIDAndOwner(ctx, l.ID.Hex(), "")
	if err != nil || n != 0 {
		t.Errorf("empty owner = (%d, %v), want (0, nil)", n, err)
	}

	// owner 非空但格式非法 → ErrInvalidID
	if _, err := s.DeleteListingByIDAndOwner(ctx, l.ID.Hex(), "garbage"); !errors.Is(err, storage.ErrInvalidID) {
		t.Errorf("bad owner err = %v, want ErrInvalidID", err)
	}
}

func TestCountActiveListingsByOwner(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	owner := bson.NewObjectID()
	for i := 0; i < 3; i++ {
		if err := s.CreateListing(ctx, testListing(owner)); err != nil {
			t.Fatalf("CreateListing: %v", err)
		}
	}

	// COMPLETED 不计入
	done := testListing(owner)
	if err := s.CreateListing(ctx, done); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	status := "completed"
	if _, _, err := s.UpdateListingByIDAndOwner(ctx, done.ID.Hex(), owner.Hex(), &model.ListingPatch{Status: &status}); err != nil {
		t.Fatalf("UpdateListingByIDAndOwner: %v", err)
	}

	n, err := s.CountActiveListingsByOwner(ctx, owner.Hex())
	if err != nil {
		t.Fatalf("CountActiveListingsByOwner: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	if _, err := s.CountActiveListingsByOwner(ctx, "garbage"); !errors.Is(err, storage.ErrInvalidID) {
		t.Errorf("bad owner err = %v, want ErrInvalidID", err)
	}
}

func TestUpdateListingByIDAndOwner(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	owner := bson.NewObjectID()
	l := testListing(owner)
	if err := s.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	// 正常更新：枚举归一化后生效
	lang := "go"
	matched, modified, err := s.UpdateListingByIDAndOwner(ctx, l.ID.Hex(), owner.Hex(), &model.ListingPatch{Lang: &lang})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if matched != 1 || modified != 1 {
		t.Errorf("(matched, modified) = (%d, %d), want (1, 1)", matched, modified)
	}

	got, _ := s.GetListingByIDAndOwner(ctx, l.ID.Hex(), owner.Hex())
	if got.Lang != "GO" {
		t.Errorf("Lang = %q, want GO", got.Lang)
	}

	// 无实际变化 → (1, 0)
	matched, modified, err = s.UpdateListingByIDAndOwner(ctx, l.ID.Hex(), owner.Hex(), &model.ListingPatch{Lang: &lang})
	if err != nil {
		t.Fatalf("Update(noop): %v", err)
	}
	if matched != 1 || modified != 0 {
		t.Errorf("noop (matched, modified) = (%d, %d), want (1, 0)", matched, modified)
	}

	// 非法枚举 → ValidationError，文档不变
	bad := "klingon"
	_, _, err = s.UpdateListingByIDAndOwner(ctx, l.ID.Hex(), owner.Hex(), &model.ListingPatch{Lang: &bad})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("bad lang err = %v, want ValidationError", err)
	}
	got, _ = s.GetListingByIDAndOwner(ctx, l.ID.Hex(), owner.Hex())
	if got.Lang != "GO" {
		t.Errorf("Lang after failed patch = %q, want GO", got.Lang)
	}

	// 无匹配 → (0, 0)
	matched, modified, err = s.UpdateListingByIDAndOwner(ctx, bson.NewObjectID().Hex(), owner.Hex(), &model.ListingPatch{Lang: &lang})
	if err != nil || matched != 0 || modified != 0 {
		t.Errorf("miss = (%d, %d, %v), want (0, 0, nil)", matched, modified, err)
	}
}
