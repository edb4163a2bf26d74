package mongostore

import (
	"context"
	"time"

	"job-board/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// UserStore
// ============================================================================

// CreateUser 校验并持久化新用户
//
// 归一化在校验前执行；email/username 的唯一性由唯一索引保证，
// 冲突时返回 storage.ErrDuplicate（预检查通过后的竞态也会落到这里）。
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	return insertOne(ctx, s.col(ColUsers), user)
}

// GetUserByEmail 按邮箱查找用户，不存在时返回 (nil, nil)
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: model.NormalizeEmail(email)}})
}

// GetUserByID 按 ID 查找用户，不存在时返回 (nil, nil)
// id 格式非法时返回 storage.ErrInvalidID
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: oid}})
}

// FindUsersByEmailOrUsername 按邮箱或用户名查找用户（逻辑 OR），用于唯一性预检查
// 无匹配时返回空切片，永不返回 nil
func (s *Store) FindUsersByEmailOrUsername(ctx context.Context, email, username string) ([]*model.User, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "email", Value: model.NormalizeEmail(email)}},
		bson.D{{Key: "username", Value: model.NormalizeUsername(username)}},
	}}}
	return findMany[model.User](ctx, s.col(ColUsers), filter)
}
