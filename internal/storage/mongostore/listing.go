package mongostore

import (
	"context"
	"time"

	"job-board/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ListingStore
//
// 所有查询和变更都以 (_id, owner_id) 为过滤条件，这是职位数据
// 唯一的访问控制机制，不存在单独的授权层。
// ============================================================================

// CreateListing 校验并持久化新职位
// 枚举字段在校验前做大小写归一化；截止日期必须严格晚于当前时间
func (s *Store) CreateListing(ctx context.Context, listing *model.Listing) error {
	listing.Normalize()
	if err := listing.Validate(true); err != nil {
		return err
	}
	if listing.ID.IsZero() {
		listing.ID = bson.NewObjectID()
	}
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	return insertOne(ctx, s.col(ColListings), listing)
}

// CountActiveListingsByOwner 统计指定用户的 ACTIVE 职位数
// ownerID 格式非法时返回 storage.ErrInvalidID
func (s *Store) CountActiveListingsByOwner(ctx context.Context, ownerID string) (int64, error) {
	owner, err := parseObjectID(ownerID)
	if err != nil {
		return 0, err
	}
	filter := bson.D{
		{Key: "owner_id", Value: owner},
		{Key: "status", Value: model.ListingStatusActive},
	}
	n, err := s.col(ColListings).CountDocuments(ctx, filter)
	if err != nil {
		return 0, wrapError(err)
	}
	return n, nil
}

// ListListingsByOwner 列出指定用户的全部职位（按创建时间倒序）
// 无匹配时返回空切片，永不返回 nil
func (s *Store) ListListingsByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	owner, err := parseObjectID(ownerID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Listing](ctx, s.col(ColListings), bson.D{{Key: "owner_id", Value: owner}}, opts)
}

// GetListingByIDAndOwner 按 (id, owner) 查找职位，无匹配时返回 (nil, nil)
// 任一 id 格式非法时返回 storage.ErrInvalidID
func (s *Store) GetListingByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Listing, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	owner, err := parseObjectID(ownerID)
	if err != nil {
		return nil, err
	}
	return findOne[model.Listing](ctx, s.col(ColListings), bson.D{
		{Key: "_id", Value: oid},
		{Key: "owner_id", Value: owner},
	})
}

// DeleteListingByIDAndOwner 按 (id, owner) 删除至多一个职位，返回删除数（0 或 1）
//
// ownerID 为空串时视为"无匹配"返回 (0, nil)；非空但格式非法才返回
// storage.ErrInvalidID。id 格式非法始终返回 storage.ErrInvalidID。
func (s *Store) DeleteListingByIDAndOwner(ctx context.Context, id, ownerID string) (int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}
	if ownerID == "" {
		return 0, nil
	}
	owner, err := parseObjectID(ownerID)
	if err != nil {
		return 0, err
	}
	res, err := s.col(ColListings).DeleteOne(ctx, bson.D{
		{Key: "_id", Value: oid},
		{Key: "owner_id", Value: owner},
	})
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}

// UpdateListingByIDAndOwner 按 (id, owner) 套用补丁，返回 (matched, modified)
//
// 合并后的完整文档会重新走字段校验（枚举/长度/范围）；
// 补丁显式修改了截止日期时才要求其在未来。
// 补丁与现有文档完全一致时不发起写操作，返回 (1, 0)。
func (s *Store) UpdateListingByIDAndOwner(ctx context.Context, id, ownerID string, patch *model.ListingPatch) (matched, modified int64, err error) {
	existing, err := s.GetListingByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return 0, 0, err
	}
	if existing == nil {
		return 0, 0, nil
	}

	merged := *existing
	patch.ApplyTo(&merged)
	merged.Normalize()
	if err := merged.Validate(patch.DueDate != nil); err != nil {
		return 0, 0, err
	}

	set := diffFields(existing, &merged)
	if len(set) == 0 {
		return 1, 0, nil
	}
	set = append(set, bson.E{Key: "updated_at", Value: time.Now()})

	res, err := s.col(ColListings).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: existing.ID}, {Key: "owner_id", Value: existing.OwnerID}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return 0, 0, wrapError(err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

// diffFields 计算补丁合并后实际变化的字段集合
func diffFields(prev, next *model.Listing) bson.D {
	var set bson.D
	if next.Title != prev.Title {
		set = append(set, bson.E{Key: "title", Value: next.Title})
	}
	if next.Type != prev.Type {
		set = append(set, bson.E{Key: "type", Value: next.Type})
	}
	if next.Description != prev.Description {
		set = append(set, bson.E{Key: "description", Value: next.Description})
	}
	if next.Lang != prev.Lang {
		set = append(set, bson.E{Key: "lang", Value: next.Lang})
	}
	if !equalBudget(prev.Budget, next.Budget) {
		set = append(set, bson.E{Key: "budget", Value: next.Budget})
	}
	if !next.DueDate.Equal(prev.DueDate) {
		set = append(set, bson.E{Key: "due_date", Value: next.DueDate})
	}
	if next.IsOnline != prev.IsOnline {
		set = append(set, bson.E{Key: "is_online", Value: next.IsOnline})
	}
	if next.Status != prev.Status {
		set = append(set, bson.E{Key: "status", Value: next.Status})
	}
	return set
}

func equalBudget(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
