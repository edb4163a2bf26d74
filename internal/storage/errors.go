// Package storage 定义存储层领域错误
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// mongostore 负责将 MongoDB 驱动错误转换为这些领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 查询类接口对"不存在"返回 (nil, nil)，此错误仅在内部转换时使用
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（users.email / users.username 唯一索引）
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrInvalidID 标识符格式非法（非 24 位十六进制 ObjectID）
	ErrInvalidID = errors.New("invalid identifier")
)
