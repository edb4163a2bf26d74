// Package model 定义核心数据模型
//
// user.go 包含用户及其字段约束，listing.go 包含职位信息及其字段约束。
// 枚举输入在校验前统一做大小写归一化（大写）。
package model

import (
	"fmt"
	"strings"
)

// ValidationError 字段级校验错误，列出所有违反约束的字段
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// newValidationError 构造校验错误，字段列表为空时返回 nil
func newValidationError(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
