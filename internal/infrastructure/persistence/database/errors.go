package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// likeEscaper 转义LIKE通配符
// 转义符用'!'，三种方言的字符串字面量里它都不需要再转义
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern 子串匹配模式，配合 LIKE ? ESCAPE '!' 使用
// 用户输入的%和_按普通字符匹配
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// isDuplicateError 判断是否为唯一索引冲突错误
// 开启TranslateError后三种方言都会返回gorm.ErrDuplicatedKey，
// 字符串匹配兜底驱动未翻译的情况：
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - SQLite: UNIQUE constraint failed: reviews.book_id, reviews.user_id
// - PostgreSQL 23505: duplicate key value violates unique constraint
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
