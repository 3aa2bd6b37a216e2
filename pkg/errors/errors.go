package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("El registro fue modificado por otra operación, recargue e intente de nuevo")

// PostgreSQL SQLSTATE
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// IsDuplicate 判断是否为唯一约束冲突
// 依赖 gorm TranslateError；同时兼容未翻译的 pgconn 原生错误
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return SQLState(err) == sqlStateUniqueViolation
}

// IsForeignKey 判断是否为外键约束冲突
func IsForeignKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return SQLState(err) == sqlStateForeignKeyViolation
}

// SQLState 提取 PostgreSQL 错误码，非 pg 错误返回空串（用于日志）
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
