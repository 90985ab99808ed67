package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ── 分摊重算错误分类 ──
//
// 各模块业务错误通过 fmt.Errorf("%w: ...") 包装以下哨兵错误，
// Handler 层统一用 errors.Is 判断类别。
var (
	// ErrNotFound 引用的记录或员工在读写时不存在
	ErrNotFound = errors.New("资源不存在")

	// ErrInvalidScope 日期或班次缺失、格式错误
	ErrInvalidScope = errors.New("日期或班次无效")

	// ErrConcurrencyConflict 班次锁获取超时，或写入因并发被数据库拒绝
	ErrConcurrencyConflict = errors.New("并发冲突，请稍后重试")

	// ErrPartialReconciliation 批量写入中途失败，需要重新触发该班次的重算
	ErrPartialReconciliation = errors.New("分摊重算未完成")
)

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgInvalidTextRepr      = "22P02" // 如非法 uuid，视为引用不存在
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// ClassifyPG 将 PostgreSQL 驱动错误映射为业务分类错误。
// 无法识别时返回原错误。
func ClassifyPG(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgForeignKeyViolation, pgInvalidTextRepr:
		return errors.Join(ErrNotFound, err)
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
		return errors.Join(ErrConcurrencyConflict, err)
	default:
		return err
	}
}

// IsUniqueViolation 是否为唯一约束冲突
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
