// Package scopelock 提供按班次键串行化的互斥锁。
//
// 同一班次的重算必须串行；不同班次互不影响。单实例部署使用 MemoryLocker，
// 多实例部署使用 RedisLocker。两者都只负责进程/实例间互斥，数据库侧另有
// scope_locks 行锁兜底。
package scopelock

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// Locker 班次锁
type Locker interface {
	// Acquire 阻塞直到获得 key 对应的锁、ctx 结束或等待超时。
	// 超时返回包装 ErrConcurrencyConflict 的错误。
	Acquire(ctx context.Context, key string) (release func(), err error)
	// Backend memory | redis
	Backend() string
}

func timeoutError(key string, waited time.Duration) error {
	return fmt.Errorf("%w: 班次 %s 锁等待超时 (%s)", pkgerrors.ErrConcurrencyConflict, key, waited.Round(time.Millisecond))
}

func waitContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
