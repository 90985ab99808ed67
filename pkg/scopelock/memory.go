package scopelock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/heyyrintu/vbcl-form-sub001/pkg/metrics"
)

// MemoryLocker 进程内班次锁，每个键一个容量为 1 的信号量
type MemoryLocker struct {
	slots   *xsync.MapOf[string, chan struct{}]
	timeout time.Duration
	metrics metrics.Collector
}

var _ Locker = (*MemoryLocker)(nil)

// NewMemoryLocker timeout<=0 时仅受 ctx 约束
func NewMemoryLocker(timeout time.Duration, m metrics.Collector) *MemoryLocker {
	if m == nil {
		m = metrics.NewNop()
	}
	return &MemoryLocker{
		slots:   xsync.NewMapOf[string, chan struct{}](),
		timeout: timeout,
		metrics: m,
	}
}

func (l *MemoryLocker) Backend() string { return "memory" }

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	slot, _ := l.slots.LoadOrStore(key, make(chan struct{}, 1))

	start := time.Now()
	waitCtx, cancel := waitContext(ctx, l.timeout)
	defer cancel()

	select {
	case slot <- struct{}{}:
		l.metrics.ObserveLockWait(l.Backend(), time.Since(start).Seconds(), true)
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-waitCtx.Done():
		l.metrics.ObserveLockWait(l.Backend(), time.Since(start).Seconds(), false)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, timeoutError(key, time.Since(start))
		}
		return nil, waitCtx.Err()
	}
}
