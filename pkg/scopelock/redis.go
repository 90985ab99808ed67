package scopelock

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/heyyrintu/vbcl-form-sub001/pkg/metrics"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/redis"
)

const defaultRetryInterval = 25 * time.Millisecond

// lockClient *redis.Client 的锁操作子集
type lockClient interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

var _ lockClient = (*redis.Client)(nil)

// RedisLocker 跨实例班次锁：SET NX PX 获取，校验 token 后释放。
// ttl 须大于单次重算的最长耗时。
type RedisLocker struct {
	client        lockClient
	ttl           time.Duration
	timeout       time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
	metrics       metrics.Collector
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker 创建 Redis 班次锁
func NewRedisLocker(client lockClient, ttl, timeout time.Duration, logger *zap.Logger, m metrics.Collector) *RedisLocker {
	if m == nil {
		m = metrics.NewNop()
	}
	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		timeout:       timeout,
		retryInterval: defaultRetryInterval,
		logger:        logger,
		metrics:       m,
	}
}

func (l *RedisLocker) Backend() string { return "redis" }

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "scope:" + key
	start := time.Now()
	waitCtx, cancel := waitContext(ctx, l.timeout)
	defer cancel()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		token, ok, err := l.client.TryLock(waitCtx, lockKey, l.ttl)
		if err != nil && waitCtx.Err() == nil {
			l.metrics.ObserveLockWait(l.Backend(), time.Since(start).Seconds(), false)
			return nil, err
		}
		if ok {
			l.metrics.ObserveLockWait(l.Backend(), time.Since(start).Seconds(), true)
			return l.releaser(lockKey, token), nil
		}

		select {
		case <-ticker.C:
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
}

// releaser 释放时不继承调用方 ctx，请求已取消也要归还锁
func (l *RedisLocker) releaser(lockKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := l.client.Unlock(ctx, lockKey, token); err != nil {
				l.logger.Warn("释放班次锁失败", zap.String("key", lockKey), zap.Error(err))
			}
		})
	}
}
