package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/heyyrintu/vbcl-form-sub001/config"
	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/metrics"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/scopelock"
)

// scopeGuard 串行化同一班次的写操作。
//
// 每次尝试：按键排序获取 Locker 锁 → 开启事务 → 对每个班次行加 FOR UPDATE →
// 执行 fn → 提交/回滚 → 逆序释放锁。fn 返回 ErrConcurrencyConflict 时整体重试，
// 总尝试次数不超过 reconcile.max_attempts。
type scopeGuard struct {
	repo    *repository.Repository
	locker  scopelock.Locker
	cfg     config.ReconcileConfig
	metrics metrics.Collector
	logger  *zap.Logger
}

func newScopeGuard(repo *repository.Repository, locker scopelock.Locker, cfg config.ReconcileConfig, m metrics.Collector, logger *zap.Logger) *scopeGuard {
	return &scopeGuard{repo: repo, locker: locker, cfg: cfg, metrics: m, logger: logger}
}

// Run 返回实际尝试次数
func (g *scopeGuard) Run(ctx context.Context, scopes []model.Scope, fn func(tx *repository.Repository) error) (int, error) {
	scopes = uniqueScopes(scopes)

	maxAttempts := g.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := g.runOnce(ctx, scopes, fn)
		if err == nil {
			return attempt, nil
		}
		if attempt >= maxAttempts || !errors.Is(err, pkgerrors.ErrConcurrencyConflict) || ctx.Err() != nil {
			return attempt, err
		}
		g.metrics.IncReconcileRetry()
		g.logger.Warn("班次写入并发冲突，整体重试",
			zap.Strings("scopes", scopeKeys(scopes)),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}

func (g *scopeGuard) runOnce(ctx context.Context, scopes []model.Scope, fn func(tx *repository.Repository) error) error {
	releases := make([]func(), 0, len(scopes))
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()

	for _, sc := range scopes {
		release, err := g.locker.Acquire(ctx, sc.Key())
		if err != nil {
			return err
		}
		releases = append(releases, release)
	}

	return g.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		for _, sc := range scopes {
			if err := tx.ScopeLock.Lock(ctx, sc, g.cfg.DBLockTimeout); err != nil {
				return err
			}
		}
		return fn(tx)
	})
}

// uniqueScopes 去重并按键排序，多班次加锁顺序一致以避免死锁
func uniqueScopes(scopes []model.Scope) []model.Scope {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]model.Scope, 0, len(scopes))
	for _, sc := range scopes {
		if _, ok := seen[sc.Key()]; ok {
			continue
		}
		seen[sc.Key()] = struct{}{}
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func scopeKeys(scopes []model.Scope) []string {
	keys := make([]string, len(scopes))
	for i, sc := range scopes {
		keys[i] = sc.Key()
	}
	return keys
}
