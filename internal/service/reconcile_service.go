package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/heyyrintu/vbcl-form-sub001/config"
	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	"github.com/heyyrintu/vbcl-form-sub001/internal/splitcount"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/metrics"
)

// ReconcileResult 一个班次重算后的状态
type ReconcileResult struct {
	Scope model.Scope
	// Records 班次内全部未删除记录（重算后的值）
	Records            []model.ProductionRecord
	AssignmentsWritten int
	RecordsWritten     int
	Attempts           int
}

// ReconcileService 班次分摊重算
type ReconcileService interface {
	// Reconcile 重算单个班次：每名员工在班次内的分摊之和恢复为 1，并刷新各记录工种人数
	Reconcile(ctx context.Context, scope model.Scope) (*ReconcileResult, error)
	// ReconcileRange 并行重算 [from, to] 内所有存在记录的班次
	ReconcileRange(ctx context.Context, from, to time.Time) ([]ReconcileResult, error)
}

type reconcileService struct {
	repo        *repository.Repository
	guard       *scopeGuard
	parallelism int
	metrics     metrics.Collector
	logger      *zap.Logger
}

func newReconcileService(repo *repository.Repository, guard *scopeGuard, cfg config.ReconcileConfig, m metrics.Collector, logger *zap.Logger) *reconcileService {
	p := cfg.Parallelism
	if p < 1 {
		p = 1
	}
	return &reconcileService{repo: repo, guard: guard, parallelism: p, metrics: m, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Reconcile — 单班次重算
// ════════════════════════════════════════════════════════════

func (s *reconcileService) Reconcile(ctx context.Context, scope model.Scope) (*ReconcileResult, error) {
	start := time.Now()

	var result *ReconcileResult
	attempts, err := s.guard.Run(ctx, []model.Scope{scope}, func(tx *repository.Repository) error {
		var err error
		result, err = s.reconcileInTx(ctx, tx, scope)
		return err
	})
	s.observe(start, result, err)
	if err != nil {
		s.logger.Error("班次重算失败", zap.String("scope", scope.Key()), zap.Int("attempts", attempts), zap.Error(err))
		return nil, err
	}

	result.Attempts = attempts
	return result, nil
}

// reconcileInTx 调用方须已持有班次锁且 tx 为当前事务
func (s *reconcileService) reconcileInTx(ctx context.Context, tx *repository.Repository, scope model.Scope) (*ReconcileResult, error) {
	records, err := tx.Record.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("加载班次 %s 记录失败: %w", scope, pkgerrors.ClassifyPG(err))
	}

	result := &ReconcileResult{Scope: scope, Records: records}
	if len(records) == 0 {
		return result, nil
	}

	target := splitcount.Compute(records)
	plan := splitcount.Diff(records, target)

	for _, u := range plan.Splits {
		n, err := tx.Assignment.SetSplitCountBatch(ctx, u.AssignmentIDs, u.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: 班次 %s 写入分摊失败: %w", pkgerrors.ErrPartialReconciliation, scope, err)
		}
		result.AssignmentsWritten += int(n)
	}

	recordIDs := make([]string, 0, len(plan.RoleCounts))
	for id := range plan.RoleCounts {
		recordIDs = append(recordIDs, id)
	}
	sort.Strings(recordIDs)
	for _, id := range recordIDs {
		if err := tx.Record.UpdateRoleCounts(ctx, id, plan.RoleCounts[id]); err != nil {
			return nil, fmt.Errorf("%w: 班次 %s 写入记录 %s 工种人数失败: %w", pkgerrors.ErrPartialReconciliation, scope, id, err)
		}
		result.RecordsWritten++
	}

	splitcount.Apply(result.Records, target)

	s.logger.Debug("班次重算完成",
		zap.String("scope", scope.Key()),
		zap.Int("records", len(records)),
		zap.Int("employees", len(target.RecordsPerEmployee)),
		zap.Int("assignments_written", result.AssignmentsWritten),
		zap.Int("records_written", result.RecordsWritten),
	)
	return result, nil
}

func (s *reconcileService) observe(start time.Time, res *ReconcileResult, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case res != nil && len(res.Records) == 0:
		outcome = "noop"
	}
	s.metrics.ObserveReconcile(outcome, time.Since(start).Seconds())
	if err == nil && res != nil {
		s.metrics.AddReconcileWrites(res.AssignmentsWritten, res.RecordsWritten)
	}
}

// ════════════════════════════════════════════════════════════
// ReconcileRange — 多班次并行重算
// ════════════════════════════════════════════════════════════

func (s *reconcileService) ReconcileRange(ctx context.Context, from, to time.Time) ([]ReconcileResult, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 结束日期早于开始日期", pkgerrors.ErrInvalidScope)
	}

	scopes, err := s.repo.Record.ListScopes(ctx, from, to)
	if err != nil {
		s.logger.Error("查询区间班次失败", zap.Error(err))
		return nil, err
	}

	results := make([]ReconcileResult, len(scopes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, sc := range scopes {
		i, sc := i, sc
		g.Go(func() error {
			res, err := s.Reconcile(gctx, sc)
			if err != nil {
				return fmt.Errorf("班次 %s: %w", sc, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("区间重算完成",
		zap.String("from", from.Format(model.DateLayout)),
		zap.String("to", to.Format(model.DateLayout)),
		zap.Int("scopes", len(scopes)),
	)
	return results, nil
}
