package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/heyyrintu/vbcl-form-sub001/config"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/metrics"
)

// RetentionService 清理超出恢复窗口的软删除记录
//
// 软删除记录已不参与任何班次的分摊，物理删除不需要重算。
type RetentionService interface {
	// Purge 物理删除 deleted_at 早于 now - retention.days 的记录，返回删除条数
	Purge(ctx context.Context) (int64, error)
}

type retentionService struct {
	repo    *repository.Repository
	days    int
	metrics metrics.Collector
	logger  *zap.Logger
	now     func() time.Time
}

// NewRetentionService 创建 RetentionService 实例
func NewRetentionService(repo *repository.Repository, cfg config.RetentionConfig, m metrics.Collector, logger *zap.Logger) RetentionService {
	return &retentionService{repo: repo, days: cfg.Days, metrics: m, logger: logger, now: time.Now}
}

func (s *retentionService) Purge(ctx context.Context) (int64, error) {
	if s.days <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().Add(-time.Duration(s.days) * 24 * time.Hour)

	n, err := s.repo.Record.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("清理软删除记录失败", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}
	s.metrics.AddRetentionPurged(int(n))
	if n > 0 {
		s.logger.Info("已清理软删除记录", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

// ── 定时任务 ──

// RetentionJob 按 cron 表达式周期执行 Purge；上一轮未结束时跳过本轮
type RetentionJob struct {
	cron    *cron.Cron
	svc     RetentionService
	timeout time.Duration
	logger  *zap.Logger
}

// NewRetentionJob 校验 cron 表达式并注册任务，调用 Start 后才开始调度
func NewRetentionJob(cfg config.RetentionConfig, svc RetentionService, logger *zap.Logger) (*RetentionJob, error) {
	j := &RetentionJob{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		svc:     svc,
		timeout: 4 * time.Minute,
		logger:  logger.Named("retention"),
	}
	if _, err := j.cron.AddFunc(cfg.Schedule, j.run); err != nil {
		return nil, fmt.Errorf("注册清理任务失败 schedule=%q: %w", cfg.Schedule, err)
	}
	return j, nil
}

func (j *RetentionJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if _, err := j.svc.Purge(ctx); err != nil {
		j.logger.Warn("本轮清理失败，等待下次调度", zap.Error(err))
	}
}

// Start 开始调度
func (j *RetentionJob) Start() {
	j.cron.Start()
	j.logger.Info("软删除清理任务已启动")
}

// Stop 停止调度并等待进行中的任务结束
func (j *RetentionJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		j.logger.Warn("等待清理任务结束超时")
	}
}
