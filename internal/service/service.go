package service

import (
	"go.uber.org/zap"

	"github.com/heyyrintu/vbcl-form-sub001/config"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/jwt"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/metrics"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/scopelock"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Employee   EmployeeService
	Record     RecordService
	Assignment AssignmentService
	Attendance AttendanceService
	Reconcile  ReconcileService
	Export     ExportService
	Retention  RetentionService
}

// NewService 创建 Service 聚合
// Record / Assignment / Reconcile 共用同一个 scopeGuard，保证同一班次的写操作串行
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	locker scopelock.Locker,
	m metrics.Collector,
	logger *zap.Logger,
) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	guard := newScopeGuard(repo, locker, cfg.Reconcile, m, logger)
	reconciler := newReconcileService(repo, guard, cfg.Reconcile, m, logger)

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:       NewUserService(repo, logger),
		Employee:   NewEmployeeService(repo, logger),
		Record:     newRecordService(repo, reconciler, cfg.Retention, logger),
		Assignment: newAssignmentService(reconciler, logger),
		Attendance: NewAttendanceService(repo, logger),
		Reconcile:  reconciler,
		Export:     NewExportService(repo, logger),
		Retention:  NewRetentionService(repo, cfg.Retention, m, logger),
	}
}
