package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// ── 分配模块业务错误 ──

var (
	ErrRecordNotFound      = fmt.Errorf("生产记录不存在: %w", pkgerrors.ErrNotFound)
	ErrEmployeeNotFound    = fmt.Errorf("员工不存在: %w", pkgerrors.ErrNotFound)
	ErrRecordScopeMismatch = fmt.Errorf("记录不属于该日期班次: %w", pkgerrors.ErrInvalidScope)
	ErrRecordWithoutScope  = fmt.Errorf("记录未设置日期，无法分配员工: %w", pkgerrors.ErrInvalidScope)
)

// AssignmentService 分配编排：替换记录的员工列表并重算所在班次
type AssignmentService interface {
	// Assign 替换 recordID 的员工并重算 (date, shift) 全班次，二者在同一事务内完成。
	// 成功时返回班次内全部记录，其余记录的工种人数可能被连带改写。
	Assign(ctx context.Context, recordID string, employeeIDs []string, date, shift, callerID string) (*ReconcileResult, error)
}

type assignmentService struct {
	reconciler *reconcileService
	logger     *zap.Logger
}

func newAssignmentService(reconciler *reconcileService, logger *zap.Logger) *assignmentService {
	return &assignmentService{reconciler: reconciler, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Assign — 替换分配 + 班次重算
// ════════════════════════════════════════════════════════════

func (s *assignmentService) Assign(ctx context.Context, recordID string, employeeIDs []string, date, shift, callerID string) (*ReconcileResult, error) {
	scope, err := model.ParseScope(date, shift)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidScope, err.Error())
	}
	ids := dedupeIDs(employeeIDs)

	start := time.Now()
	var result *ReconcileResult
	attempts, err := s.reconciler.guard.Run(ctx, []model.Scope{scope}, func(tx *repository.Repository) error {
		var err error
		result, err = s.assignInTx(ctx, tx, recordID, ids, scope)
		return err
	})
	s.reconciler.observe(start, result, err)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrNotFound) && !errors.Is(err, pkgerrors.ErrInvalidScope) {
			s.logger.Error("保存分配失败",
				zap.String("record_id", recordID),
				zap.String("scope", scope.Key()),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
		}
		return nil, err
	}

	result.Attempts = attempts
	s.logger.Info("分配已更新",
		zap.String("record_id", recordID),
		zap.String("scope", scope.Key()),
		zap.Int("employees", len(ids)),
		zap.Int("scope_records", len(result.Records)),
		zap.String("caller", callerID),
	)
	return result, nil
}

func (s *assignmentService) assignInTx(ctx context.Context, tx *repository.Repository, recordID string, ids []string, scope model.Scope) (*ReconcileResult, error) {
	rec, err := tx.Record.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, pkgerrors.ClassifyPG(err)
	}
	recScope, ok := rec.Scope()
	if !ok {
		return nil, ErrRecordWithoutScope
	}
	if !recScope.Equal(scope) {
		return nil, fmt.Errorf("%w: 记录属于 %s，请求为 %s", ErrRecordScopeMismatch, recScope, scope)
	}

	if err := ensureEmployeesExist(ctx, tx, ids); err != nil {
		return nil, err
	}

	if err := tx.Assignment.ReplaceAssignments(ctx, recordID, ids); err != nil {
		return nil, err
	}

	return s.reconciler.reconcileInTx(ctx, tx, scope)
}

func ensureEmployeesExist(ctx context.Context, tx *repository.Repository, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	emps, err := tx.Employee.ListByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.ClassifyPG(err)
	}
	if len(emps) == len(ids) {
		return nil
	}

	found := make(map[string]struct{}, len(emps))
	for _, e := range emps {
		found[e.EmployeeID] = struct{}{}
	}
	missing := make([]string, 0, len(ids)-len(emps))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return fmt.Errorf("%w: %s", ErrEmployeeNotFound, strings.Join(missing, ", "))
}

// dedupeIDs 去空、去重，保留首次出现顺序
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
