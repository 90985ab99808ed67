package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/config"
	"github.com/heyyrintu/vbcl-form-sub001/internal/dto"
	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// ── 生产记录模块业务错误 ──

var (
	ErrRecordNotDeleted      = errors.New("记录未被删除")
	ErrRestoreWindowExpired  = errors.New("记录已超过可恢复期限")
	ErrInvalidRecordStatus   = errors.New("记录状态无效")
	ErrInvalidDateRange      = fmt.Errorf("日期区间无效: %w", pkgerrors.ErrInvalidScope)
	ErrEmployeesWithoutScope = fmt.Errorf("分配员工须同时提供日期与班次: %w", pkgerrors.ErrInvalidScope)
)

// RecordService 生产记录业务接口
//
// 涉及班次成员变化的写操作（带员工创建、改日期/班次、删除、恢复）都在班次锁内
// 与重算同事务完成，响应返回受影响班次的全部记录。
type RecordService interface {
	Create(ctx context.Context, req *dto.CreateRecordRequest, callerID string) (*dto.ScopeChangeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RecordResponse, error)
	List(ctx context.Context, req *dto.RecordListRequest) ([]dto.RecordResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateRecordRequest, callerID string) (*dto.ScopeChangeResponse, error)
	Delete(ctx context.Context, id, callerID string) (*dto.ScopeChangeResponse, error)
	Restore(ctx context.Context, id, callerID string) (*dto.ScopeChangeResponse, error)
	ListDeleted(ctx context.Context, req *dto.PaginationRequest) ([]dto.RecordResponse, int64, error)
}

type recordService struct {
	repo          *repository.Repository
	reconciler    *reconcileService
	restoreWindow time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

func newRecordService(repo *repository.Repository, reconciler *reconcileService, cfg config.RetentionConfig, logger *zap.Logger) *recordService {
	days := cfg.Days
	if days < 1 {
		days = 7
	}
	return &recordService{
		repo:          repo,
		reconciler:    reconciler,
		restoreWindow: time.Duration(days) * 24 * time.Hour,
		now:           time.Now,
		logger:        logger,
	}
}

// parseOptionalDate 空串返回 nil
func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: 日期格式错误 %q", pkgerrors.ErrInvalidScope, s)
	}
	return &d, nil
}

// ────────────────────── Create ──────────────────────

func (s *recordService) Create(ctx context.Context, req *dto.CreateRecordRequest, callerID string) (*dto.ScopeChangeResponse, error) {
	if !model.IsValidShift(req.Shift) {
		return nil, fmt.Errorf("%w: 班次无效 %q", pkgerrors.ErrInvalidScope, req.Shift)
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.RecordStatusPending
	}
	if !model.IsValidRecordStatus(status) {
		return nil, ErrInvalidRecordStatus
	}
	ids := dedupeIDs(req.EmployeeIDs)
	if len(ids) > 0 && date == nil {
		return nil, ErrEmployeesWithoutScope
	}

	rec := &model.ProductionRecord{
		Date:      date,
		Shift:     req.Shift,
		Status:    status,
		BinNo:     req.BinNo,
		Model:     req.Model,
		ChassisNo: req.ChassisNo,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Remarks:   req.Remarks,
	}
	rec.CreatedBy = &callerID
	rec.UpdatedBy = &callerID

	// 无日期的记录不属于任何班次，直接保存
	scope, ok := rec.Scope()
	if !ok {
		if err := s.repo.Record.Create(ctx, rec); err != nil {
			s.logger.Error("创建生产记录失败", zap.Error(err))
			return nil, err
		}
		rr := ToRecordResponse(rec)
		return &dto.ScopeChangeResponse{Record: &rr, ScopeRecords: []dto.RecordResponse{}}, nil
	}

	res, err := s.runInScopes(ctx, []model.Scope{scope}, func(tx *repository.Repository) (*ReconcileResult, error) {
		if err := tx.Record.Create(ctx, rec); err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			if err := ensureEmployeesExist(ctx, tx, ids); err != nil {
				return nil, err
			}
			if err := tx.Assignment.ReplaceAssignments(ctx, rec.RecordID, ids); err != nil {
				return nil, err
			}
		}
		return s.reconciler.reconcileInTx(ctx, tx, scope)
	})
	if err != nil {
		s.logOnUnexpected("创建生产记录失败", rec.RecordID, err)
		return nil, err
	}
	return ToScopeChangeResponse(res[0], rec.RecordID), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *recordService) GetByID(ctx context.Context, id string) (*dto.RecordResponse, error) {
	rec, err := s.repo.Record.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("查询生产记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := ToRecordResponse(rec)
	return &resp, nil
}

func (s *recordService) List(ctx context.Context, req *dto.RecordListRequest) ([]dto.RecordResponse, int64, error) {
	from, err := parseOptionalDate(req.From)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate(req.To)
	if err != nil {
		return nil, 0, err
	}
	if req.Shift != "" && !model.IsValidShift(req.Shift) {
		return nil, 0, fmt.Errorf("%w: 班次无效 %q", pkgerrors.ErrInvalidScope, req.Shift)
	}

	recs, total, err := s.repo.Record.List(ctx, repository.RecordFilter{
		From:   from,
		To:     to,
		Shift:  req.Shift,
		Status: req.Status,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出生产记录失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.RecordResponse, 0, len(recs))
	for i := range recs {
		list = append(list, ToRecordResponse(&recs[i]))
	}
	return list, total, nil
}

// ────────────────────── Update ──────────────────────

// Update 日期或班次变化时，原班次与新班次都会重算
func (s *recordService) Update(ctx context.Context, id string, req *dto.UpdateRecordRequest, callerID string) (*dto.ScopeChangeResponse, error) {
	current, err := s.repo.Record.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("查询生产记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if current.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	updated := *current
	updated.Assignments = nil
	if err := applyRecordUpdate(&updated, req); err != nil {
		return nil, err
	}
	if len(current.Assignments) > 0 && updated.Date == nil {
		return nil, ErrEmployeesWithoutScope
	}
	updated.UpdatedBy = &callerID

	oldScope, oldOK := current.Scope()
	newScope, newOK := updated.Scope()
	var scopes []model.Scope
	if oldOK {
		scopes = append(scopes, oldScope)
	}
	if newOK && (!oldOK || !newScope.Equal(oldScope)) {
		scopes = append(scopes, newScope)
	}
	scopeChanged := oldOK != newOK || (oldOK && !newScope.Equal(oldScope))

	if len(scopes) == 0 {
		if err := s.repo.Record.Update(ctx, &updated); err != nil {
			s.logOnUnexpected("更新生产记录失败", id, err)
			return nil, err
		}
		rr := ToRecordResponse(&updated)
		return &dto.ScopeChangeResponse{Record: &rr, ScopeRecords: []dto.RecordResponse{}}, nil
	}

	saved := updated
	results, err := s.runInScopesMulti(ctx, scopes, func(tx *repository.Repository) ([]*ReconcileResult, error) {
		// 每次尝试从同一版本号出发
		attempt := updated
		if err := tx.Record.Update(ctx, &attempt); err != nil {
			return nil, err
		}
		saved = attempt
		if !scopeChanged {
			res, err := s.loadScope(ctx, tx, newScope)
			if err != nil {
				return nil, err
			}
			return []*ReconcileResult{res}, nil
		}
		out := make([]*ReconcileResult, 0, len(scopes))
		for _, sc := range scopes {
			res, err := s.reconciler.reconcileInTx(ctx, tx, sc)
			if err != nil {
				return nil, err
			}
			out = append(out, res)
		}
		return out, nil
	})
	if err != nil {
		s.logOnUnexpected("更新生产记录失败", id, err)
		return nil, err
	}

	// 响应以记录当前所在班次为主
	primary := results[0]
	if newOK {
		for _, r := range results {
			if r.Scope.Equal(newScope) {
				primary = r
			}
		}
	}
	resp := ToScopeChangeResponse(primary, id)
	for _, r := range results {
		if r != primary {
			resp.AssignmentsWritten += r.AssignmentsWritten
			resp.RecordsWritten += r.RecordsWritten
		}
	}
	if resp.Record == nil {
		rr := ToRecordResponse(&saved)
		resp.Record = &rr
	}
	return resp, nil
}

func applyRecordUpdate(rec *model.ProductionRecord, req *dto.UpdateRecordRequest) error {
	if req.Date != nil {
		d, err := parseOptionalDate(*req.Date)
		if err != nil {
			return err
		}
		rec.Date = d
	}
	if req.Shift != nil {
		if !model.IsValidShift(*req.Shift) {
			return fmt.Errorf("%w: 班次无效 %q", pkgerrors.ErrInvalidScope, *req.Shift)
		}
		rec.Shift = *req.Shift
	}
	if req.Status != nil {
		if !model.IsValidRecordStatus(*req.Status) {
			return ErrInvalidRecordStatus
		}
		rec.Status = *req.Status
	}
	if req.BinNo != nil {
		rec.BinNo = *req.BinNo
	}
	if req.Model != nil {
		rec.Model = *req.Model
	}
	if req.ChassisNo != nil {
		rec.ChassisNo = *req.ChassisNo
	}
	if req.StartTime != nil {
		rec.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		rec.EndTime = req.EndTime
	}
	if req.Remarks != nil {
		rec.Remarks = *req.Remarks
	}
	return nil
}

// ────────────────────── Delete / Restore ──────────────────────

// Delete 软删除后重算所在班次，同班次其他记录上的员工分摊随之恢复
func (s *recordService) Delete(ctx context.Context, id, callerID string) (*dto.ScopeChangeResponse, error) {
	rec, err := s.repo.Record.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("查询生产记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	scope, ok := rec.Scope()
	if !ok {
		if err := s.repo.Record.SoftDelete(ctx, id, callerID); err != nil {
			return nil, s.notFoundOr(err)
		}
		return &dto.ScopeChangeResponse{ScopeRecords: []dto.RecordResponse{}}, nil
	}

	res, err := s.runInScopes(ctx, []model.Scope{scope}, func(tx *repository.Repository) (*ReconcileResult, error) {
		if err := tx.Record.SoftDelete(ctx, id, callerID); err != nil {
			return nil, s.notFoundOr(err)
		}
		return s.reconciler.reconcileInTx(ctx, tx, scope)
	})
	if err != nil {
		s.logOnUnexpected("删除生产记录失败", id, err)
		return nil, err
	}

	s.logger.Info("生产记录已删除", zap.String("id", id), zap.String("scope", scope.Key()), zap.String("caller", callerID))
	return ToScopeChangeResponse(res[0], ""), nil
}

// Restore 恢复期限内的软删除记录，并重算所在班次
func (s *recordService) Restore(ctx context.Context, id, callerID string) (*dto.ScopeChangeResponse, error) {
	rec, err := s.repo.Record.GetByIDUnscoped(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err)
	}
	if !rec.DeletedAt.Valid {
		return nil, ErrRecordNotDeleted
	}
	if s.now().Sub(rec.DeletedAt.Time) > s.restoreWindow {
		return nil, ErrRestoreWindowExpired
	}

	scope, ok := rec.Scope()
	if !ok {
		if err := s.repo.Record.Restore(ctx, id, callerID); err != nil {
			return nil, s.notFoundOr(err)
		}
		restored, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &dto.ScopeChangeResponse{Record: restored, ScopeRecords: []dto.RecordResponse{}}, nil
	}

	res, err := s.runInScopes(ctx, []model.Scope{scope}, func(tx *repository.Repository) (*ReconcileResult, error) {
		if err := tx.Record.Restore(ctx, id, callerID); err != nil {
			return nil, s.notFoundOr(err)
		}
		return s.reconciler.reconcileInTx(ctx, tx, scope)
	})
	if err != nil {
		s.logOnUnexpected("恢复生产记录失败", id, err)
		return nil, err
	}

	s.logger.Info("生产记录已恢复", zap.String("id", id), zap.String("scope", scope.Key()), zap.String("caller", callerID))
	return ToScopeChangeResponse(res[0], id), nil
}

func (s *recordService) ListDeleted(ctx context.Context, req *dto.PaginationRequest) ([]dto.RecordResponse, int64, error) {
	recs, total, err := s.repo.Record.ListDeleted(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出已删除记录失败", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.RecordResponse, 0, len(recs))
	for i := range recs {
		list = append(list, ToRecordResponse(&recs[i]))
	}
	return list, total, nil
}

// ── 辅助 ──

func (s *recordService) runInScopes(ctx context.Context, scopes []model.Scope, fn func(tx *repository.Repository) (*ReconcileResult, error)) ([]*ReconcileResult, error) {
	return s.runInScopesMulti(ctx, scopes, func(tx *repository.Repository) ([]*ReconcileResult, error) {
		res, err := fn(tx)
		if err != nil {
			return nil, err
		}
		return []*ReconcileResult{res}, nil
	})
}

func (s *recordService) runInScopesMulti(ctx context.Context, scopes []model.Scope, fn func(tx *repository.Repository) ([]*ReconcileResult, error)) ([]*ReconcileResult, error) {
	start := time.Now()
	var results []*ReconcileResult
	_, err := s.reconciler.guard.Run(ctx, scopes, func(tx *repository.Repository) error {
		var err error
		results, err = fn(tx)
		return err
	})
	if err != nil {
		s.reconciler.observe(start, nil, err)
		return nil, err
	}
	for _, r := range results {
		s.reconciler.observe(start, r, nil)
	}
	return results, nil
}

// loadScope 班次成员未变化时只读取当前状态
func (s *recordService) loadScope(ctx context.Context, tx *repository.Repository, scope model.Scope) (*ReconcileResult, error) {
	recs, err := tx.Record.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{Scope: scope, Records: recs}, nil
}

func (s *recordService) notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

func (s *recordService) logOnUnexpected(msg, id string, err error) {
	if errors.Is(err, pkgerrors.ErrNotFound) || errors.Is(err, pkgerrors.ErrInvalidScope) || errors.Is(err, pkgerrors.ErrOptimisticLock) {
		return
	}
	s.logger.Error(msg, zap.String("id", id), zap.Error(err))
}
