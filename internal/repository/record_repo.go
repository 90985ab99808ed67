package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// RecordFilter 生产记录列表筛选条件
type RecordFilter struct {
	From   *time.Time
	To     *time.Time
	Shift  string
	Status string
}

// RecordRepository 生产记录数据访问接口
type RecordRepository interface {
	Create(ctx context.Context, rec *model.ProductionRecord) error
	// GetByID 仅返回未删除记录，预加载分配及员工
	GetByID(ctx context.Context, id string) (*model.ProductionRecord, error)
	// GetByIDUnscoped 包含已软删除记录
	GetByIDUnscoped(ctx context.Context, id string) (*model.ProductionRecord, error)
	List(ctx context.Context, filter RecordFilter, offset, limit int) ([]model.ProductionRecord, int64, error)
	// ListByScope 班次内全部未删除记录，预加载分配及员工
	ListByScope(ctx context.Context, scope model.Scope) ([]model.ProductionRecord, error)
	// ListByDateRange [from, to] 内未删除记录，按日期、班次排序，预加载分配及员工
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.ProductionRecord, error)
	// ListScopes [from, to] 内存在未删除记录的全部班次
	ListScopes(ctx context.Context, from, to time.Time) ([]model.Scope, error)
	ListDeleted(ctx context.Context, offset, limit int) ([]model.ProductionRecord, int64, error)
	// Update 乐观锁更新描述字段、日期、班次与状态；不写工种人数
	Update(ctx context.Context, rec *model.ProductionRecord) error
	UpdateRoleCounts(ctx context.Context, recordID string, counts model.RoleCounts) error
	SoftDelete(ctx context.Context, id, deletedBy string) error
	Restore(ctx context.Context, id, restoredBy string) error
	// PurgeDeletedBefore 永久删除 deleted_at 早于 cutoff 的记录及其分配
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type recordRepo struct {
	db *gorm.DB
}

// NewRecordRepo 创建 RecordRepository 实例
func NewRecordRepo(db *gorm.DB) RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) Create(ctx context.Context, rec *model.ProductionRecord) error {
	return r.db.WithContext(ctx).Omit("Assignments").Create(rec).Error
}

func (r *recordRepo) GetByID(ctx context.Context, id string) (*model.ProductionRecord, error) {
	var rec model.ProductionRecord
	err := r.db.WithContext(ctx).
		Preload("Assignments").Preload("Assignments.Employee").
		Where("record_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepo) GetByIDUnscoped(ctx context.Context, id string) (*model.ProductionRecord, error) {
	var rec model.ProductionRecord
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("record_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepo) List(ctx context.Context, filter RecordFilter, offset, limit int) ([]model.ProductionRecord, int64, error) {
	var recs []model.ProductionRecord
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ProductionRecord{})
	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date <= ?", *filter.To)
	}
	if filter.Shift != "" {
		db = db.Where("shift = ?", filter.Shift)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Assignments").Preload("Assignments.Employee").
		Offset(offset).Limit(limit).
		Order("date DESC NULLS LAST, created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}

func (r *recordRepo) ListByScope(ctx context.Context, scope model.Scope) ([]model.ProductionRecord, error) {
	var recs []model.ProductionRecord
	err := r.db.WithContext(ctx).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, assignment_id ASC")
		}).
		Preload("Assignments.Employee").
		Where("date = ? AND shift = ?", scope.DateString(), scope.Shift).
		Order("created_at ASC, record_id ASC").
		Find(&recs).Error
	return recs, err
}

func (r *recordRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.ProductionRecord, error) {
	var recs []model.ProductionRecord
	err := r.db.WithContext(ctx).
		Preload("Assignments").Preload("Assignments.Employee").
		Where("date BETWEEN ? AND ?", from.Format(model.DateLayout), to.Format(model.DateLayout)).
		Order("date ASC, shift ASC, created_at ASC").
		Find(&recs).Error
	return recs, err
}

func (r *recordRepo) ListScopes(ctx context.Context, from, to time.Time) ([]model.Scope, error) {
	var rows []struct {
		Date  time.Time
		Shift string
	}
	err := r.db.WithContext(ctx).
		Model(&model.ProductionRecord{}).
		Distinct("date", "shift").
		Where("date BETWEEN ? AND ?", from.Format(model.DateLayout), to.Format(model.DateLayout)).
		Order("date ASC, shift ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scopes := make([]model.Scope, 0, len(rows))
	for _, row := range rows {
		scopes = append(scopes, model.NewScope(row.Date, row.Shift))
	}
	return scopes, nil
}

func (r *recordRepo) ListDeleted(ctx context.Context, offset, limit int) ([]model.ProductionRecord, int64, error) {
	var recs []model.ProductionRecord
	var total int64

	db := r.db.WithContext(ctx).Unscoped().
		Model(&model.ProductionRecord{}).
		Where("deleted_at IS NOT NULL")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("deleted_at DESC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}

func (r *recordRepo) Update(ctx context.Context, rec *model.ProductionRecord) error {
	oldVersion := rec.Version
	result := r.db.WithContext(ctx).
		Model(&model.ProductionRecord{}).
		Where("record_id = ? AND version = ?", rec.RecordID, oldVersion).
		Updates(map[string]interface{}{
			"date":       rec.Date,
			"shift":      rec.Shift,
			"status":     rec.Status,
			"bin_no":     rec.BinNo,
			"model":      rec.Model,
			"chassis_no": rec.ChassisNo,
			"start_time": rec.StartTime,
			"end_time":   rec.EndTime,
			"remarks":    rec.Remarks,
			"updated_by": rec.UpdatedBy,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rec.Version = oldVersion + 1
	return nil
}

func (r *recordRepo) UpdateRoleCounts(ctx context.Context, recordID string, counts model.RoleCounts) error {
	result := r.db.WithContext(ctx).
		Model(&model.ProductionRecord{}).
		Where("record_id = ?", recordID).
		Updates(map[string]interface{}{
			"electrician": counts.Electrician,
			"fitter":      counts.Fitter,
			"painter":     counts.Painter,
			"helper":      counts.Helper,
		})
	if result.Error != nil {
		return pkgerrors.ClassifyPG(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *recordRepo) SoftDelete(ctx context.Context, id, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.ProductionRecord{}).
		Where("record_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"deleted_by": deletedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recordRepo) Restore(ctx context.Context, id, restoredBy string) error {
	result := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.ProductionRecord{}).
		Where("record_id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": nil,
			"deleted_by": nil,
			"updated_by": restoredBy,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recordRepo) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Unscoped().
			Model(&model.ProductionRecord{}).
			Select("record_id").
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff)

		if err := tx.Where("record_id IN (?)", expired).
			Delete(&model.Assignment{}).Error; err != nil {
			return err
		}

		result := tx.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(&model.ProductionRecord{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	return purged, err
}
