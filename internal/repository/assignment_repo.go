package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// AssignmentRepository 员工-记录分配存储
type AssignmentRepository interface {
	// ReplaceAssignments 删除记录的全部分配后按 employeeIDs 重建，初始 split_count=1。
	// 记录或员工不存在时返回包装 ErrNotFound 的错误。
	ReplaceAssignments(ctx context.Context, recordID string, employeeIDs []string) error
	// ListByScope 班次内未删除记录的全部分配（含员工）
	ListByScope(ctx context.Context, scope model.Scope) ([]model.Assignment, error)
	ListByRecord(ctx context.Context, recordID string) ([]model.Assignment, error)
	SetSplitCount(ctx context.Context, assignmentID string, value float64) error
	// SetSplitCountBatch 将一组分配写为同一个值，返回实际更新行数
	SetSplitCountBatch(ctx context.Context, assignmentIDs []string, value float64) (int64, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) ReplaceAssignments(ctx context.Context, recordID string, employeeIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", recordID).
			Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if len(employeeIDs) == 0 {
			return nil
		}

		rows := make([]model.Assignment, 0, len(employeeIDs))
		for _, eid := range employeeIDs {
			rows = append(rows, model.Assignment{
				RecordID:   recordID,
				EmployeeID: eid,
				SplitCount: 1,
			})
		}
		return tx.Omit("Employee").Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("替换记录 %s 的分配失败: %w", recordID, pkgerrors.ClassifyPG(err))
	}
	return nil
}

func (r *assignmentRepo) ListByScope(ctx context.Context, scope model.Scope) ([]model.Assignment, error) {
	var rows []model.Assignment
	err := r.db.WithContext(ctx).
		Joins("JOIN production_records pr ON pr.record_id = assignments.record_id").
		Where("pr.date = ? AND pr.shift = ? AND pr.deleted_at IS NULL", scope.DateString(), scope.Shift).
		Preload("Employee").
		Order("assignments.record_id ASC, assignments.created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *assignmentRepo) ListByRecord(ctx context.Context, recordID string) ([]model.Assignment, error) {
	var rows []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("record_id = ?", recordID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *assignmentRepo) SetSplitCount(ctx context.Context, assignmentID string, value float64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", assignmentID).
		Update("split_count", value)
	if result.Error != nil {
		return pkgerrors.ClassifyPG(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 分配 %s", pkgerrors.ErrNotFound, assignmentID)
	}
	return nil
}

func (r *assignmentRepo) SetSplitCountBatch(ctx context.Context, assignmentIDs []string, value float64) (int64, error) {
	if len(assignmentIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id IN ?", assignmentIDs).
		Update("split_count", value)
	if result.Error != nil {
		return 0, pkgerrors.ClassifyPG(result.Error)
	}
	return result.RowsAffected, nil
}
