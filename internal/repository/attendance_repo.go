package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// AttendanceFilter 考勤查询条件
type AttendanceFilter struct {
	Date       *time.Time
	Shift      string
	EmployeeID string
}

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	// Upsert 按 (employee_id, date, shift) 新建或覆盖
	Upsert(ctx context.Context, att *model.Attendance) error
	List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Upsert(ctx context.Context, att *model.Attendance) error {
	err := r.db.WithContext(ctx).
		Omit("Employee").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "date"}, {Name: "shift"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "remarks", "updated_by", "updated_at"}),
		}).
		Create(att).Error
	return pkgerrors.ClassifyPG(err)
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error) {
	var rows []model.Attendance
	db := r.db.WithContext(ctx).Preload("Employee")
	if filter.Date != nil {
		db = db.Where("date = ?", filter.Date.Format(model.DateLayout))
	}
	if filter.Shift != "" {
		db = db.Where("shift = ?", filter.Shift)
	}
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	err := db.Order("date DESC, shift ASC").Find(&rows).Error
	return rows, err
}
