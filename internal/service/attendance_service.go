package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/internal/dto"
	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

var ErrInvalidAttendanceStatus = errors.New("考勤状态无效")

// AttendanceService 考勤业务接口。考勤与分摊重算相互独立。
type AttendanceService interface {
	Mark(ctx context.Context, req *dto.MarkAttendanceRequest, callerID string) (*dto.AttendanceResponse, error)
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

func (s *attendanceService) Mark(ctx context.Context, req *dto.MarkAttendanceRequest, callerID string) (*dto.AttendanceResponse, error) {
	scope, err := model.ParseScope(req.Date, req.Shift)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidScope, err.Error())
	}
	if !model.IsValidAttendanceStatus(req.Status) {
		return nil, ErrInvalidAttendanceStatus
	}

	emp, err := s.repo.Employee.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	att := &model.Attendance{
		EmployeeID: emp.EmployeeID,
		Date:       scope.Date,
		Shift:      scope.Shift,
		Status:     req.Status,
		Remarks:    req.Remarks,
	}
	att.CreatedBy = &callerID
	att.UpdatedBy = &callerID

	if err := s.repo.Attendance.Upsert(ctx, att); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("登记考勤失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}

	att.Employee = emp
	resp := toAttendanceResponse(att)
	return &resp, nil
}

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return nil, err
	}
	if req.Shift != "" && !model.IsValidShift(req.Shift) {
		return nil, fmt.Errorf("%w: 班次无效 %q", pkgerrors.ErrInvalidScope, req.Shift)
	}

	rows, err := s.repo.Attendance.List(ctx, repository.AttendanceFilter{
		Date:       date,
		Shift:      req.Shift,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		s.logger.Error("查询考勤失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.AttendanceResponse, 0, len(rows))
	for i := range rows {
		list = append(list, toAttendanceResponse(&rows[i]))
	}
	return list, nil
}
