package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/internal/dto"
	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
)

// ── 员工模块业务错误 ──

var ErrInvalidEmployeeRole = errors.New("工种无效")

// EmployeeService 员工目录业务接口
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	Deactivate(ctx context.Context, id, callerID string) error
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	if !model.IsValidEmployeeRole(req.Role) {
		return nil, ErrInvalidEmployeeRole
	}

	emp := &model.Employee{
		Name:     req.Name,
		Role:     req.Role,
		IsActive: true,
	}
	emp.CreatedBy = &callerID
	emp.UpdatedBy = &callerID

	if err := s.repo.Employee.Create(ctx, emp); err != nil {
		s.logger.Error("创建员工失败", zap.String("role", req.Role), zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工已创建", zap.String("code", emp.Code), zap.String("caller", callerID))
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

func (s *employeeService) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	emp, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	emps, total, err := s.repo.Employee.List(ctx, repository.EmployeeFilter{
		Role:     req.Role,
		IsActive: req.IsActive,
		Keyword:  req.Keyword,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.EmployeeResponse, 0, len(emps))
	for i := range emps {
		list = append(list, toEmployeeResponse(&emps[i]))
	}
	return list, total, nil
}

// Update 只允许修改姓名与在职状态
func (s *employeeService) Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	emp, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		emp.Name = *req.Name
	}
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}
	emp.UpdatedBy = &callerID

	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("更新员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toEmployeeResponse(emp)
	return &resp, nil
}

// Deactivate 停用员工；已有分配保持不变
func (s *employeeService) Deactivate(ctx context.Context, id, callerID string) error {
	inactive := false
	_, err := s.Update(ctx, id, &dto.UpdateEmployeeRequest{IsActive: &inactive}, callerID)
	return err
}

func (s *employeeService) get(ctx context.Context, id string) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return emp, nil
}
