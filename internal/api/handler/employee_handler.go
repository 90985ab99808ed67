package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/heyyrintu/vbcl-form-sub001/internal/dto"
	"github.com/heyyrintu/vbcl-form-sub001/internal/service"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/response"
)

// EmployeeHandler 员工模块 HTTP 处理器
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// ListEmployees 员工列表
// GET /api/v1/employees?role=&is_active=&keyword=
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.employeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetEmployee 员工详情
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employeeID, ok := pathID(c, 13001, "员工不存在")
	if !ok {
		return
	}

	emp, err := h.employeeSvc.GetByID(c.Request.Context(), employeeID)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// CreateEmployee 新增员工，编号自动生成
// POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.Created(c, emp)
}

// UpdateEmployee 修改姓名或在职状态
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	employeeID, ok := pathID(c, 13001, "员工不存在")
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.Update(c.Request.Context(), employeeID, &req, callerID)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, emp)
}

// DeactivateEmployee 停用员工
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) DeactivateEmployee(c *gin.Context) {
	employeeID, ok := pathID(c, 13001, "员工不存在")
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.employeeSvc.Deactivate(c.Request.Context(), employeeID, callerID); err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 13001, "员工不存在")
	case errors.Is(err, service.ErrInvalidEmployeeRole):
		response.BadRequest(c, 13002, "工种无效")
	default:
		response.InternalError(c)
	}
}
