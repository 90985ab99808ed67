package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/heyyrintu/vbcl-form-sub001/internal/dto"
	"github.com/heyyrintu/vbcl-form-sub001/internal/service"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// MarkAttendance 登记考勤
// POST /api/v1/attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	att, err := h.attendanceSvc.Mark(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, att)
}

// ListAttendance 按日期、班次或员工查询
// GET /api/v1/attendance
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.attendanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	if handleScopeError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 13001, "员工不存在")
	case errors.Is(err, service.ErrInvalidAttendanceStatus):
		response.BadRequest(c, 17001, "考勤状态无效")
	default:
		response.InternalError(c)
	}
}
