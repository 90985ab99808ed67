package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/heyyrintu/vbcl-form-sub001/internal/dto"
	"github.com/heyyrintu/vbcl-form-sub001/internal/service"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RecordHandler 生产记录、员工分配与导出
type RecordHandler struct {
	recordSvc     service.RecordService
	assignmentSvc service.AssignmentService
	exportSvc     service.ExportService
}

// NewRecordHandler 创建 RecordHandler
func NewRecordHandler(recordSvc service.RecordService, assignmentSvc service.AssignmentService, exportSvc service.ExportService) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc, assignmentSvc: assignmentSvc, exportSvc: exportSvc}
}

// ════════════════════════════════════════════════════════════
// 记录 CRUD
// ════════════════════════════════════════════════════════════

// ListRecords 生产记录列表
// GET /api/v1/records?from=&to=&shift=&status=
func (h *RecordHandler) ListRecords(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.recordSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetRecord 记录详情（含员工与分摊）
// GET /api/v1/records/:id
func (h *RecordHandler) GetRecord(c *gin.Context) {
	recordID, ok := pathID(c, 14001, "生产记录不存在")
	if !ok {
		return
	}
	rec, err := h.recordSvc.GetByID(c.Request.Context(), recordID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, rec)
}

// CreateRecord 创建记录；带员工时同时重算所在班次
// POST /api/v1/records
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req dto.CreateRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.recordSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.Created(c, resp)
}

// UpdateRecord 更新记录（乐观锁）；日期或班次变化时重算新旧两个班次
// PUT /api/v1/records/:id
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	recordID, ok := pathID(c, 14001, "生产记录不存在")
	if !ok {
		return
	}
	var req dto.UpdateRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.recordSvc.Update(c.Request.Context(), recordID, &req, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, resp)
}

// DeleteRecord 软删除并重算所在班次
// DELETE /api/v1/records/:id
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	recordID, ok := pathID(c, 14001, "生产记录不存在")
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.recordSvc.Delete(c.Request.Context(), recordID, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, resp)
}

// ListDeletedRecords 回收站
// GET /api/v1/records/deleted
func (h *RecordHandler) ListDeletedRecords(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.recordSvc.ListDeleted(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// RestoreRecord 恢复软删除记录
// POST /api/v1/records/:id/restore
func (h *RecordHandler) RestoreRecord(c *gin.Context) {
	recordID, ok := pathID(c, 14001, "生产记录不存在")
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.recordSvc.Restore(c.Request.Context(), recordID, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, resp)
}

// ════════════════════════════════════════════════════════════
// 员工分配
// ════════════════════════════════════════════════════════════

// AssignEmployees 替换记录的员工列表，并重算该班次全部记录
// PUT /api/v1/records/:id/employees
func (h *RecordHandler) AssignEmployees(c *gin.Context) {
	recordID, ok := pathID(c, 14001, "生产记录不存在")
	if !ok {
		return
	}
	var req dto.AssignEmployeesRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	res, err := h.assignmentSvc.Assign(c.Request.Context(), recordID, req.EmployeeIDs, req.Date, req.Shift, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, service.ToScopeChangeResponse(res, recordID))
}

// ════════════════════════════════════════════════════════════
// 导出
// ════════════════════════════════════════════════════════════

// ExportRecords 导出区间内记录为 xlsx
// GET /api/v1/records/export?from=2024-01-01&to=2024-01-31
func (h *RecordHandler) ExportRecords(c *gin.Context) {
	var req dto.ExportRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from 与 to 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportRecords(c.Request.Context(), req.From, req.To)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ── 错误映射 ──

func (h *RecordHandler) handleRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 14001, "生产记录不存在")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.ErrorWithDetails(c, http.StatusNotFound, 13001, "员工不存在", err.Error())
	case errors.Is(err, service.ErrRecordScopeMismatch):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14002, "记录不属于该日期班次", err.Error())
	case errors.Is(err, service.ErrRecordWithoutScope), errors.Is(err, service.ErrEmployeesWithoutScope):
		response.BadRequest(c, 14003, "记录未设置日期，无法分配员工")
	case errors.Is(err, service.ErrInvalidRecordStatus):
		response.BadRequest(c, 14004, "记录状态无效")
	case errors.Is(err, service.ErrRecordNotDeleted):
		response.BadRequest(c, 14005, "记录未被删除")
	case errors.Is(err, service.ErrRestoreWindowExpired):
		response.BadRequest(c, 14006, "记录已超过可恢复期限")
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 14001, "生产记录不存在")
	default:
		if !handleScopeError(c, err) {
			response.InternalError(c)
		}
	}
}

func (h *RecordHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, 16101, "所选区间内没有生产记录")
	case errors.Is(err, service.ErrExportRangeTooLarge):
		response.BadRequest(c, 16102, "导出区间不能超过 92 天")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 16103, "日期区间无效")
	default:
		response.InternalError(c)
	}
}
