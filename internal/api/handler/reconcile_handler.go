package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heyyrintu/vbcl-form-sub001/internal/dto"
	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/service"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/response"
)

// ReconcileHandler 手动触发分摊重算（管理员）
type ReconcileHandler struct {
	reconcileSvc service.ReconcileService
}

// NewReconcileHandler 创建 ReconcileHandler
func NewReconcileHandler(reconcileSvc service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{reconcileSvc: reconcileSvc}
}

// ReconcileScope 重算单个班次，返回班次内全部记录
// POST /api/v1/reconcile
func (h *ReconcileHandler) ReconcileScope(c *gin.Context) {
	var req dto.ReconcileRequest
	if !bindJSON(c, &req) {
		return
	}
	scope, err := model.ParseScope(req.Date, req.Shift)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 15001, "日期或班次无效", err.Error())
		return
	}

	res, err := h.reconcileSvc.Reconcile(c.Request.Context(), scope)
	if err != nil {
		if !handleScopeError(c, err) {
			response.InternalError(c)
		}
		return
	}
	response.OK(c, service.ToScopeChangeResponse(res, ""))
}

// ReconcileRange 重算区间内所有存在记录的班次
// POST /api/v1/reconcile/range
func (h *ReconcileHandler) ReconcileRange(c *gin.Context) {
	var req dto.ReconcileRangeRequest
	if !bindJSON(c, &req) {
		return
	}
	from, err1 := time.Parse(model.DateLayout, req.From)
	to, err2 := time.Parse(model.DateLayout, req.To)
	if err1 != nil || err2 != nil {
		response.BadRequest(c, 15001, "日期格式错误，应为 YYYY-MM-DD")
		return
	}

	results, err := h.reconcileSvc.ReconcileRange(c.Request.Context(), from, to)
	if err != nil {
		if !handleScopeError(c, err) {
			response.InternalError(c)
		}
		return
	}

	resp := dto.ReconcileRangeResponse{
		Scopes:  len(results),
		Results: make([]dto.ReconcileSummary, 0, len(results)),
	}
	for i := range results {
		resp.Results = append(resp.Results, service.ToReconcileSummary(&results[i]))
	}
	response.OK(c, resp)
}
