package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// pathID 读取路径中的 :id；不是 UUID 时按资源不存在写入 404 并返回 false
func pathID(c *gin.Context, code int, message string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.NotFound(c, code, message)
		return "", false
	}
	return id, true
}

// tokenMeta 当前 Token 的 jti 与过期时间，供登出加入黑名单
func tokenMeta(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString("token_jti")
	exp, ok := c.Get("token_exp")
	if jti == "" || !ok {
		return "", time.Time{}, false
	}
	t, ok := exp.(time.Time)
	return jti, t, ok
}

// bindJSON 绑定请求体；超出 BodyLimit 时返回 413，其余绑定错误返回 400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return false
	}
	return true
}

// handleScopeError 班次写操作的公共错误映射。
// 返回 false 表示 err 不属于公共类别，由调用方继续处理。
func handleScopeError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, pkgerrors.ErrPartialReconciliation):
		response.ErrorWithDetails(c, http.StatusInternalServerError, 15003, "保存分配失败", "班次重算未完成，请重试")
	case errors.Is(err, pkgerrors.ErrConcurrencyConflict):
		c.Header("Retry-After", "1")
		response.Conflict(c, 15002, "该班次正在被其他请求修改，请稍后重试")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被修改，请刷新后重试")
	case errors.Is(err, pkgerrors.ErrInvalidScope):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15001, "日期或班次无效", err.Error())
	default:
		return false
	}
	return true
}
