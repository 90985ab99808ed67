package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/config"
	"github.com/heyyrintu/vbcl-form-sub001/internal/api/handler"
	"github.com/heyyrintu/vbcl-form-sub001/internal/api/middleware"
	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/jwt"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/redis"
)

// maxBodyBytes 请求体上限：记录与分配请求都很小
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不启用 Token 黑名单与登录限流；reg 为 nil 时不暴露指标
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, reg *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		checker = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	if reg != nil && cfg.Metrics.Enabled {
		httpMetrics, err := middleware.NewHTTPMetrics(reg, "dlpl")
		if err != nil {
			logger.Warn("注册 HTTP 指标失败", zap.Error(err))
		} else {
			r.Use(httpMetrics.Handler())
		}
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, time.Minute), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块（仅管理员）
			users := authorized.Group("/users", middleware.RoleAuth(model.UserRoleAdmin))
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 员工模块
			employees := authorized.Group("/employees")
			{
				employees.GET("", h.Employee.ListEmployees)
				employees.GET("/:id", h.Employee.GetEmployee)
				employees.POST("", middleware.RoleAuth(model.UserRoleAdmin), h.Employee.CreateEmployee)
				employees.PUT("/:id", middleware.RoleAuth(model.UserRoleAdmin), h.Employee.UpdateEmployee)
				employees.DELETE("/:id", middleware.RoleAuth(model.UserRoleAdmin), h.Employee.DeactivateEmployee)
			}

			// 生产记录模块
			records := authorized.Group("/records")
			{
				records.GET("", h.Record.ListRecords)
				records.GET("/export", h.Record.ExportRecords)
				records.GET("/deleted", middleware.RoleAuth(model.UserRoleAdmin), h.Record.ListDeletedRecords)
				records.GET("/:id", h.Record.GetRecord)
				records.POST("", h.Record.CreateRecord)
				records.PUT("/:id", h.Record.UpdateRecord)
				records.DELETE("/:id", h.Record.DeleteRecord)
				records.POST("/:id/restore", middleware.RoleAuth(model.UserRoleAdmin), h.Record.RestoreRecord)
				records.PUT("/:id/employees", h.Record.AssignEmployees)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.GET("", h.Attendance.ListAttendance)
				attendance.POST("", h.Attendance.MarkAttendance)
			}

			// 分摊重算（仅管理员，用于修复历史数据）
			reconcile := authorized.Group("/reconcile", middleware.RoleAuth(model.UserRoleAdmin))
			{
				reconcile.POST("", h.Reconcile.ReconcileScope)
				reconcile.POST("/range", h.Reconcile.ReconcileRange)
			}
		}
	}

	return r
}
