package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/heyyrintu/vbcl-form-sub001/config"
	"github.com/heyyrintu/vbcl-form-sub001/internal/api/handler"
	"github.com/heyyrintu/vbcl-form-sub001/internal/api/router"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	"github.com/heyyrintu/vbcl-form-sub001/internal/service"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/database"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/jwt"
	applogger "github.com/heyyrintu/vbcl-form-sub001/pkg/logger"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/metrics"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/redis"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/scopelock"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("DLPL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("lock_backend", cfg.Reconcile.LockBackend),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与登录限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 指标
	var (
		reg       *prometheus.Registry
		collector metrics.Collector = metrics.NewNop()
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector = metrics.NewPrometheus(reg, "dlpl")
	}

	// 6. 班次锁
	var locker scopelock.Locker
	switch cfg.Reconcile.LockBackend {
	case "redis":
		if rdb == nil {
			logger.Fatal("lock_backend=redis 但 Redis 不可用")
		}
		locker = scopelock.NewRedisLocker(rdb, cfg.Reconcile.LockTTL, cfg.Reconcile.LockTimeout, logger, collector)
	default:
		locker = scopelock.NewMemoryLocker(cfg.Reconcile.LockTimeout, collector)
	}

	// 7. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 8. 依赖注入: Repository → Service → Handler
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, locker, collector, logger)
	h := handler.NewHandler(svc)

	// 9. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, reg, logger)

	// 10. 软删除记录定时清理
	var job *service.RetentionJob
	if cfg.Retention.Enabled {
		job, err = service.NewRetentionJob(cfg.Retention, svc.Retention, logger)
		if err != nil {
			logger.Fatal("初始化清理任务失败", zap.Error(err))
		}
		job.Start()
	}

	// 11. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 12. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if job != nil {
		job.Stop(ctx)
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
