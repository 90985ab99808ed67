package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/heyyrintu/vbcl-form-sub001/config"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/jwt"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/metrics"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/scopelock"
)

const (
	testDate  = "2024-01-05"
	otherDate = "2024-01-06"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-32-bytes-long!!!",
			AccessTokenTTL: 15 * time.Minute,
		},
		Reconcile: config.ReconcileConfig{
			LockBackend:   "memory",
			LockTimeout:   time.Second,
			DBLockTimeout: time.Second,
			MaxAttempts:   2,
			Parallelism:   2,
		},
		Retention: config.RetentionConfig{
			Enabled:  true,
			Schedule: "15 2 * * *",
			Days:     7,
		},
	}
}

type testEnv struct {
	store *memStore
	svc   *Service
	cfg   *config.Config
}

// newTestEnv 以内存存储与内存班次锁组装完整 Service
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	store := newMemStore()
	repo := newMockRepository(store)
	m := metrics.NewNop()
	locker := scopelock.NewMemoryLocker(cfg.Reconcile.LockTimeout, m)
	svc := NewService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, locker, m, zap.NewNop())
	return &testEnv{store: store, svc: svc, cfg: cfg}
}
