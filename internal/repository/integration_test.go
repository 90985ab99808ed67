//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
	"github.com/heyyrintu/vbcl-form-sub001/pkg/database"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

// testOperator 审计字段使用的固定操作人
const testOperator = "00000000-0000-0000-0000-0000000000aa"

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=dlpl password=dlpl_password dbname=dlpl_erp_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// uniqueScope 每个测试使用互不重叠的远期日期
func uniqueScope() model.Scope {
	base := time.Date(2090, 1, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Now().UnixNano() % 3000)
	return model.NewScope(base.AddDate(0, 0, offset), model.ShiftDay)
}

// setupScope 在 scope 内创建 n 条记录和一名电工
func setupScope(t *testing.T, scope model.Scope, n int) (records []*model.ProductionRecord, emp *model.Employee, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	emp = &model.Employee{Name: "测试电工", Role: model.RoleElectrician, IsActive: true}
	if err := repo.Employee.Create(ctx, emp); err != nil {
		t.Fatalf("创建员工失败: %v", err)
	}

	for i := 0; i < n; i++ {
		d := scope.Date
		rec := &model.ProductionRecord{
			Date:      &d,
			Shift:     scope.Shift,
			Status:    model.RecordStatusPending,
			ChassisNo: fmt.Sprintf("CH-%d-%d", time.Now().UnixNano(), i),
		}
		if err := repo.Record.Create(ctx, rec); err != nil {
			t.Fatalf("创建记录失败: %v", err)
		}
		records = append(records, rec)
	}

	cleanup = func() {
		for _, rec := range records {
			testDB.Unscoped().Where("record_id = ?", rec.RecordID).Delete(&model.ProductionRecord{})
		}
		testDB.Where("employee_id = ?", emp.EmployeeID).Delete(&model.Employee{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	scope := uniqueScope()
	records, emp, cleanup := setupScope(t, scope, 1)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Assignment.ReplaceAssignments(ctx, records[0].RecordID, []string{emp.EmployeeID}); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("期望返回 abort，got %v", err)
	}

	rows, err := repo.Assignment.ListByRecord(ctx, records[0].RecordID)
	if err != nil {
		t.Fatalf("查询分配失败: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("回滚后不应有分配，got %d", len(rows))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Assignment
// ═══════════════════════════════════════════════════════════

func TestAssignment_ReplaceAndBatchSplit(t *testing.T) {
	scope := uniqueScope()
	records, emp, cleanup := setupScope(t, scope, 2)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	for _, rec := range records {
		if err := repo.Assignment.ReplaceAssignments(ctx, rec.RecordID, []string{emp.EmployeeID}); err != nil {
			t.Fatalf("ReplaceAssignments 失败: %v", err)
		}
	}

	rows, err := repo.Assignment.ListByScope(ctx, scope)
	if err != nil {
		t.Fatalf("ListByScope 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 条分配，got %d", len(rows))
	}
	if rows[0].Employee == nil || rows[0].Employee.Role != model.RoleElectrician {
		t.Error("应预加载员工")
	}

	ids := []string{rows[0].AssignmentID, rows[1].AssignmentID}
	n, err := repo.Assignment.SetSplitCountBatch(ctx, ids, 0.5)
	if err != nil || n != 2 {
		t.Fatalf("SetSplitCountBatch: n=%d err=%v", n, err)
	}

	rows, _ = repo.Assignment.ListByScope(ctx, scope)
	for _, a := range rows {
		if a.SplitCount != 0.5 {
			t.Errorf("期望 0.5，got %v", a.SplitCount)
		}
	}
}

func TestAssignment_UnknownEmployee(t *testing.T) {
	scope := uniqueScope()
	records, _, cleanup := setupScope(t, scope, 1)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	err := repo.Assignment.ReplaceAssignments(context.Background(), records[0].RecordID,
		[]string{"00000000-0000-0000-0000-000000000000"})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("外键不存在应映射为 ErrNotFound，got %v", err)
	}
}

func TestAssignment_SplitCountCheck(t *testing.T) {
	scope := uniqueScope()
	records, emp, cleanup := setupScope(t, scope, 1)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	if err := repo.Assignment.ReplaceAssignments(ctx, records[0].RecordID, []string{emp.EmployeeID}); err != nil {
		t.Fatalf("ReplaceAssignments 失败: %v", err)
	}
	rows, _ := repo.Assignment.ListByRecord(ctx, records[0].RecordID)

	if err := repo.Assignment.SetSplitCount(ctx, rows[0].AssignmentID, 0); err == nil {
		t.Error("split_count=0 应违反约束")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Record
// ═══════════════════════════════════════════════════════════

func TestRecord_SoftDeleteExcludedFromScope(t *testing.T) {
	scope := uniqueScope()
	records, _, cleanup := setupScope(t, scope, 2)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Record.SoftDelete(ctx, records[0].RecordID, testOperator); err != nil {
		t.Fatalf("SoftDelete 失败: %v", err)
	}
	list, err := repo.Record.ListByScope(ctx, scope)
	if err != nil {
		t.Fatalf("ListByScope 失败: %v", err)
	}
	if len(list) != 1 || list[0].RecordID != records[1].RecordID {
		t.Fatalf("已删除记录不应出现在班次内: %+v", list)
	}

	if err := repo.Record.Restore(ctx, records[0].RecordID, testOperator); err != nil {
		t.Fatalf("Restore 失败: %v", err)
	}
	list, _ = repo.Record.ListByScope(ctx, scope)
	if len(list) != 2 {
		t.Fatalf("恢复后应有 2 条，got %d", len(list))
	}
}

func TestRecord_UpdateOptimisticLock(t *testing.T) {
	scope := uniqueScope()
	records, _, cleanup := setupScope(t, scope, 1)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	stale := *records[0]
	rec := records[0]
	rec.Remarks = "first"
	if err := repo.Record.Update(ctx, rec); err != nil {
		t.Fatalf("首次更新失败: %v", err)
	}

	stale.Remarks = "second"
	if err := repo.Record.Update(ctx, &stale); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("旧版本更新应返回 ErrOptimisticLock，got %v", err)
	}
}

func TestRecord_PurgeDeletedBefore(t *testing.T) {
	scope := uniqueScope()
	records, emp, cleanup := setupScope(t, scope, 1)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Assignment.ReplaceAssignments(ctx, records[0].RecordID, []string{emp.EmployeeID}); err != nil {
		t.Fatalf("ReplaceAssignments 失败: %v", err)
	}
	if err := repo.Record.SoftDelete(ctx, records[0].RecordID, testOperator); err != nil {
		t.Fatalf("SoftDelete 失败: %v", err)
	}

	n, err := repo.Record.PurgeDeletedBefore(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("PurgeDeletedBefore 失败: %v", err)
	}
	if n < 1 {
		t.Fatalf("期望至少清理 1 条，got %d", n)
	}
	if _, err := repo.Record.GetByIDUnscoped(ctx, records[0].RecordID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("清理后记录应不存在，got %v", err)
	}
	rows, _ := repo.Assignment.ListByRecord(ctx, records[0].RecordID)
	if len(rows) != 0 {
		t.Fatalf("清理后分配应一并删除，got %d", len(rows))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: ScopeLock
// ═══════════════════════════════════════════════════════════

func TestScopeLock_SecondTxTimesOut(t *testing.T) {
	scope := uniqueScope()
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	defer testDB.Where("scope_date = ? AND shift = ?", scope.DateString(), scope.Shift).Delete(&model.ScopeLock{})

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
			if err := tx.ScopeLock.Lock(ctx, scope, time.Second); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()

	select {
	case <-held:
	case err := <-done:
		t.Fatalf("首个事务加锁失败: %v", err)
	}

	err := repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.ScopeLock.Lock(ctx, scope, 100*time.Millisecond)
	})
	close(release)

	if !errors.Is(err, pkgerrors.ErrConcurrencyConflict) {
		t.Fatalf("第二个事务应因锁超时返回 ErrConcurrencyConflict，got %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("首个事务提交失败: %v", err)
	}
}
