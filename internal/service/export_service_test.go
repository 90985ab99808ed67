package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
)

func TestExportRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.store.addEmployee("Asha", model.RoleElectrician)
	r1 := env.store.addRecord(testDate, model.ShiftDay)
	r2 := env.store.addRecord(testDate, model.ShiftDay)
	env.store.assign(r1.RecordID, a.EmployeeID)
	env.store.assign(r2.RecordID, a.EmployeeID)
	if _, err := env.svc.Reconcile.Reconcile(ctx, mustScope(t, testDate, model.ShiftDay)); err != nil {
		t.Fatalf("重算失败: %v", err)
	}

	buf, filename, err := env.svc.Export.ExportRecords(ctx, testDate, otherDate)
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if filename != "production_2024-01-05_2024-01-06.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(recordSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("读取记录表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望表头 + 2 行，实际 %d 行", len(rows))
	}
	if rows[1][0] != testDate || rows[1][8] != "0.5" {
		t.Errorf("记录行错误: %v", rows[1])
	}

	summary, err := f.GetRows(summarySheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("读取汇总表失败: %v", err)
	}
	if len(summary) != 2 || summary[1][3] != "1" {
		t.Errorf("汇总行错误: %v", summary)
	}
}

func TestExportRecords_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, _, err := env.svc.Export.ExportRecords(ctx, otherDate, testDate); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际 %v", err)
	}
	if _, _, err := env.svc.Export.ExportRecords(ctx, "2024-01-01", "2024-06-01"); !errors.Is(err, ErrExportRangeTooLarge) {
		t.Errorf("期望 ErrExportRangeTooLarge，实际 %v", err)
	}
	if _, _, err := env.svc.Export.ExportRecords(ctx, testDate, otherDate); !errors.Is(err, ErrExportNoRecords) {
		t.Errorf("期望 ErrExportNoRecords，实际 %v", err)
	}
}
