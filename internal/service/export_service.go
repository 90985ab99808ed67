package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	"github.com/heyyrintu/vbcl-form-sub001/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords     = errors.New("所选区间内没有生产记录")
	ErrExportRangeTooLarge = errors.New("导出区间不能超过 92 天")
	ErrExportGenerateFail  = errors.New("生成 Excel 文件失败")
)

const maxExportDays = 92

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入。
// 工作簿包含两张表：逐条生产记录、按班次汇总的工种人数。
type ExportService interface {
	ExportRecords(ctx context.Context, from, to string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRecords — 导出区间内生产记录为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportRecords(ctx context.Context, fromStr, toStr string) (*bytes.Buffer, string, error) {
	from, err := time.Parse(model.DateLayout, fromStr)
	if err != nil {
		return nil, "", ErrInvalidDateRange
	}
	to, err := time.Parse(model.DateLayout, toStr)
	if err != nil || to.Before(from) {
		return nil, "", ErrInvalidDateRange
	}
	if to.Sub(from) > maxExportDays*24*time.Hour {
		return nil, "", ErrExportRangeTooLarge
	}

	records, err := s.repo.Record.ListByDateRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询导出记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	countStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00

	if err := writeRecordSheet(f, records, headerStyle, countStyle); err != nil {
		s.logger.Error("写入记录表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := writeSummarySheet(f, records, headerStyle, countStyle); err != nil {
		s.logger.Error("写入汇总表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("production_%s_%s.xlsx", fromStr, toStr)
	return buf, filename, nil
}

const recordSheet = "Records"

var recordHeaders = []string{
	"Date", "Shift", "Status", "Bin No", "Model", "Chassis No", "Start", "End",
	"Electrician", "Fitter", "Painter", "Helper", "Total", "Employees", "Remarks",
}

func writeRecordSheet(f *excelize.File, records []model.ProductionRecord, headerStyle, countStyle int) error {
	idx, err := f.NewSheet(recordSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	for i, h := range recordHeaders {
		f.SetCellValue(recordSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(recordSheet, "A1", cell(colName(len(recordHeaders)-1), 1), headerStyle)
	f.SetColWidth(recordSheet, "A", "B", 12)
	f.SetColWidth(recordSheet, "D", "F", 16)
	f.SetColWidth(recordSheet, "N", "N", 40)

	row := 2
	for i := range records {
		r := &records[i]
		values := []interface{}{
			dateCell(r.Date), r.Shift, r.Status, r.BinNo, r.Model, r.ChassisNo,
			timeCell(r.StartTime), timeCell(r.EndTime),
			r.Electrician.InexactFloat64(), r.Fitter.InexactFloat64(),
			r.Painter.InexactFloat64(), r.Helper.InexactFloat64(),
			r.RoleCounts.Total().InexactFloat64(),
			employeeNames(r.Assignments), r.Remarks,
		}
		for c, v := range values {
			f.SetCellValue(recordSheet, cell(colName(c), row), v)
		}
		row++
	}
	if row > 2 {
		f.SetCellStyle(recordSheet, "I2", cell("M", row-1), countStyle)
	}
	return nil
}

const summarySheet = "Shift Summary"

func writeSummarySheet(f *excelize.File, records []model.ProductionRecord, headerStyle, countStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	headers := []string{"Date", "Shift", "Records", "Electrician", "Fitter", "Painter", "Helper", "Total"}
	for i, h := range headers {
		f.SetCellValue(summarySheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(summarySheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	type summary struct {
		scope  model.Scope
		count  int
		counts model.RoleCounts
	}
	var order []string
	byScope := make(map[string]*summary)
	for i := range records {
		sc, ok := records[i].Scope()
		if !ok {
			continue
		}
		sum, exists := byScope[sc.Key()]
		if !exists {
			sum = &summary{scope: sc}
			byScope[sc.Key()] = sum
			order = append(order, sc.Key())
		}
		sum.count++
		for _, role := range model.EmployeeRoles {
			sum.counts.Add(role, records[i].RoleCounts.Get(role))
		}
	}

	row := 2
	for _, key := range order {
		sum := byScope[key]
		values := []interface{}{
			sum.scope.DateString(), sum.scope.Shift, sum.count,
			sum.counts.Electrician.InexactFloat64(), sum.counts.Fitter.InexactFloat64(),
			sum.counts.Painter.InexactFloat64(), sum.counts.Helper.InexactFloat64(),
			sum.counts.Total().Round(2).InexactFloat64(),
		}
		for c, v := range values {
			f.SetCellValue(summarySheet, cell(colName(c), row), v)
		}
		row++
	}
	if row > 2 {
		f.SetCellStyle(summarySheet, "D2", cell("H", row-1), countStyle)
	}
	return nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(model.DateLayout)
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// employeeNames "姓名 (编号 ×分摊)" 逗号分隔
func employeeNames(assignments []model.Assignment) string {
	parts := make([]string, 0, len(assignments))
	for _, a := range assignments {
		split := decimal.NewFromFloat(a.SplitCount).Round(2).String()
		if a.Employee == nil {
			parts = append(parts, fmt.Sprintf("%s ×%s", a.EmployeeID, split))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s ×%s)", a.Employee.Name, a.Employee.Code, split))
	}
	return strings.Join(parts, ", ")
}
