package dto

import "time"

// ── 生产记录模块 DTO ──

// CreateRecordRequest 创建生产记录请求
// EmployeeIDs 非空时须提供日期与班次，创建后立即重算该班次
type CreateRecordRequest struct {
	Date        string     `json:"date"`
	Shift       string     `json:"shift"        binding:"required"`
	Status      string     `json:"status"       binding:"omitempty,oneof=PENDING COMPLETED"`
	BinNo       string     `json:"bin_no"       binding:"max=50"`
	Model       string     `json:"model"        binding:"max=100"`
	ChassisNo   string     `json:"chassis_no"   binding:"max=100"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Remarks     string     `json:"remarks"      binding:"max=1000"`
	EmployeeIDs []string   `json:"employee_ids" binding:"omitempty,dive,uuid"`
}

// UpdateRecordRequest 更新生产记录请求（乐观锁）
// 工种人数只由重算写入，不接受直接修改
type UpdateRecordRequest struct {
	Date      *string    `json:"date"`
	Shift     *string    `json:"shift"`
	Status    *string    `json:"status"     binding:"omitempty,oneof=PENDING COMPLETED"`
	BinNo     *string    `json:"bin_no"     binding:"omitempty,max=50"`
	Model     *string    `json:"model"      binding:"omitempty,max=100"`
	ChassisNo *string    `json:"chassis_no" binding:"omitempty,max=100"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Remarks   *string    `json:"remarks"    binding:"omitempty,max=1000"`
	Version   int        `json:"version"    binding:"required,min=1"`
}

// RecordListRequest 生产记录列表查询参数
type RecordListRequest struct {
	PaginationRequest
	From   string `form:"from"`
	To     string `form:"to"`
	Shift  string `form:"shift"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
}

// AssignEmployeesRequest 替换记录的员工列表
type AssignEmployeesRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"omitempty,dive,uuid"`
	Date        string   `json:"date"         binding:"required"`
	Shift       string   `json:"shift"        binding:"required"`
}

// ExportRecordsRequest 导出区间
type ExportRecordsRequest struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to"   binding:"required"`
}

// AssignmentResponse 记录上的一名员工及其分摊
type AssignmentResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeCode string  `json:"employee_code,omitempty"`
	Name         string  `json:"name,omitempty"`
	Role         string  `json:"role,omitempty"`
	SplitCount   float64 `json:"split_count"`
}

// RecordResponse 生产记录
type RecordResponse struct {
	ID          string               `json:"id"`
	Date        *string              `json:"date"`
	Shift       string               `json:"shift"`
	Status      string               `json:"status"`
	BinNo       string               `json:"bin_no"`
	Model       string               `json:"model"`
	ChassisNo   string               `json:"chassis_no"`
	StartTime   *string              `json:"start_time,omitempty"`
	EndTime     *string              `json:"end_time,omitempty"`
	Remarks     string               `json:"remarks"`
	Electrician float64              `json:"electrician"`
	Fitter      float64              `json:"fitter"`
	Painter     float64              `json:"painter"`
	Helper      float64              `json:"helper"`
	Employees   []AssignmentResponse `json:"employees"`
	Version     int                  `json:"version"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
	DeletedAt   *string              `json:"deleted_at,omitempty"`
}

// ScopeChangeResponse 会触发重算的写操作响应：
// Record 为本次操作的记录，ScopeRecords 为同班次内全部记录（可能被连带改写）
type ScopeChangeResponse struct {
	Record             *RecordResponse  `json:"record,omitempty"`
	Date               string           `json:"date,omitempty"`
	Shift              string           `json:"shift,omitempty"`
	ScopeRecords       []RecordResponse `json:"scope_records"`
	AssignmentsWritten int              `json:"assignments_written"`
	RecordsWritten     int              `json:"records_written"`
}
