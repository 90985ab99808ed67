package dto

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 登记考勤（同一员工同一班次重复提交视为覆盖）
type MarkAttendanceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Date       string `json:"date"        binding:"required"`
	Shift      string `json:"shift"       binding:"required"`
	Status     string `json:"status"      binding:"required,oneof=PRESENT ABSENT HALF_DAY LEAVE"`
	Remarks    string `json:"remarks"     binding:"max=500"`
}

// AttendanceListRequest 考勤查询参数
type AttendanceListRequest struct {
	Date       string `form:"date"`
	Shift      string `form:"shift"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
}

// AttendanceResponse 考勤记录
type AttendanceResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
	Role         string `json:"role,omitempty"`
	Date         string `json:"date"`
	Shift        string `json:"shift"`
	Status       string `json:"status"`
	Remarks      string `json:"remarks"`
}
