package model

import "time"

// 考勤状态
const (
	AttendancePresent = "PRESENT"
	AttendanceAbsent  = "ABSENT"
	AttendanceHalfDay = "HALF_DAY"
	AttendanceLeave   = "LEAVE"
)

// IsValidAttendanceStatus 考勤状态是否合法
func IsValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceHalfDay, AttendanceLeave:
		return true
	}
	return false
}

// Attendance 考勤表 — 对应 attendances，(employee_id, date, shift) 唯一
type Attendance struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmployeeID   string    `gorm:"type:uuid;not null"                             json:"employee_id"`
	Date         time.Time `gorm:"type:date;not null"                             json:"date"`
	Shift        string    `gorm:"type:varchar(20);not null"                      json:"shift"`
	Status       string    `gorm:"type:varchar(20);not null;default:'PRESENT'"    json:"status"`
	Remarks      string    `gorm:"type:text;not null;default:''"                  json:"remarks"`
	BaseModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }
