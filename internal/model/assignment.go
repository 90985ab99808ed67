package model

import "time"

// Assignment 员工-记录分配表 — 对应 assignments
// (record_id, employee_id) 唯一；SplitCount ∈ (0, 1]
type Assignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RecordID     string    `gorm:"type:uuid;not null"                             json:"record_id"`
	EmployeeID   string    `gorm:"type:uuid;not null"                             json:"employee_id"`
	SplitCount   float64   `gorm:"type:double precision;not null;default:1"       json:"split_count"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }
