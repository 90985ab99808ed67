package model

import (
	"fmt"
	"strings"
	"time"
)

// 班次标签
const (
	ShiftDay   = "Day Shift"
	ShiftNight = "Night Shift"
)

// DateLayout 班次日期格式（ISO 日历日）
const DateLayout = "2006-01-02"

// IsValidShift 是否为两个规范班次标签之一
func IsValidShift(shift string) bool {
	return shift == ShiftDay || shift == ShiftNight
}

// Scope 一个班次：(日期, 班次)
type Scope struct {
	Date  time.Time
	Shift string
}

// ParseScope 解析 ISO 日期与班次标签
func ParseScope(date, shift string) (Scope, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return Scope{}, fmt.Errorf("日期不能为空")
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return Scope{}, fmt.Errorf("日期格式错误 %q，应为 YYYY-MM-DD", date)
	}
	if !IsValidShift(shift) {
		return Scope{}, fmt.Errorf("班次无效 %q", shift)
	}
	return Scope{Date: d, Shift: shift}, nil
}

// NewScope 以日期的日历日构造班次
func NewScope(date time.Time, shift string) Scope {
	return Scope{
		Date:  time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Shift: shift,
	}
}

// DateString ISO 日期
func (s Scope) DateString() string {
	return s.Date.Format(DateLayout)
}

// Key 班次锁与日志使用的键
func (s Scope) Key() string {
	return s.DateString() + "|" + s.Shift
}

func (s Scope) String() string {
	return s.DateString() + " " + s.Shift
}

// Equal 同一日历日且同一班次
func (s Scope) Equal(o Scope) bool {
	return s.Shift == o.Shift && s.DateString() == o.DateString()
}

// ScopeLock 班次锁行 — 对应 scope_locks
type ScopeLock struct {
	ScopeDate time.Time `gorm:"type:date;primaryKey"`
	Shift     string    `gorm:"type:varchar(20);primaryKey"`
	LockedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (ScopeLock) TableName() string { return "scope_locks" }
