package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 记录状态
const (
	RecordStatusPending   = "PENDING"
	RecordStatusCompleted = "COMPLETED"
)

// IsValidRecordStatus 状态是否合法
func IsValidRecordStatus(status string) bool {
	return status == RecordStatusPending || status == RecordStatusCompleted
}

// RoleCounts 记录上按工种汇总的分摊人数（保留两位小数）
type RoleCounts struct {
	Electrician decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"electrician"`
	Fitter      decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"fitter"`
	Painter     decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"painter"`
	Helper      decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"helper"`
}

// Add 将分摊值累加到对应工种，未知工种忽略
func (rc *RoleCounts) Add(role string, v decimal.Decimal) {
	switch role {
	case RoleElectrician:
		rc.Electrician = rc.Electrician.Add(v)
	case RoleFitter:
		rc.Fitter = rc.Fitter.Add(v)
	case RolePainter:
		rc.Painter = rc.Painter.Add(v)
	case RoleHelper:
		rc.Helper = rc.Helper.Add(v)
	}
}

// Get 按工种读取
func (rc RoleCounts) Get(role string) decimal.Decimal {
	switch role {
	case RoleElectrician:
		return rc.Electrician
	case RoleFitter:
		return rc.Fitter
	case RolePainter:
		return rc.Painter
	case RoleHelper:
		return rc.Helper
	}
	return decimal.Zero
}

// Round 四个字段统一保留两位小数（第三位四舍五入）
func (rc RoleCounts) Round() RoleCounts {
	return RoleCounts{
		Electrician: rc.Electrician.Round(2),
		Fitter:      rc.Fitter.Round(2),
		Painter:     rc.Painter.Round(2),
		Helper:      rc.Helper.Round(2),
	}
}

// Equal 按数值比较
func (rc RoleCounts) Equal(o RoleCounts) bool {
	return rc.Electrician.Equal(o.Electrician) &&
		rc.Fitter.Equal(o.Fitter) &&
		rc.Painter.Equal(o.Painter) &&
		rc.Helper.Equal(o.Helper)
}

// Total 四个字段之和
func (rc RoleCounts) Total() decimal.Decimal {
	return rc.Electrician.Add(rc.Fitter).Add(rc.Painter).Add(rc.Helper)
}

// ProductionRecord 生产记录表 — 对应 production_records
// RoleCounts 只由分摊重算写入
type ProductionRecord struct {
	RecordID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Date      *time.Time `gorm:"type:date"                                      json:"date"`
	Shift     string     `gorm:"type:varchar(20);not null"                      json:"shift"`
	Status    string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	BinNo     string     `gorm:"type:varchar(50);not null;default:''"           json:"bin_no"`
	Model     string     `gorm:"type:varchar(100);not null;default:''"          json:"model"`
	ChassisNo string     `gorm:"type:varchar(100);not null;default:''"          json:"chassis_no"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Remarks   string     `gorm:"type:text;not null;default:''"                  json:"remarks"`
	RoleCounts
	VersionedModel

	// 关联
	Assignments []Assignment `gorm:"foreignKey:RecordID;references:RecordID" json:"assignments,omitempty"`
}

// TableName 指定表名
func (ProductionRecord) TableName() string { return "production_records" }

// Scope 记录所属班次；日期为空时 ok=false
func (r *ProductionRecord) Scope() (Scope, bool) {
	if r.Date == nil || !IsValidShift(r.Shift) {
		return Scope{}, false
	}
	return NewScope(*r.Date, r.Shift), true
}
