package model

import "fmt"

// 员工工种，决定分摊计入记录的哪个人数字段
const (
	RoleElectrician = "Electrician"
	RoleFitter      = "Fitter"
	RolePainter     = "Painter"
	RoleHelper      = "Helper"
)

// EmployeeRoles 全部工种，顺序即报表列顺序
var EmployeeRoles = []string{RoleElectrician, RoleFitter, RolePainter, RoleHelper}

var roleCodes = map[string]string{
	RoleElectrician: "E",
	RoleFitter:      "F",
	RolePainter:     "P",
	RoleHelper:      "H",
}

// Employee 车间员工表 — 对应 employees
// Role 创建后不可修改
type Employee struct {
	EmployeeID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code       string `gorm:"type:varchar(30);not null;uniqueIndex"          json:"employee_id"`
	Seq        int    `gorm:"not null"                                       json:"-"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	Role       string `gorm:"type:varchar(20);not null"                      json:"role"`
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// IsValidEmployeeRole 工种是否为四种固定值之一
func IsValidEmployeeRole(role string) bool {
	_, ok := roleCodes[role]
	return ok
}

// EmployeeCode 生成员工编号，格式 DLPL/{工种代码}/{三位序号}
func EmployeeCode(role string, seq int) (string, error) {
	code, ok := roleCodes[role]
	if !ok {
		return "", fmt.Errorf("未知工种: %q", role)
	}
	return fmt.Sprintf("DLPL/%s/%03d", code, seq), nil
}
