package model

// 系统用户角色
const (
	UserRoleAdmin      = "admin"
	UserRoleSupervisor = "supervisor"
)

// User 系统用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(50);not null"                      json:"username"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'supervisor'" json:"role"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsValidUserRole 角色是否合法
func IsValidUserRole(role string) bool {
	return role == UserRoleAdmin || role == UserRoleSupervisor
}
