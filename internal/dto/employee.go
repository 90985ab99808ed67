package dto

// ── 员工模块 DTO ──

// EmployeeResponse 员工信息
type EmployeeResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"` // DLPL/E/001
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
	Role     string `form:"role"      binding:"omitempty,oneof=Electrician Fitter Painter Helper"`
	IsActive *bool  `form:"is_active"`
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
}

// CreateEmployeeRequest 创建员工请求，编号由系统生成
type CreateEmployeeRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Role string `json:"role" binding:"required,oneof=Electrician Fitter Painter Helper"`
}

// UpdateEmployeeRequest 更新员工请求；工种创建后不可修改
type UpdateEmployeeRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active"`
}
