package handler

import "github.com/heyyrintu/vbcl-form-sub001/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Employee   *EmployeeHandler
	Record     *RecordHandler
	Attendance *AttendanceHandler
	Reconcile  *ReconcileHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Employee:   NewEmployeeHandler(svc.Employee),
		Record:     NewRecordHandler(svc.Record, svc.Assignment, svc.Export),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Reconcile:  NewReconcileHandler(svc.Reconcile),
	}
}
