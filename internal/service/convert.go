package service

import (
	"sort"
	"time"

	"github.com/heyyrintu/vbcl-form-sub001/internal/dto"
	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
)

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dto.TimeLayout)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(model.DateLayout)
	return &s
}

// ToRecordResponse 生产记录 → 响应，员工按编号排序
func ToRecordResponse(r *model.ProductionRecord) dto.RecordResponse {
	resp := dto.RecordResponse{
		ID:          r.RecordID,
		Date:        formatDatePtr(r.Date),
		Shift:       r.Shift,
		Status:      r.Status,
		BinNo:       r.BinNo,
		Model:       r.Model,
		ChassisNo:   r.ChassisNo,
		StartTime:   formatTimePtr(r.StartTime),
		EndTime:     formatTimePtr(r.EndTime),
		Remarks:     r.Remarks,
		Electrician: r.Electrician.InexactFloat64(),
		Fitter:      r.Fitter.InexactFloat64(),
		Painter:     r.Painter.InexactFloat64(),
		Helper:      r.Helper.InexactFloat64(),
		Employees:   make([]dto.AssignmentResponse, 0, len(r.Assignments)),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.Format(dto.TimeLayout),
		UpdatedAt:   r.UpdatedAt.Format(dto.TimeLayout),
	}
	if r.DeletedAt.Valid {
		resp.DeletedAt = formatTimePtr(&r.DeletedAt.Time)
	}

	for _, a := range r.Assignments {
		item := dto.AssignmentResponse{
			ID:         a.AssignmentID,
			EmployeeID: a.EmployeeID,
			SplitCount: a.SplitCount,
		}
		if a.Employee != nil {
			item.EmployeeCode = a.Employee.Code
			item.Name = a.Employee.Name
			item.Role = a.Employee.Role
		}
		resp.Employees = append(resp.Employees, item)
	}
	sort.SliceStable(resp.Employees, func(i, j int) bool {
		return resp.Employees[i].EmployeeCode < resp.Employees[j].EmployeeCode
	})

	return resp
}

// ToScopeChangeResponse 重算结果 → 响应；recordID 非空时单独返回该记录
func ToScopeChangeResponse(res *ReconcileResult, recordID string) *dto.ScopeChangeResponse {
	resp := &dto.ScopeChangeResponse{
		Date:               res.Scope.DateString(),
		Shift:              res.Scope.Shift,
		ScopeRecords:       make([]dto.RecordResponse, 0, len(res.Records)),
		AssignmentsWritten: res.AssignmentsWritten,
		RecordsWritten:     res.RecordsWritten,
	}
	for i := range res.Records {
		rr := ToRecordResponse(&res.Records[i])
		resp.ScopeRecords = append(resp.ScopeRecords, rr)
		if recordID != "" && res.Records[i].RecordID == recordID {
			resp.Record = &rr
		}
	}
	return resp
}

// ToReconcileSummary 重算结果摘要
func ToReconcileSummary(res *ReconcileResult) dto.ReconcileSummary {
	return dto.ReconcileSummary{
		Date:               res.Scope.DateString(),
		Shift:              res.Scope.Shift,
		RecordCount:        len(res.Records),
		AssignmentsWritten: res.AssignmentsWritten,
		RecordsWritten:     res.RecordsWritten,
	}
}

func toEmployeeResponse(e *model.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:         e.EmployeeID,
		EmployeeID: e.Code,
		Name:       e.Name,
		Role:       e.Role,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt.Format(dto.TimeLayout),
	}
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.UserID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(dto.TimeLayout),
	}
}

func toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:         a.AttendanceID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.Format(model.DateLayout),
		Shift:      a.Shift,
		Status:     a.Status,
		Remarks:    a.Remarks,
	}
	if a.Employee != nil {
		resp.EmployeeCode = a.Employee.Code
		resp.EmployeeName = a.Employee.Name
		resp.Role = a.Employee.Role
	}
	return resp
}
