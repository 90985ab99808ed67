package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
)

// EmployeeFilter 员工列表筛选条件
type EmployeeFilter struct {
	Role     string
	IsActive *bool
	Keyword  string // 匹配姓名或编号
}

// EmployeeRepository 员工目录数据访问接口
type EmployeeRepository interface {
	Create(ctx context.Context, emp *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Employee, error)
	List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]model.Employee, int64, error)
	Update(ctx context.Context, emp *model.Employee) error
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

// Create 分配同工种内的下一个序号并生成编号。
// 同工种并发创建通过事务级 advisory lock 串行。
func (r *employeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "employees:"+emp.Role).Error; err != nil {
			return err
		}

		var maxSeq int
		if err := tx.Model(&model.Employee{}).
			Where("role = ?", emp.Role).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		code, err := model.EmployeeCode(emp.Role, maxSeq+1)
		if err != nil {
			return err
		}
		emp.Seq = maxSeq + 1
		emp.Code = code

		return tx.Create(emp).Error
	})
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", id).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Employee, error) {
	var emps []model.Employee
	if len(ids) == 0 {
		return emps, nil
	}
	err := r.db.WithContext(ctx).
		Where("employee_id IN ?", ids).
		Find(&emps).Error
	return emps, err
}

func (r *employeeRepo) List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]model.Employee, int64, error) {
	var emps []model.Employee
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Employee{})
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("name ILIKE ? OR code ILIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("role ASC, seq ASC").
		Find(&emps).Error; err != nil {
		return nil, 0, err
	}

	return emps, total, nil
}

// Update 只更新姓名与在职状态，工种与编号不可修改
func (r *employeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("employee_id = ?", emp.EmployeeID).
		Updates(map[string]interface{}{
			"name":       emp.Name,
			"is_active":  emp.IsActive,
			"updated_by": emp.UpdatedBy,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
