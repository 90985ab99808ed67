package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/heyyrintu/vbcl-form-sub001/internal/model"
	pkgerrors "github.com/heyyrintu/vbcl-form-sub001/pkg/errors"
)

// ScopeLockRepository 数据库侧班次行锁
type ScopeLockRepository interface {
	// Lock 在当前事务内对班次行加 FOR UPDATE 锁，事务结束时释放。
	// 必须在 Transactor.Transaction 内调用；等待超过 timeout 返回 ErrConcurrencyConflict。
	Lock(ctx context.Context, scope model.Scope, timeout time.Duration) error
}

type scopeLockRepo struct {
	db *gorm.DB
}

// NewScopeLockRepo 创建 ScopeLockRepository 实例
func NewScopeLockRepo(db *gorm.DB) ScopeLockRepository {
	return &scopeLockRepo{db: db}
}

func (r *scopeLockRepo) Lock(ctx context.Context, scope model.Scope, timeout time.Duration) error {
	db := r.db.WithContext(ctx)

	if timeout > 0 {
		if err := db.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())).Error; err != nil {
			return err
		}
	}

	row := model.ScopeLock{ScopeDate: scope.Date, Shift: scope.Shift}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return pkgerrors.ClassifyPG(err)
	}

	var locked model.ScopeLock
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scope_date = ? AND shift = ?", scope.DateString(), scope.Shift).
		First(&locked).Error
	if err != nil {
		return fmt.Errorf("锁定班次 %s 失败: %w", scope, pkgerrors.ClassifyPG(err))
	}
	return nil
}
