package repository

import (
	"time"

	"gorm.io/gorm"

	"qa-track/internal/dto"
	"qa-track/internal/model"
	"qa-track/pkg/constants"
	pkgErrors "qa-track/pkg/responses"
)

type BugReportRepository interface {
	Create(bug *model.BugReport) error
	FindByID(id int64) (*model.BugReport, error)
	Update(bug *model.BugReport) error
	// Delete 删除Bug并清空派生用例的回引, 单事务
	Delete(bug *model.BugReport) error
	List(q *dto.BugListQuery, scope func(*gorm.DB) *gorm.DB) ([]*model.BugReport, int64, error)
	// ListAll 全量导出用, 不分页
	ListAll() ([]*model.BugReport, error)
	// Convert 转换事务: 创建派生用例并条件更新Bug状态
	Convert(bug *model.BugReport, test *model.TestCase) error
	CountByStatus() (map[string]int64, error)
	CountBySeverity() (map[string]int64, error)
}

type bugReportRepository struct {
	db *gorm.DB
}

func NewBugReportRepository(db *gorm.DB) BugReportRepository {
	return &bugReportRepository{db: db}
}

func (r *bugReportRepository) Create(bug *model.BugReport) error {
	if err := r.db.Create(bug).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "创建Bug失败", err)
	}
	return nil
}

func (r *bugReportRepository) FindByID(id int64) (*model.BugReport, error) {
	var bug model.BugReport
	err := r.db.Preload("Creator").First(&bug, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询Bug失败", err)
	}
	return &bug, nil
}

func (r *bugReportRepository) Update(bug *model.BugReport) error {
	if err := r.db.Save(bug).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新Bug失败", err)
	}
	return nil
}

// Delete 软删除Bug; 若已转换, 先把派生用例的 source_bug_id 置空
// 用例本身不级联删除
func (r *bugReportRepository) Delete(bug *model.BugReport) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TestCase{}).
			Where("source_bug_id = ?", bug.ID).
			Update("source_bug_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.BugReport{}, bug.ID).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除Bug失败", err)
	}
	return nil
}

func (r *bugReportRepository) List(q *dto.BugListQuery, scope func(*gorm.DB) *gorm.DB) ([]*model.BugReport, int64, error) {
	db := r.db.Model(&model.BugReport{}).Scopes(scope)

	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Severity != "" {
		db = db.Where("severity = ?", q.Severity)
	}
	if q.ModulePlatform != "" {
		db = db.Where("module_platform = ?", q.ModulePlatform)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("description LIKE ? OR module_platform LIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计Bug失败", err)
	}

	var items []*model.BugReport
	err := db.Preload("Creator").Order("id DESC").Offset(q.GetOffset()).Limit(q.GetLimit()).Find(&items).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询Bug列表失败", err)
	}
	return items, total, nil
}

func (r *bugReportRepository) ListAll() ([]*model.BugReport, error) {
	var items []*model.BugReport
	if err := r.db.Order("id ASC").Find(&items).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询Bug列表失败", err)
	}
	return items, nil
}

// Convert 转换事务
// 先创建派生用例, 再以条件更新翻转Bug状态; 条件更新写到0行说明
// 另一次转换已抢先完成, 整个事务回滚, 不会留下孤儿用例
func (r *bugReportRepository) Convert(bug *model.BugReport, test *model.TestCase) error {
	now := time.Now()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(test).Error; err != nil {
			return err
		}

		res := tx.Model(&model.BugReport{}).
			Where("id = ? AND status != ?", bug.ID, constants.BugStatusConverted).
			Updates(map[string]interface{}{
				"status":               constants.BugStatusConverted,
				"converted_to_test_id": test.ID,
				"converted_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgErrors.ErrBugConverted
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*pkgErrors.AppError); ok {
			return appErr
		}
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "Bug转换失败", err)
	}

	bug.Status = constants.BugStatusConverted
	bug.ConvertedToTestID = &test.ID
	bug.ConvertedAt = &now
	return nil
}

func (r *bugReportRepository) CountByStatus() (map[string]int64, error) {
	return r.countGrouped("status")
}

func (r *bugReportRepository) CountBySeverity() (map[string]int64, error) {
	return r.countGrouped("severity")
}

func (r *bugReportRepository) countGrouped(column string) (map[string]int64, error) {
	type row struct {
		Key string
		Cnt int64
	}
	var rows []row
	err := r.db.Model(&model.BugReport{}).
		Select(column + " AS `key`, COUNT(*) AS cnt").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计Bug失败", err)
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.Key] = r.Cnt
	}
	return result, nil
}
