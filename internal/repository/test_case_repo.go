package repository

import (
	"gorm.io/gorm"

	"qa-track/internal/dto"
	"qa-track/internal/model"
	pkgErrors "qa-track/pkg/responses"
)

type TestCaseRepository interface {
	Create(tc *model.TestCase) error
	FindByID(id int64) (*model.TestCase, error)
	Update(tc *model.TestCase) error
	Delete(id int64) error
	List(q *dto.TestCaseListQuery, scope func(*gorm.DB) *gorm.DB) ([]*model.TestCase, int64, error)
	// ListAll 全量导出用, 不分页
	ListAll() ([]*model.TestCase, error)
	CountByStatus() (map[string]int64, error)
}

type testCaseRepository struct {
	db *gorm.DB
}

func NewTestCaseRepository(db *gorm.DB) TestCaseRepository {
	return &testCaseRepository{db: db}
}

func (r *testCaseRepository) Create(tc *model.TestCase) error {
	if err := r.db.Create(tc).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "创建测试用例失败", err)
	}
	return nil
}

func (r *testCaseRepository) FindByID(id int64) (*model.TestCase, error) {
	var tc model.TestCase
	err := r.db.Preload("Assignee").First(&tc, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试用例失败", err)
	}
	return &tc, nil
}

func (r *testCaseRepository) Update(tc *model.TestCase) error {
	if err := r.db.Save(tc).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新测试用例失败", err)
	}
	return nil
}

func (r *testCaseRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.TestCase{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除测试用例失败", err)
	}
	return nil
}

// List 分页查询, scope由授权策略提供, 在此收窄可见范围
func (r *testCaseRepository) List(q *dto.TestCaseListQuery, scope func(*gorm.DB) *gorm.DB) ([]*model.TestCase, int64, error) {
	db := r.db.Model(&model.TestCase{}).Scopes(scope)

	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.ModulePlatform != "" {
		db = db.Where("module_platform = ?", q.ModulePlatform)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("test_case_text LIKE ? OR expected_result LIKE ? OR module_platform LIKE ?", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计测试用例失败", err)
	}

	var items []*model.TestCase
	err := db.Preload("Assignee").Order("id DESC").Offset(q.GetOffset()).Limit(q.GetLimit()).Find(&items).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试用例列表失败", err)
	}
	return items, total, nil
}

func (r *testCaseRepository) ListAll() ([]*model.TestCase, error) {
	var items []*model.TestCase
	if err := r.db.Order("id ASC").Find(&items).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试用例列表失败", err)
	}
	return items, nil
}

func (r *testCaseRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Cnt    int64
	}
	var rows []row
	err := r.db.Model(&model.TestCase{}).
		Select("status, COUNT(*) AS cnt").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计测试用例失败", err)
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.Status] = r.Cnt
	}
	return result, nil
}
