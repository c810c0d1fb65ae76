package auth

import (
	"gorm.io/gorm"

	"qa-track/pkg/constants"
)

// Role 内置角色, 三选一
type Role string

const (
	RolePM  Role = "pm"  // 产品经理: 全量可见, 管理用例和用户
	RoleQA  Role = "qa"  // 测试: 执行被指派的用例, 报告Bug
	RoleEng Role = "eng" // 工程师: 只读失败/升级用例和全部Bug
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePM, RoleQA, RoleEng:
		return Role(s), true
	}
	return "", false
}

// Roles 全部角色, 固定顺序
func Roles() []Role {
	return []Role{RolePM, RoleQA, RoleEng}
}

// Actor 发起请求的主体
type Actor struct {
	ID   int64
	Role Role
}

// ---------- TestCase ----------

// CanReadTestCase 单条用例可见性
// PM全部; QA仅本人被指派; ENG仅 fail/escalated
func CanReadTestCase(actor Actor, assignedTo int64, status string) bool {
	switch actor.Role {
	case RolePM:
		return true
	case RoleQA:
		return assignedTo == actor.ID
	case RoleEng:
		return status == constants.TestStatusFail || status == constants.TestStatusEscalated
	}
	return false
}

// CanCreateTestCase 仅PM可创建用例
func CanCreateTestCase(role Role) bool {
	switch role {
	case RolePM:
		return true
	case RoleQA, RoleEng:
		return false
	}
	return false
}

// CanUpdateTestCaseFields 仅PM可修改用例的非结果字段
func CanUpdateTestCaseFields(role Role) bool {
	switch role {
	case RolePM:
		return true
	case RoleQA, RoleEng:
		return false
	}
	return false
}

// CanRecordResult 结果录入整个动作只属于QA; 是否被指派再按具体资源判定
func CanRecordResult(role Role) bool {
	switch role {
	case RoleQA:
		return true
	case RolePM, RoleEng:
		return false
	}
	return false
}

// CanDeleteTestCase 仅PM可删除用例
func CanDeleteTestCase(role Role) bool {
	switch role {
	case RolePM:
		return true
	case RoleQA, RoleEng:
		return false
	}
	return false
}

// ScopeTestCases 用例列表过滤
// 列表接口对角色不报错, 静默收窄查询范围
func ScopeTestCases(actor Actor) func(*gorm.DB) *gorm.DB {
	switch actor.Role {
	case RolePM:
		return func(db *gorm.DB) *gorm.DB { return db }
	case RoleQA:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("assigned_to = ?", actor.ID)
		}
	case RoleEng:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("status IN ?", []string{constants.TestStatusFail, constants.TestStatusEscalated})
		}
	}
	// 未知角色不可见任何数据
	return func(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") }
}

// ---------- BugReport ----------

// CanReadBug 单条Bug可见性
// PM/ENG全部; QA仅本人创建
func CanReadBug(actor Actor, createdBy int64) bool {
	switch actor.Role {
	case RolePM, RoleEng:
		return true
	case RoleQA:
		return createdBy == actor.ID
	}
	return false
}

// CanCreateBug 仅QA可创建Bug
func CanCreateBug(role Role) bool {
	switch role {
	case RoleQA:
		return true
	case RolePM, RoleEng:
		return false
	}
	return false
}

// CanUpdateBugAnyField PM可修改Bug任意字段(含状态)
func CanUpdateBugAnyField(role Role) bool {
	switch role {
	case RolePM:
		return true
	case RoleQA, RoleEng:
		return false
	}
	return false
}

// CanUpdateBugContent 创建者QA可修改内容字段, 前提是尚未转换
func CanUpdateBugContent(actor Actor, createdBy int64, status string) bool {
	switch actor.Role {
	case RoleQA:
		return createdBy == actor.ID && status != constants.BugStatusConverted
	case RolePM, RoleEng:
		return false
	}
	return false
}

// CanConvertBug 仅PM可将Bug转换为用例
func CanConvertBug(role Role) bool {
	switch role {
	case RolePM:
		return true
	case RoleQA, RoleEng:
		return false
	}
	return false
}

// CanDeleteBug 仅PM可删除Bug
func CanDeleteBug(role Role) bool {
	switch role {
	case RolePM:
		return true
	case RoleQA, RoleEng:
		return false
	}
	return false
}

// ScopeBugReports Bug列表过滤
func ScopeBugReports(actor Actor) func(*gorm.DB) *gorm.DB {
	switch actor.Role {
	case RolePM, RoleEng:
		return func(db *gorm.DB) *gorm.DB { return db }
	case RoleQA:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("created_by = ?", actor.ID)
		}
	}
	return func(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") }
}

// ---------- User ----------

// CanManageUsers 仅PM可管理用户(增删改查)
func CanManageUsers(role Role) bool {
	switch role {
	case RolePM:
		return true
	case RoleQA, RoleEng:
		return false
	}
	return false
}
