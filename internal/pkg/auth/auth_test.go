package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qa-track/pkg/constants"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"pm", RolePM, true},
		{"qa", RoleQA, true},
		{"eng", RoleEng, true},
		{"admin", "", false},
		{"PM", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.input)
		assert.Equal(t, tt.ok, ok, "input=%q", tt.input)
		assert.Equal(t, tt.want, got, "input=%q", tt.input)
	}
}

func TestCanReadTestCase(t *testing.T) {
	tests := []struct {
		name       string
		actor      Actor
		assignedTo int64
		status     string
		want       bool
	}{
		{"PM可见任意用例", Actor{ID: 1, Role: RolePM}, 99, constants.TestStatusPending, true},
		{"QA可见本人被指派", Actor{ID: 5, Role: RoleQA}, 5, constants.TestStatusPending, true},
		{"QA不可见他人用例", Actor{ID: 5, Role: RoleQA}, 6, constants.TestStatusFail, false},
		{"ENG可见失败用例", Actor{ID: 9, Role: RoleEng}, 5, constants.TestStatusFail, true},
		{"ENG可见升级用例", Actor{ID: 9, Role: RoleEng}, 5, constants.TestStatusEscalated, true},
		{"ENG不可见待执行用例", Actor{ID: 9, Role: RoleEng}, 5, constants.TestStatusPending, false},
		{"ENG不可见通过用例", Actor{ID: 9, Role: RoleEng}, 5, constants.TestStatusPass, false},
		{"未知角色不可见", Actor{ID: 1, Role: "admin"}, 1, constants.TestStatusFail, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadTestCase(tt.actor, tt.assignedTo, tt.status))
		})
	}
}

func TestTestCaseWritePermissions(t *testing.T) {
	// 用例的创建/修改/删除都只属于PM, 结果录入只属于QA
	for _, role := range Roles() {
		want := role == RolePM
		assert.Equal(t, want, CanCreateTestCase(role), "create role=%s", role)
		assert.Equal(t, want, CanUpdateTestCaseFields(role), "update role=%s", role)
		assert.Equal(t, want, CanDeleteTestCase(role), "delete role=%s", role)
		assert.Equal(t, role == RoleQA, CanRecordResult(role), "record result role=%s", role)
	}
	assert.False(t, CanRecordResult("admin"))
}

func TestCanReadBug(t *testing.T) {
	tests := []struct {
		name      string
		actor     Actor
		createdBy int64
		want      bool
	}{
		{"PM可见任意Bug", Actor{ID: 1, Role: RolePM}, 99, true},
		{"ENG可见任意Bug", Actor{ID: 9, Role: RoleEng}, 99, true},
		{"QA可见本人创建", Actor{ID: 5, Role: RoleQA}, 5, true},
		{"QA不可见他人Bug", Actor{ID: 5, Role: RoleQA}, 6, false},
		{"未知角色不可见", Actor{ID: 1, Role: ""}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadBug(tt.actor, tt.createdBy))
		})
	}
}

func TestBugRolePermissions(t *testing.T) {
	for _, role := range Roles() {
		assert.Equal(t, role == RoleQA, CanCreateBug(role), "create role=%s", role)
		assert.Equal(t, role == RolePM, CanUpdateBugAnyField(role), "update role=%s", role)
		assert.Equal(t, role == RolePM, CanConvertBug(role), "convert role=%s", role)
		assert.Equal(t, role == RolePM, CanDeleteBug(role), "delete role=%s", role)
		assert.Equal(t, role == RolePM, CanManageUsers(role), "manage users role=%s", role)
	}
}

func TestCanUpdateBugContent(t *testing.T) {
	tests := []struct {
		name      string
		actor     Actor
		createdBy int64
		status    string
		want      bool
	}{
		{"创建者QA未转换前可改内容", Actor{ID: 5, Role: RoleQA}, 5, constants.BugStatusOpen, true},
		{"创建者QA处理中仍可改", Actor{ID: 5, Role: RoleQA}, 5, constants.BugStatusInProgress, true},
		{"创建者QA转换后不可改", Actor{ID: 5, Role: RoleQA}, 5, constants.BugStatusConverted, false},
		{"非创建者QA不可改", Actor{ID: 5, Role: RoleQA}, 6, constants.BugStatusOpen, false},
		{"PM不走内容通道", Actor{ID: 1, Role: RolePM}, 1, constants.BugStatusOpen, false},
		{"ENG不可改", Actor{ID: 9, Role: RoleEng}, 9, constants.BugStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanUpdateBugContent(tt.actor, tt.createdBy, tt.status))
		})
	}
}
