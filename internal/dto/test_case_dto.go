package dto

import (
	"time"

	"qa-track/internal/model"
)

// TestCaseListQuery 用例列表查询
type TestCaseListQuery struct {
	PageQuery
	Status         string `form:"status" binding:"omitempty,oneof=pending pass fail escalated"`
	ModulePlatform string `form:"module_platform"`
	Search         string `form:"search"`
}

// TestCaseCreateRequest 创建用例请求, 状态一律从pending开始
type TestCaseCreateRequest struct {
	ModulePlatform string  `json:"module_platform" binding:"required,max=100"`
	TestCase       string  `json:"test_case" binding:"required"`
	ExpectedResult string  `json:"expected_result" binding:"required"`
	EvidenceURL    *string `json:"evidence_url"`
	AssignedTo     int64   `json:"assigned_to" binding:"required,min=1"`
}

// TestCaseUpdateRequest PM更新用例请求
// 指针字段缺省=不修改, 显式空串=清空; 状态只能走结果录入接口
type TestCaseUpdateRequest struct {
	ModulePlatform *string `json:"module_platform" binding:"omitempty,max=100"`
	TestCase       *string `json:"test_case"`
	ExpectedResult *string `json:"expected_result"`
	EvidenceURL    *string `json:"evidence_url"`
	Notes          *string `json:"notes"`
	AssignedTo     *int64  `json:"assigned_to" binding:"omitempty,min=1"`
}

// TestResultRequest 结果录入请求
// pending不在oneof内: 结果永不回到待执行
type TestResultRequest struct {
	Status      string  `json:"status" binding:"required,oneof=pass fail escalated"`
	EvidenceURL *string `json:"evidence_url"`
	Notes       *string `json:"notes"`
}

// TestCaseResponse 用例响应
type TestCaseResponse struct {
	ID             int64     `json:"id"`
	ModulePlatform string    `json:"module_platform"`
	TestCase       string    `json:"test_case"`
	ExpectedResult string    `json:"expected_result"`
	Status         string    `json:"status"`
	EvidenceURL    *string   `json:"evidence_url,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	AssignedTo     int64     `json:"assigned_to"`
	AssigneeName   string    `json:"assignee_name,omitempty"`
	CreatedBy      int64     `json:"created_by"`
	SourceBugID    *int64    `json:"source_bug_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewTestCaseResponse 模型转响应
func NewTestCaseResponse(t *model.TestCase) *TestCaseResponse {
	if t == nil {
		return nil
	}
	resp := &TestCaseResponse{
		ID:             t.ID,
		ModulePlatform: t.ModulePlatform,
		TestCase:       t.TestCaseText,
		ExpectedResult: t.ExpectedResult,
		Status:         t.Status,
		EvidenceURL:    t.EvidenceURL,
		Notes:          t.Notes,
		AssignedTo:     t.AssignedTo,
		CreatedBy:      t.CreatedBy,
		SourceBugID:    t.SourceBugID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.Assignee != nil {
		resp.AssigneeName = t.Assignee.Name
	}
	return resp
}
