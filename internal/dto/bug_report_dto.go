package dto

import (
	"time"

	"qa-track/internal/model"
)

// BugListQuery Bug列表查询
type BugListQuery struct {
	PageQuery
	Status         string `form:"status" binding:"omitempty,oneof=open in_progress resolved closed converted_to_test"`
	Severity       string `form:"severity" binding:"omitempty,oneof=low medium high critical"`
	ModulePlatform string `form:"module_platform"`
	Search         string `form:"search"`
}

// BugCreateRequest QA创建Bug请求, 状态一律从open开始
type BugCreateRequest struct {
	ModulePlatform string  `json:"module_platform" binding:"required,max=100"`
	EvidenceURL    string  `json:"evidence_url" binding:"required"`
	Description    string  `json:"description" binding:"required"`
	Note           *string `json:"note"`
	Severity       string  `json:"severity" binding:"omitempty,oneof=low medium high critical"`
}

// BugUpdateRequest 更新Bug请求
// 指针字段缺省=不修改, 显式空串=清空(仅Note);
// Status 仅PM可携带, converted_to_test 不可经此进入
type BugUpdateRequest struct {
	ModulePlatform *string `json:"module_platform" binding:"omitempty,max=100"`
	EvidenceURL    *string `json:"evidence_url"`
	Description    *string `json:"description"`
	Note           *string `json:"note"`
	Severity       *string `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	Status         *string `json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
}

// BugConvertRequest Bug转测试用例请求
type BugConvertRequest struct {
	AssignedTo     int64  `json:"assigned_to" binding:"required,min=1"`
	TestCase       string `json:"test_case" binding:"required"`
	ExpectedResult string `json:"expected_result" binding:"required"`
}

// BugResponse Bug响应
type BugResponse struct {
	ID                int64      `json:"id"`
	ModulePlatform    string     `json:"module_platform"`
	EvidenceURL       string     `json:"evidence_url"`
	Description       string     `json:"description"`
	Note              *string    `json:"note,omitempty"`
	Severity          string     `json:"severity"`
	Status            string     `json:"status"`
	CreatedBy         int64      `json:"created_by"`
	ReporterName      string     `json:"reporter_name,omitempty"`
	ConvertedToTestID *int64     `json:"converted_to_test_id,omitempty"`
	ConvertedAt       *time.Time `json:"converted_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewBugResponse 模型转响应
func NewBugResponse(b *model.BugReport) *BugResponse {
	if b == nil {
		return nil
	}
	resp := &BugResponse{
		ID:                b.ID,
		ModulePlatform:    b.ModulePlatform,
		EvidenceURL:       b.EvidenceURL,
		Description:       b.Description,
		Note:              b.Note,
		Severity:          b.Severity,
		Status:            b.Status,
		CreatedBy:         b.CreatedBy,
		ConvertedToTestID: b.ConvertedToTestID,
		ConvertedAt:       b.ConvertedAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	if b.Creator != nil {
		resp.ReporterName = b.Creator.Name
	}
	return resp
}

// BugConvertResponse 转换结果: 新用例 + 更新后的Bug
type BugConvertResponse struct {
	Bug  *BugResponse      `json:"bug"`
	Test *TestCaseResponse `json:"test"`
}
