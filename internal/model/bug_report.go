package model

import "time"

// BugReport Bug报告模型
// 状态机: open → in_progress → resolved → closed, PM可跳转;
// open/in_progress 可经转换事务进入 converted_to_test, 该状态为终态
type BugReport struct {
	BaseModelWithSoftDelete
	ModulePlatform    string     `gorm:"size:100;not null;index" json:"module_platform"`
	EvidenceURL       string     `gorm:"size:500;not null" json:"evidence_url"`
	Description       string     `gorm:"type:text;not null" json:"description"`
	Note              *string    `gorm:"type:text" json:"note,omitempty"`
	Severity          string     `gorm:"size:10;not null;default:'medium';index" json:"severity"`
	Status            string     `gorm:"size:20;not null;default:'open';index" json:"status"`
	CreatedBy         int64      `gorm:"not null;index" json:"created_by"`
	ConvertedToTestID *int64     `gorm:"index" json:"converted_to_test_id,omitempty"`
	ConvertedAt       *time.Time `json:"converted_at,omitempty"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

// TableName 指定表名
func (BugReport) TableName() string {
	return "bug_reports"
}
