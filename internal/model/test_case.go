package model

// TestCase 测试用例模型
// 状态机: pending →(指派QA录入结果)→ pass/fail/escalated, 三者之间可重测互转, 永不回到pending
// SourceBugID 只能由Bug转换事务写入; 源Bug被删除时置空, 用例本身不级联删除
type TestCase struct {
	BaseModelWithSoftDelete
	ModulePlatform string  `gorm:"size:100;not null;index" json:"module_platform"`
	TestCaseText   string  `gorm:"type:text;not null" json:"test_case"`
	ExpectedResult string  `gorm:"type:text;not null" json:"expected_result"`
	Status         string  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	EvidenceURL    *string `gorm:"size:500" json:"evidence_url,omitempty"`
	Notes          *string `gorm:"type:text" json:"notes,omitempty"`
	AssignedTo     int64   `gorm:"not null;index" json:"assigned_to"`
	CreatedBy      int64   `gorm:"not null;index" json:"created_by"`
	SourceBugID    *int64  `gorm:"index" json:"source_bug_id,omitempty"`

	Assignee *User `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Creator  *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

// TableName 指定表名
func (TestCase) TableName() string {
	return "test_cases"
}
