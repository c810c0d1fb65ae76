package constants

// TestCaseStatus 测试用例状态
const (
	TestStatusPending   = "pending"   // 待执行
	TestStatusPass      = "pass"      // 通过
	TestStatusFail      = "fail"      // 失败
	TestStatusEscalated = "escalated" // 已升级
)

// IsTestResultStatus 判断是否为合法的测试结果状态(不含pending)
func IsTestResultStatus(status string) bool {
	switch status {
	case TestStatusPass, TestStatusFail, TestStatusEscalated:
		return true
	}
	return false
}

// BugStatus Bug状态
const (
	BugStatusOpen       = "open"              // 待处理
	BugStatusInProgress = "in_progress"       // 处理中
	BugStatusResolved   = "resolved"          // 已解决
	BugStatusClosed     = "closed"            // 已关闭
	BugStatusConverted  = "converted_to_test" // 已转换为测试用例(终态)
)

// IsBugStatus 判断是否为合法的Bug状态
func IsBugStatus(status string) bool {
	switch status {
	case BugStatusOpen, BugStatusInProgress, BugStatusResolved, BugStatusClosed, BugStatusConverted:
		return true
	}
	return false
}

// CanSetBugStatus PM直接设置Bug状态的合法性检查
// 已转换为终态, 不允许任何方向的再流转; converted_to_test 只能经由转换事务进入
func CanSetBugStatus(from, to string) bool {
	if from == BugStatusConverted {
		return false
	}
	if to == BugStatusConverted {
		return false
	}
	// PM 允许跳转, 例如 open → closed
	return IsBugStatus(to)
}

// Severity Bug严重级别
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium" // 默认级别
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// 审计动作
const (
	AuditActionRegister      = "register"
	AuditActionLogin         = "login"
	AuditActionVerifyEmail   = "verify_email"
	AuditActionResetRequest  = "reset_requested"
	AuditActionResetPassword = "reset_password"
)

// JWT 相关
const (
	JWTTypeSession = "session"
	ContextUserKey = "current_user"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
)
