package dto

// StatsResponse 全局统计
type StatsResponse struct {
	TotalTests     int64 `json:"total_tests"`
	PendingTests   int64 `json:"pending_tests"`
	PassedTests    int64 `json:"passed_tests"`
	FailedTests    int64 `json:"failed_tests"`
	EscalatedTests int64 `json:"escalated_tests"`

	TotalBugs      int64            `json:"total_bugs"`
	BugsByStatus   map[string]int64 `json:"bugs_by_status"`
	BugsBySeverity map[string]int64 `json:"bugs_by_severity"`
	ConvertedBugs  int64            `json:"converted_bugs"`
}
