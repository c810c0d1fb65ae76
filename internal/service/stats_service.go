package service

import (
	"github.com/xuri/excelize/v2"

	"qa-track/internal/dto"
	"qa-track/internal/pkg/auth"
	"qa-track/internal/repository"
	"qa-track/pkg/constants"
	pkgErrors "qa-track/pkg/responses"
)

type StatsService interface {
	Stats(actor auth.Actor) (*dto.StatsResponse, error)
	// Export 导出xlsx报表, 含用例/Bug两个sheet
	Export(actor auth.Actor) (*excelize.File, error)
}

type statsService struct {
	testRepo repository.TestCaseRepository
	bugRepo  repository.BugReportRepository
}

func NewStatsService(testRepo repository.TestCaseRepository, bugRepo repository.BugReportRepository) StatsService {
	return &statsService{testRepo: testRepo, bugRepo: bugRepo}
}

func (s *statsService) Stats(actor auth.Actor) (*dto.StatsResponse, error) {
	if !auth.CanManageUsers(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	testCounts, err := s.testRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	bugCounts, err := s.bugRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	sevCounts, err := s.bugRepo.CountBySeverity()
	if err != nil {
		return nil, err
	}

	resp := &dto.StatsResponse{
		PendingTests:   testCounts[constants.TestStatusPending],
		PassedTests:    testCounts[constants.TestStatusPass],
		FailedTests:    testCounts[constants.TestStatusFail],
		EscalatedTests: testCounts[constants.TestStatusEscalated],
		BugsByStatus:   bugCounts,
		BugsBySeverity: sevCounts,
		ConvertedBugs:  bugCounts[constants.BugStatusConverted],
	}
	for _, c := range testCounts {
		resp.TotalTests += c
	}
	for _, c := range bugCounts {
		resp.TotalBugs += c
	}
	return resp, nil
}

// Export 导出全量报表, 仅PM
func (s *statsService) Export(actor auth.Actor) (*excelize.File, error) {
	if !auth.CanManageUsers(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	tests, err := s.testRepo.ListAll()
	if err != nil {
		return nil, err
	}
	bugs, err := s.bugRepo.ListAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Tests")

	writeRow(f, "Tests", 1, []interface{}{"ID", "Module/Platform", "Test Case", "Expected Result", "Status", "Assigned To", "Evidence URL", "Source Bug"})
	for i, t := range tests {
		evidence := ""
		if t.EvidenceURL != nil {
			evidence = *t.EvidenceURL
		}
		sourceBug := interface{}(nil)
		if t.SourceBugID != nil {
			sourceBug = *t.SourceBugID
		}
		writeRow(f, "Tests", i+2, []interface{}{t.ID, t.ModulePlatform, t.TestCaseText, t.ExpectedResult, t.Status, t.AssignedTo, evidence, sourceBug})
	}

	if _, err := f.NewSheet("Bugs"); err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成报表失败", err)
	}
	writeRow(f, "Bugs", 1, []interface{}{"ID", "Module/Platform", "Description", "Severity", "Status", "Reported By", "Evidence URL", "Converted Test"})
	for i, b := range bugs {
		convertedTest := interface{}(nil)
		if b.ConvertedToTestID != nil {
			convertedTest = *b.ConvertedToTestID
		}
		writeRow(f, "Bugs", i+2, []interface{}{b.ID, b.ModulePlatform, b.Description, b.Severity, b.Status, b.CreatedBy, b.EvidenceURL, convertedTest})
	}

	return f, nil
}

// writeRow 写入一行
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}
