package service

import (
	"github.com/samber/lo"
	"go.uber.org/zap"

	"qa-track/internal/adapter/notification"
	"qa-track/internal/dto"
	"qa-track/internal/model"
	"qa-track/internal/pkg/auth"
	"qa-track/internal/pkg/config"
	"qa-track/internal/repository"
	"qa-track/pkg/constants"
	pkgErrors "qa-track/pkg/responses"
	"qa-track/pkg/utils"
)

type BugReportService interface {
	Create(actor auth.Actor, req *dto.BugCreateRequest) (*dto.BugResponse, error)
	List(actor auth.Actor, q *dto.BugListQuery) ([]*dto.BugResponse, int64, error)
	Get(actor auth.Actor, id int64) (*dto.BugResponse, error)
	Update(actor auth.Actor, id int64, req *dto.BugUpdateRequest) (*dto.BugResponse, error)
	Delete(actor auth.Actor, id int64) error
	Convert(actor auth.Actor, bugID int64, req *dto.BugConvertRequest) (*dto.BugConvertResponse, error)
}

type bugReportService struct {
	cfg      *config.Config
	bugRepo  repository.BugReportRepository
	userRepo repository.UserRepository
	notifier notification.Notifier
	logger   *zap.Logger
}

func NewBugReportService(
	cfg *config.Config,
	bugRepo repository.BugReportRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
	logger *zap.Logger,
) BugReportService {
	return &bugReportService{
		cfg:      cfg,
		bugRepo:  bugRepo,
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// Create 创建Bug, 仅QA; 证据链接必填且需满足平台域名约束; 一律从open开始
func (s *bugReportService) Create(actor auth.Actor, req *dto.BugCreateRequest) (*dto.BugResponse, error) {
	if !auth.CanCreateBug(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	if err := utils.ValidateEvidenceURL(req.EvidenceURL, s.cfg.Evidence.ProviderDomain); err != nil {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, err.Error())
	}

	severity := req.Severity
	if severity == "" {
		severity = constants.SeverityMedium
	}

	bug := &model.BugReport{
		ModulePlatform: req.ModulePlatform,
		EvidenceURL:    req.EvidenceURL,
		Description:    req.Description,
		Note:           req.Note,
		Severity:       severity,
		Status:         constants.BugStatusOpen,
		CreatedBy:      actor.ID,
	}
	if err := s.bugRepo.Create(bug); err != nil {
		return nil, err
	}
	return dto.NewBugResponse(bug), nil
}

func (s *bugReportService) List(actor auth.Actor, q *dto.BugListQuery) ([]*dto.BugResponse, int64, error) {
	items, total, err := s.bugRepo.List(q, auth.ScopeBugReports(actor))
	if err != nil {
		return nil, 0, err
	}

	resp := lo.Map(items, func(b *model.BugReport, _ int) *dto.BugResponse {
		return dto.NewBugResponse(b)
	})
	return resp, total, nil
}

// Get 详情; 范围外一律404
func (s *bugReportService) Get(actor auth.Actor, id int64) (*dto.BugResponse, error) {
	bug, err := s.bugRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !auth.CanReadBug(actor, bug.CreatedBy) {
		return nil, pkgErrors.ErrRecordNotFound
	}
	return dto.NewBugResponse(bug), nil
}

// Update 更新Bug
// PM: 任意字段含状态(可跳转, 但不得进入/离开converted_to_test)
// 创建者QA: 仅内容字段, 且仅在未转换前; 携带status一律403
// ENG: 403
func (s *bugReportService) Update(actor auth.Actor, id int64, req *dto.BugUpdateRequest) (*dto.BugResponse, error) {
	bug, err := s.bugRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if auth.CanUpdateBugAnyField(actor.Role) {
		return s.updateAsPM(bug, req)
	}

	if actor.Role == auth.RoleQA {
		// 非创建者QA对该资源不可见
		if !auth.CanReadBug(actor, bug.CreatedBy) {
			return nil, pkgErrors.ErrRecordNotFound
		}
		if req.Status != nil {
			// 创建者QA无权触碰状态
			return nil, pkgErrors.ErrForbidden
		}
		// 可见且不碰状态, 剩下唯一拒绝原因是已转换终态
		if !auth.CanUpdateBugContent(actor, bug.CreatedBy, bug.Status) {
			return nil, pkgErrors.ErrBugConverted
		}
		return s.applyContentFields(bug, req)
	}

	return nil, pkgErrors.ErrForbidden
}

func (s *bugReportService) updateAsPM(bug *model.BugReport, req *dto.BugUpdateRequest) (*dto.BugResponse, error) {
	// 终态: 转换后任何更新路径都封死, PM也不例外
	if bug.Status == constants.BugStatusConverted {
		return nil, pkgErrors.ErrBugConverted
	}

	if req.Status != nil {
		if !constants.CanSetBugStatus(bug.Status, *req.Status) {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "非法的状态流转")
		}
		bug.Status = *req.Status
	}
	return s.applyContentFields(bug, req)
}

func (s *bugReportService) applyContentFields(bug *model.BugReport, req *dto.BugUpdateRequest) (*dto.BugResponse, error) {
	if req.ModulePlatform != nil {
		bug.ModulePlatform = *req.ModulePlatform
	}
	if req.Description != nil {
		bug.Description = *req.Description
	}
	if req.Note != nil {
		bug.Note = normalizeOptional(req.Note)
	}
	if req.Severity != nil {
		bug.Severity = *req.Severity
	}
	if req.EvidenceURL != nil {
		// 证据为必填字段, 不允许清空
		if err := utils.ValidateEvidenceURL(*req.EvidenceURL, s.cfg.Evidence.ProviderDomain); err != nil {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, err.Error())
		}
		bug.EvidenceURL = *req.EvidenceURL
	}

	if err := s.bugRepo.Update(bug); err != nil {
		return nil, err
	}
	return dto.NewBugResponse(bug), nil
}

// Delete 删除Bug, 仅PM; 派生用例保留, 仅清空其回引
func (s *bugReportService) Delete(actor auth.Actor, id int64) error {
	if !auth.CanDeleteBug(actor.Role) {
		return pkgErrors.ErrForbidden
	}

	bug, err := s.bugRepo.FindByID(id)
	if err != nil {
		return err
	}
	return s.bugRepo.Delete(bug)
}

// Convert Bug转测试用例, 仅PM, 恰好一次
// 用例字段从Bug拷贝 module_platform/evidence_url, 状态pending;
// Bug状态原子翻转为converted_to_test; 通知尽力而为, 不回滚主事务
func (s *bugReportService) Convert(actor auth.Actor, bugID int64, req *dto.BugConvertRequest) (*dto.BugConvertResponse, error) {
	if !auth.CanConvertBug(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	bug, err := s.bugRepo.FindByID(bugID)
	if err != nil {
		return nil, err
	}

	// 幂等防护: 已转换直接拒绝
	if bug.Status == constants.BugStatusConverted {
		return nil, pkgErrors.ErrBugConverted
	}

	assignee, err := findVerifiedQA(s.userRepo, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	test := &model.TestCase{
		ModulePlatform: bug.ModulePlatform,
		TestCaseText:   req.TestCase,
		ExpectedResult: req.ExpectedResult,
		Status:         constants.TestStatusPending,
		EvidenceURL:    &bug.EvidenceURL,
		AssignedTo:     assignee.ID,
		CreatedBy:      actor.ID,
		SourceBugID:    &bug.ID,
	}

	if err := s.bugRepo.Convert(bug, test); err != nil {
		return nil, err
	}
	test.Assignee = assignee

	notification.Dispatch(s.notifier, s.logger, &notification.Message{
		Event:     notification.EventTestAssigned,
		Recipient: assignee.Email,
		Subject:   "你有新的测试用例",
		Payload: map[string]interface{}{
			"test_id":         test.ID,
			"module_platform": test.ModulePlatform,
			"source_bug_id":   bug.ID,
		},
	})

	return &dto.BugConvertResponse{
		Bug:  dto.NewBugResponse(bug),
		Test: dto.NewTestCaseResponse(test),
	}, nil
}
