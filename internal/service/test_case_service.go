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

type TestCaseService interface {
	Create(actor auth.Actor, req *dto.TestCaseCreateRequest) (*dto.TestCaseResponse, error)
	List(actor auth.Actor, q *dto.TestCaseListQuery) ([]*dto.TestCaseResponse, int64, error)
	Get(actor auth.Actor, id int64) (*dto.TestCaseResponse, error)
	Update(actor auth.Actor, id int64, req *dto.TestCaseUpdateRequest) (*dto.TestCaseResponse, error)
	RecordResult(actor auth.Actor, id int64, req *dto.TestResultRequest) (*dto.TestCaseResponse, error)
	Delete(actor auth.Actor, id int64) error
}

type testCaseService struct {
	cfg      *config.Config
	testRepo repository.TestCaseRepository
	userRepo repository.UserRepository
	notifier notification.Notifier
	logger   *zap.Logger
}

func NewTestCaseService(
	cfg *config.Config,
	testRepo repository.TestCaseRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
	logger *zap.Logger,
) TestCaseService {
	return &testCaseService{
		cfg:      cfg,
		testRepo: testRepo,
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// Create 创建用例, 仅PM; 指派对象必须是已验证QA; 无视入参状态, 一律pending
func (s *testCaseService) Create(actor auth.Actor, req *dto.TestCaseCreateRequest) (*dto.TestCaseResponse, error) {
	if !auth.CanCreateTestCase(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	assignee, err := findVerifiedQA(s.userRepo, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	if req.EvidenceURL != nil && *req.EvidenceURL != "" {
		if err := utils.ValidateEvidenceURL(*req.EvidenceURL, s.cfg.Evidence.ProviderDomain); err != nil {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, err.Error())
		}
	}

	tc := &model.TestCase{
		ModulePlatform: req.ModulePlatform,
		TestCaseText:   req.TestCase,
		ExpectedResult: req.ExpectedResult,
		Status:         constants.TestStatusPending,
		EvidenceURL:    req.EvidenceURL,
		AssignedTo:     assignee.ID,
		CreatedBy:      actor.ID,
	}
	if err := s.testRepo.Create(tc); err != nil {
		return nil, err
	}
	tc.Assignee = assignee

	s.notifyAssigned(assignee, tc)
	return dto.NewTestCaseResponse(tc), nil
}

// List 列表查询, 按角色静默收窄范围, 不因角色报错
func (s *testCaseService) List(actor auth.Actor, q *dto.TestCaseListQuery) ([]*dto.TestCaseResponse, int64, error) {
	items, total, err := s.testRepo.List(q, auth.ScopeTestCases(actor))
	if err != nil {
		return nil, 0, err
	}

	resp := lo.Map(items, func(t *model.TestCase, _ int) *dto.TestCaseResponse {
		return dto.NewTestCaseResponse(t)
	})
	return resp, total, nil
}

// Get 详情; 范围外的资源一律404, 不泄露存在性
func (s *testCaseService) Get(actor auth.Actor, id int64) (*dto.TestCaseResponse, error) {
	tc, err := s.testRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !auth.CanReadTestCase(actor, tc.AssignedTo, tc.Status) {
		return nil, pkgErrors.ErrRecordNotFound
	}
	return dto.NewTestCaseResponse(tc), nil
}

// Update PM修改非结果字段; 改指派不改状态
// 指针字段缺省=不修改, 显式空串=清空(证据/备注)
func (s *testCaseService) Update(actor auth.Actor, id int64, req *dto.TestCaseUpdateRequest) (*dto.TestCaseResponse, error) {
	if !auth.CanUpdateTestCaseFields(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	tc, err := s.testRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.ModulePlatform != nil {
		tc.ModulePlatform = *req.ModulePlatform
	}
	if req.TestCase != nil {
		tc.TestCaseText = *req.TestCase
	}
	if req.ExpectedResult != nil {
		tc.ExpectedResult = *req.ExpectedResult
	}
	if req.Notes != nil {
		tc.Notes = normalizeOptional(req.Notes)
	}
	if req.EvidenceURL != nil {
		if *req.EvidenceURL != "" {
			if err := utils.ValidateEvidenceURL(*req.EvidenceURL, s.cfg.Evidence.ProviderDomain); err != nil {
				return nil, pkgErrors.New(pkgErrors.CodeBadRequest, err.Error())
			}
		}
		tc.EvidenceURL = normalizeOptional(req.EvidenceURL)
	}

	var newAssignee *model.User
	if req.AssignedTo != nil && *req.AssignedTo != tc.AssignedTo {
		newAssignee, err = findVerifiedQA(s.userRepo, *req.AssignedTo)
		if err != nil {
			return nil, err
		}
		// 改派不触碰状态
		tc.AssignedTo = newAssignee.ID
		tc.Assignee = newAssignee
	}

	if err := s.testRepo.Update(tc); err != nil {
		return nil, err
	}

	if newAssignee != nil {
		s.notifyAssigned(newAssignee, tc)
	}
	return dto.NewTestCaseResponse(tc), nil
}

// RecordResult 结果录入, 仅当前指派QA
// pending → pass/fail/escalated; 三者间可重测互转; 永不回到pending
func (s *testCaseService) RecordResult(actor auth.Actor, id int64, req *dto.TestResultRequest) (*dto.TestCaseResponse, error) {
	// 整个动作只属于QA角色, 其他角色一律403
	if !auth.CanRecordResult(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	tc, err := s.testRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	// 非指派QA视作资源不存在
	if tc.AssignedTo != actor.ID {
		return nil, pkgErrors.ErrRecordNotFound
	}

	if !constants.IsTestResultStatus(req.Status) {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "非法的结果状态")
	}

	tc.Status = req.Status
	if req.EvidenceURL != nil {
		if *req.EvidenceURL != "" {
			if err := utils.ValidateEvidenceURL(*req.EvidenceURL, s.cfg.Evidence.ProviderDomain); err != nil {
				return nil, pkgErrors.New(pkgErrors.CodeBadRequest, err.Error())
			}
		}
		tc.EvidenceURL = normalizeOptional(req.EvidenceURL)
	}
	if req.Notes != nil {
		tc.Notes = normalizeOptional(req.Notes)
	}

	if err := s.testRepo.Update(tc); err != nil {
		return nil, err
	}
	return dto.NewTestCaseResponse(tc), nil
}

// Delete 删除用例, 仅PM
func (s *testCaseService) Delete(actor auth.Actor, id int64) error {
	if !auth.CanDeleteTestCase(actor.Role) {
		return pkgErrors.ErrForbidden
	}

	if _, err := s.testRepo.FindByID(id); err != nil {
		return err
	}
	return s.testRepo.Delete(id)
}

func (s *testCaseService) notifyAssigned(assignee *model.User, tc *model.TestCase) {
	notification.Dispatch(s.notifier, s.logger, &notification.Message{
		Event:     notification.EventTestAssigned,
		Recipient: assignee.Email,
		Subject:   "你有新的测试用例",
		Payload: map[string]interface{}{
			"test_id":         tc.ID,
			"module_platform": tc.ModulePlatform,
			"assignee":        assignee.Name,
		},
	})
}

// normalizeOptional 显式空串 → 清空(存NULL)
func normalizeOptional(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
