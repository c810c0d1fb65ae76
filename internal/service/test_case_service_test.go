package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qa-track/internal/dto"
	"qa-track/internal/model"
	"qa-track/internal/pkg/auth"
	"qa-track/pkg/constants"
	pkgErrors "qa-track/pkg/responses"
)

func newTestCaseService(t *testing.T) (TestCaseService, *fakeTestRepo, *fakeUserRepo) {
	t.Helper()
	testRepo := newFakeTestRepo()
	userRepo := newFakeUserRepo()
	svc := NewTestCaseService(newTestConfig(), testRepo, userRepo, nopNotifier{}, zap.NewNop())
	return svc, testRepo, userRepo
}

func strPtr(s string) *string { return &s }

var (
	pmActor  = auth.Actor{ID: 1, Role: auth.RolePM}
	qaActor  = auth.Actor{ID: 2, Role: auth.RoleQA}
	engActor = auth.Actor{ID: 3, Role: auth.RoleEng}
)

func seedQA(userRepo *fakeUserRepo, id int64) *model.User {
	u := &model.User{Email: "qa@example.com", Name: "小王", Role: "qa", IsVerified: true}
	u.ID = id
	return userRepo.add(u)
}

func TestCreateTestCase(t *testing.T) {
	svc, _, userRepo := newTestCaseService(t)
	seedQA(userRepo, qaActor.ID)

	resp, err := svc.Create(pmActor, &dto.TestCaseCreateRequest{
		ModulePlatform: "结账/iOS",
		TestCase:       "添加商品后进入结账页",
		ExpectedResult: "显示正确的合计金额",
		AssignedTo:     qaActor.ID,
	})
	require.NoError(t, err)
	// 新建用例一律从pending开始
	assert.Equal(t, constants.TestStatusPending, resp.Status)
	assert.Equal(t, qaActor.ID, resp.AssignedTo)
	assert.Equal(t, pmActor.ID, resp.CreatedBy)
	assert.Equal(t, "小王", resp.AssigneeName)
}

func TestCreateTestCaseOnlyPM(t *testing.T) {
	svc, _, userRepo := newTestCaseService(t)
	seedQA(userRepo, qaActor.ID)

	req := &dto.TestCaseCreateRequest{
		ModulePlatform: "结账/iOS",
		TestCase:       "x",
		ExpectedResult: "y",
		AssignedTo:     qaActor.ID,
	}

	_, err := svc.Create(qaActor, req)
	assert.Equal(t, pkgErrors.ErrForbidden, err)

	_, err = svc.Create(engActor, req)
	assert.Equal(t, pkgErrors.ErrForbidden, err)
}

func TestCreateTestCaseAssigneeMustBeVerifiedQA(t *testing.T) {
	svc, _, userRepo := newTestCaseService(t)

	eng := &model.User{Email: "eng@example.com", Role: "eng", IsVerified: true}
	eng.ID = 10
	userRepo.add(eng)

	unverified := &model.User{Email: "newqa@example.com", Role: "qa", IsVerified: false}
	unverified.ID = 11
	userRepo.add(unverified)

	req := func(assignee int64) *dto.TestCaseCreateRequest {
		return &dto.TestCaseCreateRequest{ModulePlatform: "m", TestCase: "x", ExpectedResult: "y", AssignedTo: assignee}
	}

	_, err := svc.Create(pmActor, req(10))
	assert.Equal(t, pkgErrors.ErrAssigneeInvalid, err)

	_, err = svc.Create(pmActor, req(11))
	assert.Equal(t, pkgErrors.ErrAssigneeInvalid, err)

	_, err = svc.Create(pmActor, req(999))
	assert.Equal(t, pkgErrors.ErrAssigneeInvalid, err)
}

func TestCreateTestCaseEvidenceValidation(t *testing.T) {
	svc, _, userRepo := newTestCaseService(t)
	seedQA(userRepo, qaActor.ID)

	_, err := svc.Create(pmActor, &dto.TestCaseCreateRequest{
		ModulePlatform: "m",
		TestCase:       "x",
		ExpectedResult: "y",
		EvidenceURL:    strPtr("https://loom.com/share/abc"),
		AssignedTo:     qaActor.ID,
	})
	require.Error(t, err)
	appErr, ok := err.(*pkgErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.CodeBadRequest, appErr.Code)
}

func TestGetTestCaseVisibility(t *testing.T) {
	svc, testRepo, _ := newTestCaseService(t)
	tc := testRepo.add(&model.TestCase{
		ModulePlatform: "m", TestCaseText: "x", ExpectedResult: "y",
		Status: constants.TestStatusPending, AssignedTo: qaActor.ID, CreatedBy: pmActor.ID,
	})

	// PM全量可见
	_, err := svc.Get(pmActor, tc.ID)
	assert.NoError(t, err)

	// 指派QA可见
	_, err = svc.Get(qaActor, tc.ID)
	assert.NoError(t, err)

	// 其他QA拿404而不是403, 不泄露存在性
	otherQA := auth.Actor{ID: 77, Role: auth.RoleQA}
	_, err = svc.Get(otherQA, tc.ID)
	assert.Equal(t, pkgErrors.ErrRecordNotFound, err)

	// ENG对pending用例同样404
	_, err = svc.Get(engActor, tc.ID)
	assert.Equal(t, pkgErrors.ErrRecordNotFound, err)

	// 用例失败后ENG可见
	tc.Status = constants.TestStatusFail
	_, err = svc.Get(engActor, tc.ID)
	assert.NoError(t, err)
}

func TestUpdateTestCasePointerSemantics(t *testing.T) {
	svc, testRepo, userRepo := newTestCaseService(t)
	seedQA(userRepo, qaActor.ID)

	tc := testRepo.add(&model.TestCase{
		ModulePlatform: "m", TestCaseText: "x", ExpectedResult: "y",
		Status: constants.TestStatusPending, AssignedTo: qaActor.ID, CreatedBy: pmActor.ID,
		Notes: strPtr("初始备注"), EvidenceURL: strPtr("https://jam.dev/c/old"),
	})

	// 缺省字段保持原值
	resp, err := svc.Update(pmActor, tc.ID, &dto.TestCaseUpdateRequest{
		ModulePlatform: strPtr("m2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "m2", resp.ModulePlatform)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "初始备注", *resp.Notes)

	// 显式空串清空
	resp, err = svc.Update(pmActor, tc.ID, &dto.TestCaseUpdateRequest{
		Notes:       strPtr(""),
		EvidenceURL: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Notes)
	assert.Nil(t, resp.EvidenceURL)
}

func TestUpdateTestCaseReassignKeepsStatus(t *testing.T) {
	svc, testRepo, userRepo := newTestCaseService(t)
	seedQA(userRepo, qaActor.ID)
	other := &model.User{Email: "qa2@example.com", Name: "小李", Role: "qa", IsVerified: true}
	other.ID = 20
	userRepo.add(other)

	tc := testRepo.add(&model.TestCase{
		ModulePlatform: "m", TestCaseText: "x", ExpectedResult: "y",
		Status: constants.TestStatusFail, AssignedTo: qaActor.ID, CreatedBy: pmActor.ID,
	})

	resp, err := svc.Update(pmActor, tc.ID, &dto.TestCaseUpdateRequest{AssignedTo: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, resp.AssignedTo)
	// 改派不重置状态
	assert.Equal(t, constants.TestStatusFail, resp.Status)
}

func TestRecordResult(t *testing.T) {
	svc, testRepo, _ := newTestCaseService(t)
	tc := testRepo.add(&model.TestCase{
		ModulePlatform: "m", TestCaseText: "x", ExpectedResult: "y",
		Status: constants.TestStatusPending, AssignedTo: qaActor.ID, CreatedBy: pmActor.ID,
	})

	resp, err := svc.RecordResult(qaActor, tc.ID, &dto.TestResultRequest{
		Status:      constants.TestStatusFail,
		EvidenceURL: strPtr("https://jam.dev/c/failure"),
		Notes:       strPtr("结账按钮无响应"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.TestStatusFail, resp.Status)
	require.NotNil(t, resp.EvidenceURL)
	assert.Equal(t, "https://jam.dev/c/failure", *resp.EvidenceURL)

	// 重测互转: fail → pass
	resp, err = svc.RecordResult(qaActor, tc.ID, &dto.TestResultRequest{Status: constants.TestStatusPass})
	require.NoError(t, err)
	assert.Equal(t, constants.TestStatusPass, resp.Status)
}

func TestRecordResultAuthorization(t *testing.T) {
	svc, testRepo, _ := newTestCaseService(t)
	tc := testRepo.add(&model.TestCase{
		ModulePlatform: "m", TestCaseText: "x", ExpectedResult: "y",
		Status: constants.TestStatusPending, AssignedTo: qaActor.ID, CreatedBy: pmActor.ID,
	})

	req := &dto.TestResultRequest{Status: constants.TestStatusPass}

	// 结果录入整个动作只属于QA, PM/ENG一律403
	_, err := svc.RecordResult(pmActor, tc.ID, req)
	assert.Equal(t, pkgErrors.ErrForbidden, err)
	_, err = svc.RecordResult(engActor, tc.ID, req)
	assert.Equal(t, pkgErrors.ErrForbidden, err)

	// 非指派QA视作资源不存在
	otherQA := auth.Actor{ID: 77, Role: auth.RoleQA}
	_, err = svc.RecordResult(otherQA, tc.ID, req)
	assert.Equal(t, pkgErrors.ErrRecordNotFound, err)
}

func TestDeleteTestCase(t *testing.T) {
	svc, testRepo, _ := newTestCaseService(t)
	tc := testRepo.add(&model.TestCase{
		ModulePlatform: "m", TestCaseText: "x", ExpectedResult: "y",
		Status: constants.TestStatusPending, AssignedTo: qaActor.ID, CreatedBy: pmActor.ID,
	})

	assert.Equal(t, pkgErrors.ErrForbidden, svc.Delete(qaActor, tc.ID))
	assert.Equal(t, pkgErrors.ErrForbidden, svc.Delete(engActor, tc.ID))

	require.NoError(t, svc.Delete(pmActor, tc.ID))
	assert.Equal(t, pkgErrors.ErrRecordNotFound, svc.Delete(pmActor, tc.ID))
}
