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

func newBugService(t *testing.T) (BugReportService, *fakeBugRepo, *fakeTestRepo, *fakeUserRepo) {
	t.Helper()
	testRepo := newFakeTestRepo()
	bugRepo := newFakeBugRepo(testRepo)
	userRepo := newFakeUserRepo()
	svc := NewBugReportService(newTestConfig(), bugRepo, userRepo, nopNotifier{}, zap.NewNop())
	return svc, bugRepo, testRepo, userRepo
}

func seedBug(bugRepo *fakeBugRepo, createdBy int64) *model.BugReport {
	return bugRepo.add(&model.BugReport{
		ModulePlatform: "结账/iOS",
		EvidenceURL:    "https://jam.dev/c/bug1",
		Description:    "优惠码叠加后合计为负数",
		Severity:       constants.SeverityHigh,
		Status:         constants.BugStatusOpen,
		CreatedBy:      createdBy,
	})
}

func TestCreateBug(t *testing.T) {
	svc, _, _, _ := newBugService(t)

	resp, err := svc.Create(qaActor, &dto.BugCreateRequest{
		ModulePlatform: "结账/iOS",
		EvidenceURL:    "https://jam.dev/c/bug1",
		Description:    "优惠码叠加后合计为负数",
	})
	require.NoError(t, err)
	// 状态一律open, 严重级别缺省medium
	assert.Equal(t, constants.BugStatusOpen, resp.Status)
	assert.Equal(t, constants.SeverityMedium, resp.Severity)
	assert.Equal(t, qaActor.ID, resp.CreatedBy)
}

func TestCreateBugOnlyQA(t *testing.T) {
	svc, _, _, _ := newBugService(t)

	req := &dto.BugCreateRequest{
		ModulePlatform: "m",
		EvidenceURL:    "https://jam.dev/c/x",
		Description:    "d",
	}

	_, err := svc.Create(pmActor, req)
	assert.Equal(t, pkgErrors.ErrForbidden, err)
	_, err = svc.Create(engActor, req)
	assert.Equal(t, pkgErrors.ErrForbidden, err)
}

func TestCreateBugEvidenceRequired(t *testing.T) {
	svc, _, _, _ := newBugService(t)

	_, err := svc.Create(qaActor, &dto.BugCreateRequest{
		ModulePlatform: "m",
		EvidenceURL:    "https://loom.com/share/abc",
		Description:    "d",
	})
	require.Error(t, err)
	appErr, ok := err.(*pkgErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, pkgErrors.CodeBadRequest, appErr.Code)
}

func TestGetBugVisibility(t *testing.T) {
	svc, bugRepo, _, _ := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)

	// PM/ENG全量可见
	_, err := svc.Get(pmActor, bug.ID)
	assert.NoError(t, err)
	_, err = svc.Get(engActor, bug.ID)
	assert.NoError(t, err)

	// 创建者可见
	_, err = svc.Get(qaActor, bug.ID)
	assert.NoError(t, err)

	// 其他QA拿404
	otherQA := auth.Actor{ID: 77, Role: auth.RoleQA}
	_, err = svc.Get(otherQA, bug.ID)
	assert.Equal(t, pkgErrors.ErrRecordNotFound, err)
}

func TestUpdateBugAsPM(t *testing.T) {
	svc, bugRepo, _, _ := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)

	status := constants.BugStatusClosed
	resp, err := svc.Update(pmActor, bug.ID, &dto.BugUpdateRequest{
		Status:   &status,
		Severity: strPtr(constants.SeverityCritical),
	})
	require.NoError(t, err)
	// PM允许状态跳转 open → closed
	assert.Equal(t, constants.BugStatusClosed, resp.Status)
	assert.Equal(t, constants.SeverityCritical, resp.Severity)
}

func TestUpdateBugAsCreatorQA(t *testing.T) {
	svc, bugRepo, _, _ := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)

	// 内容字段可改
	resp, err := svc.Update(qaActor, bug.ID, &dto.BugUpdateRequest{
		Description: strPtr("更精确的复现步骤"),
		Note:        strPtr("仅周末可复现"),
	})
	require.NoError(t, err)
	assert.Equal(t, "更精确的复现步骤", resp.Description)

	// 携带status一律403
	status := constants.BugStatusResolved
	_, err = svc.Update(qaActor, bug.ID, &dto.BugUpdateRequest{Status: &status})
	assert.Equal(t, pkgErrors.ErrForbidden, err)
}

func TestUpdateBugAsNonCreatorQA(t *testing.T) {
	svc, bugRepo, _, _ := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)

	otherQA := auth.Actor{ID: 77, Role: auth.RoleQA}
	_, err := svc.Update(otherQA, bug.ID, &dto.BugUpdateRequest{Description: strPtr("x")})
	assert.Equal(t, pkgErrors.ErrRecordNotFound, err)
}

func TestUpdateBugAsEng(t *testing.T) {
	svc, bugRepo, _, _ := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)

	_, err := svc.Update(engActor, bug.ID, &dto.BugUpdateRequest{Description: strPtr("x")})
	assert.Equal(t, pkgErrors.ErrForbidden, err)
}

func TestUpdateConvertedBugIsTerminal(t *testing.T) {
	svc, bugRepo, _, _ := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)
	bug.Status = constants.BugStatusConverted

	// 转换后任何更新路径都封死, PM也不例外
	_, err := svc.Update(pmActor, bug.ID, &dto.BugUpdateRequest{Description: strPtr("x")})
	assert.Equal(t, pkgErrors.ErrBugConverted, err)

	_, err = svc.Update(qaActor, bug.ID, &dto.BugUpdateRequest{Description: strPtr("x")})
	assert.Equal(t, pkgErrors.ErrBugConverted, err)
}

func TestConvertBug(t *testing.T) {
	svc, bugRepo, testRepo, userRepo := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)
	assignee := seedQA(userRepo, 50)

	resp, err := svc.Convert(pmActor, bug.ID, &dto.BugConvertRequest{
		AssignedTo:     assignee.ID,
		TestCase:       "应用优惠码后检查合计",
		ExpectedResult: "合计不为负",
	})
	require.NoError(t, err)

	// Bug翻转为终态并记录回引
	assert.Equal(t, constants.BugStatusConverted, resp.Bug.Status)
	require.NotNil(t, resp.Bug.ConvertedToTestID)
	assert.Equal(t, resp.Test.ID, *resp.Bug.ConvertedToTestID)
	require.NotNil(t, resp.Bug.ConvertedAt)

	// 用例从Bug拷贝 module_platform/evidence_url, 状态pending
	assert.Equal(t, bug.ModulePlatform, resp.Test.ModulePlatform)
	require.NotNil(t, resp.Test.EvidenceURL)
	assert.Equal(t, bug.EvidenceURL, *resp.Test.EvidenceURL)
	assert.Equal(t, constants.TestStatusPending, resp.Test.Status)
	assert.Equal(t, assignee.ID, resp.Test.AssignedTo)
	require.NotNil(t, resp.Test.SourceBugID)
	assert.Equal(t, bug.ID, *resp.Test.SourceBugID)

	// 用例真实落库
	_, err = testRepo.FindByID(resp.Test.ID)
	assert.NoError(t, err)
}

func TestConvertBugExactlyOnce(t *testing.T) {
	svc, bugRepo, testRepo, userRepo := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)
	assignee := seedQA(userRepo, 50)

	req := &dto.BugConvertRequest{AssignedTo: assignee.ID, TestCase: "x", ExpectedResult: "y"}

	_, err := svc.Convert(pmActor, bug.ID, req)
	require.NoError(t, err)

	// 二次转换409, 也不会再生成用例
	_, err = svc.Convert(pmActor, bug.ID, req)
	assert.Equal(t, pkgErrors.ErrBugConverted, err)
	assert.Len(t, testRepo.items, 1)
}

func TestConvertBugOnlyPM(t *testing.T) {
	svc, bugRepo, _, userRepo := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)
	assignee := seedQA(userRepo, 50)

	req := &dto.BugConvertRequest{AssignedTo: assignee.ID, TestCase: "x", ExpectedResult: "y"}

	_, err := svc.Convert(qaActor, bug.ID, req)
	assert.Equal(t, pkgErrors.ErrForbidden, err)
	_, err = svc.Convert(engActor, bug.ID, req)
	assert.Equal(t, pkgErrors.ErrForbidden, err)
}

func TestConvertBugAssigneeMustBeVerifiedQA(t *testing.T) {
	svc, bugRepo, _, userRepo := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)

	unverified := &model.User{Email: "newqa@example.com", Role: "qa", IsVerified: false}
	unverified.ID = 60
	userRepo.add(unverified)

	_, err := svc.Convert(pmActor, bug.ID, &dto.BugConvertRequest{
		AssignedTo: 60, TestCase: "x", ExpectedResult: "y",
	})
	assert.Equal(t, pkgErrors.ErrAssigneeInvalid, err)

	// 校验失败时Bug保持未转换
	stored, err := bugRepo.FindByID(bug.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.BugStatusOpen, stored.Status)
}

func TestDeleteBugKeepsDerivedTest(t *testing.T) {
	svc, bugRepo, testRepo, userRepo := newBugService(t)
	bug := seedBug(bugRepo, qaActor.ID)
	assignee := seedQA(userRepo, 50)

	resp, err := svc.Convert(pmActor, bug.ID, &dto.BugConvertRequest{
		AssignedTo: assignee.ID, TestCase: "x", ExpectedResult: "y",
	})
	require.NoError(t, err)

	// 仅PM可删
	assert.Equal(t, pkgErrors.ErrForbidden, svc.Delete(qaActor, bug.ID))

	require.NoError(t, svc.Delete(pmActor, bug.ID))

	// 派生用例保留, 回引清空
	tc, err := testRepo.FindByID(resp.Test.ID)
	require.NoError(t, err)
	assert.Nil(t, tc.SourceBugID)
}
