package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"qa-track/internal/adapter/notification"
	"qa-track/internal/dto"
	"qa-track/internal/model"
	"qa-track/internal/pkg/config"
	"qa-track/pkg/constants"
	pkgErrors "qa-track/pkg/responses"
)

// newTestConfig 测试用配置, 同时写入全局配置供jwt使用
func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:                  "test-secret",
				SessionExpire:           7 * 24 * 3600,
				VerificationTokenExpire: 24 * 3600,
				ResetTokenExpire:        3600,
			},
		},
		Evidence: config.EvidenceConfig{ProviderDomain: "jam.dev"},
	}
	config.GlobalConfig = cfg
	return cfg
}

// nopNotifier 测试用静默通知器
type nopNotifier struct{}

func (nopNotifier) Send(_ context.Context, _ *notification.Message) error { return nil }

// ---------- fakeUserRepo ----------

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

// add 预置用户, 直接入库
func (f *fakeUserRepo) add(u *model.User) *model.User {
	if u.ID == 0 {
		u.ID = f.nextID
	}
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(id int64) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, pkgErrors.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pkgErrors.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByVerificationToken(token string) (*model.User, error) {
	for _, u := range f.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			return u, nil
		}
	}
	return nil, pkgErrors.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByResetToken(token string) (*model.User, error) {
	for _, u := range f.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return u, nil
		}
	}
	return nil, pkgErrors.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(user *model.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(id int64) error {
	if u, ok := f.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (f *fakeUserRepo) Delete(id int64) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(q *dto.UserListQuery) ([]*model.User, int64, error) {
	var out []*model.User
	for _, u := range f.users {
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		if q.Search != "" && !strings.Contains(u.Email, q.Search) && !strings.Contains(u.Name, q.Search) {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) ListVerifiedQA() ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		if u.Role == "qa" && u.IsVerified {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ClearExpiredTokens(now time.Time) (int64, error) {
	var affected int64
	for _, u := range f.users {
		if u.VerificationToken != nil && u.VerificationTokenExpiry != nil && u.VerificationTokenExpiry.Before(now) {
			u.VerificationToken = nil
			u.VerificationTokenExpiry = nil
			affected++
		}
		if u.ResetToken != nil && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.Before(now) {
			u.ResetToken = nil
			u.ResetTokenExpiry = nil
			affected++
		}
	}
	return affected, nil
}

// ---------- fakeTestRepo ----------

type fakeTestRepo struct {
	items  map[int64]*model.TestCase
	nextID int64
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{items: make(map[int64]*model.TestCase), nextID: 1}
}

func (f *fakeTestRepo) add(tc *model.TestCase) *model.TestCase {
	if tc.ID == 0 {
		tc.ID = f.nextID
	}
	if tc.ID >= f.nextID {
		f.nextID = tc.ID + 1
	}
	f.items[tc.ID] = tc
	return tc
}

func (f *fakeTestRepo) Create(tc *model.TestCase) error {
	tc.ID = f.nextID
	f.nextID++
	tc.CreatedAt = time.Now()
	f.items[tc.ID] = tc
	return nil
}

func (f *fakeTestRepo) FindByID(id int64) (*model.TestCase, error) {
	if tc, ok := f.items[id]; ok {
		return tc, nil
	}
	return nil, pkgErrors.ErrRecordNotFound
}

func (f *fakeTestRepo) Update(tc *model.TestCase) error {
	f.items[tc.ID] = tc
	return nil
}

func (f *fakeTestRepo) Delete(id int64) error {
	delete(f.items, id)
	return nil
}

// List 范围过滤发生在SQL层, fake不重现, 直接返回全部
func (f *fakeTestRepo) List(_ *dto.TestCaseListQuery, _ func(*gorm.DB) *gorm.DB) ([]*model.TestCase, int64, error) {
	return f.ListAllOrdered()
}

func (f *fakeTestRepo) ListAllOrdered() ([]*model.TestCase, int64, error) {
	var out []*model.TestCase
	for _, tc := range f.items {
		out = append(out, tc)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTestRepo) ListAll() ([]*model.TestCase, error) {
	out, _, _ := f.ListAllOrdered()
	return out, nil
}

func (f *fakeTestRepo) CountByStatus() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, tc := range f.items {
		counts[tc.Status]++
	}
	return counts, nil
}

// ---------- fakeBugRepo ----------

type fakeBugRepo struct {
	items  map[int64]*model.BugReport
	tests  *fakeTestRepo
	nextID int64
}

func newFakeBugRepo(tests *fakeTestRepo) *fakeBugRepo {
	return &fakeBugRepo{items: make(map[int64]*model.BugReport), tests: tests, nextID: 1}
}

func (f *fakeBugRepo) add(bug *model.BugReport) *model.BugReport {
	if bug.ID == 0 {
		bug.ID = f.nextID
	}
	if bug.ID >= f.nextID {
		f.nextID = bug.ID + 1
	}
	f.items[bug.ID] = bug
	return bug
}

func (f *fakeBugRepo) Create(bug *model.BugReport) error {
	bug.ID = f.nextID
	f.nextID++
	bug.CreatedAt = time.Now()
	f.items[bug.ID] = bug
	return nil
}

func (f *fakeBugRepo) FindByID(id int64) (*model.BugReport, error) {
	if bug, ok := f.items[id]; ok {
		return bug, nil
	}
	return nil, pkgErrors.ErrRecordNotFound
}

func (f *fakeBugRepo) Update(bug *model.BugReport) error {
	f.items[bug.ID] = bug
	return nil
}

// Delete 重现真实实现的语义: 清空派生用例回引, 用例本身保留
func (f *fakeBugRepo) Delete(bug *model.BugReport) error {
	for _, tc := range f.tests.items {
		if tc.SourceBugID != nil && *tc.SourceBugID == bug.ID {
			tc.SourceBugID = nil
		}
	}
	delete(f.items, bug.ID)
	return nil
}

func (f *fakeBugRepo) List(_ *dto.BugListQuery, _ func(*gorm.DB) *gorm.DB) ([]*model.BugReport, int64, error) {
	var out []*model.BugReport
	for _, bug := range f.items {
		out = append(out, bug)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBugRepo) ListAll() ([]*model.BugReport, error) {
	out, _, _ := f.List(nil, nil)
	return out, nil
}

// Convert 重现条件更新语义: 已转换的Bug写不进去, 整体失败
func (f *fakeBugRepo) Convert(bug *model.BugReport, test *model.TestCase) error {
	stored, ok := f.items[bug.ID]
	if !ok || stored.Status == constants.BugStatusConverted {
		return pkgErrors.ErrBugConverted
	}

	if err := f.tests.Create(test); err != nil {
		return err
	}

	now := time.Now()
	stored.Status = constants.BugStatusConverted
	stored.ConvertedToTestID = &test.ID
	stored.ConvertedAt = &now

	bug.Status = stored.Status
	bug.ConvertedToTestID = stored.ConvertedToTestID
	bug.ConvertedAt = stored.ConvertedAt
	return nil
}

func (f *fakeBugRepo) CountByStatus() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bug := range f.items {
		counts[bug.Status]++
	}
	return counts, nil
}

func (f *fakeBugRepo) CountBySeverity() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bug := range f.items {
		counts[bug.Severity]++
	}
	return counts, nil
}

// ---------- fakeAuditRepo ----------

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (f *fakeAuditRepo) Create(entry *model.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}
