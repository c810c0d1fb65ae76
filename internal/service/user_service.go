package service

import (
	"github.com/samber/lo"

	"qa-track/internal/dto"
	"qa-track/internal/model"
	"qa-track/internal/pkg/auth"
	"qa-track/internal/pkg/crypto"
	"qa-track/internal/repository"
	pkgErrors "qa-track/pkg/responses"
)

type UserService interface {
	List(actor auth.Actor, q *dto.UserListQuery) ([]*dto.UserResponse, int64, error)
	Get(actor auth.Actor, id int64) (*dto.UserResponse, error)
	Create(actor auth.Actor, req *dto.UserCreateRequest) (*dto.UserResponse, error)
	Update(actor auth.Actor, id int64, req *dto.UserUpdateRequest) (*dto.UserResponse, error)
	Delete(actor auth.Actor, id int64) error
	ListQATesters() ([]*dto.QATesterResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(actor auth.Actor, q *dto.UserListQuery) ([]*dto.UserResponse, int64, error) {
	if !auth.CanManageUsers(actor.Role) {
		return nil, 0, pkgErrors.ErrForbidden
	}

	users, total, err := s.userRepo.List(q)
	if err != nil {
		return nil, 0, err
	}

	resp := lo.Map(users, func(u *model.User, _ int) *dto.UserResponse {
		return dto.NewUserResponse(u)
	})
	return resp, total, nil
}

func (s *userService) Get(actor auth.Actor, id int64) (*dto.UserResponse, error) {
	if !auth.CanManageUsers(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// Create PM创建用户, 创建即已验证, 不走邮箱验证流程
func (s *userService) Create(actor auth.Actor, req *dto.UserCreateRequest) (*dto.UserResponse, error) {
	if !auth.CanManageUsers(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, pkgErrors.ErrEmailExists
	} else if err != pkgErrors.ErrRecordNotFound {
		return nil, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码哈希失败", err)
	}

	user := &model.User{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		Password:   hash,
		IsVerified: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// Update PM更新用户; 角色只有PM能改, 用户自己无权限走到这里
func (s *userService) Update(actor auth.Actor, id int64, req *dto.UserUpdateRequest) (*dto.UserResponse, error) {
	if !auth.CanManageUsers(actor.Role) {
		return nil, pkgErrors.ErrForbidden
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码哈希失败", err)
		}
		user.Password = hash
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(actor auth.Actor, id int64) error {
	if !auth.CanManageUsers(actor.Role) {
		return pkgErrors.ErrForbidden
	}
	if id == actor.ID {
		return pkgErrors.New(pkgErrors.CodeBadRequest, "不能删除自己")
	}

	if _, err := s.userRepo.FindByID(id); err != nil {
		return err
	}
	return s.userRepo.Delete(id)
}

// ListQATesters 已验证QA列表, 所有已登录角色可见(供指派表单)
func (s *userService) ListQATesters() ([]*dto.QATesterResponse, error) {
	users, err := s.userRepo.ListVerifiedQA()
	if err != nil {
		return nil, err
	}

	return lo.Map(users, func(u *model.User, _ int) *dto.QATesterResponse {
		return &dto.QATesterResponse{ID: u.ID, Name: u.Name, Email: u.Email}
	}), nil
}
