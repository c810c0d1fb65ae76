package service

import (
	"qa-track/internal/model"
	"qa-track/internal/pkg/auth"
	"qa-track/internal/repository"
	pkgErrors "qa-track/pkg/responses"
)

// findVerifiedQA 校验指派对象: 必须存在且是已验证的QA
func findVerifiedQA(userRepo repository.UserRepository, id int64) (*model.User, error) {
	user, err := userRepo.FindByID(id)
	if err != nil {
		if err == pkgErrors.ErrRecordNotFound {
			return nil, pkgErrors.ErrAssigneeInvalid
		}
		return nil, err
	}
	if auth.Role(user.Role) != auth.RoleQA || !user.IsVerified {
		return nil, pkgErrors.ErrAssigneeInvalid
	}
	return user, nil
}
