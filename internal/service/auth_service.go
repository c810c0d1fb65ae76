package service

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"qa-track/internal/adapter/notification"
	"qa-track/internal/dto"
	"qa-track/internal/model"
	"qa-track/internal/pkg/config"
	"qa-track/internal/pkg/crypto"
	"qa-track/internal/pkg/jwt"
	"qa-track/internal/repository"
	"qa-track/pkg/constants"
	pkgErrors "qa-track/pkg/responses"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	VerifyEmail(token string) (*dto.UserResponse, error)
	RequestPasswordReset(email string) error
	ResetPassword(token, newPassword string) error
}

type authService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
	notifier  notification.Notifier
	logger    *zap.Logger
}

func NewAuthService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	notifier notification.Notifier,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

// Register 自助注册, 创建未验证用户并下发验证令牌(24h有效)
func (s *authService) Register(req *dto.RegisterRequest) (*dto.UserResponse, error) {
	// 邮箱唯一性
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, pkgErrors.ErrEmailExists
	} else if err != pkgErrors.ErrRecordNotFound {
		return nil, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码哈希失败", err)
	}

	token := crypto.NewOneShotToken()
	expiry := time.Now().Add(time.Duration(s.cfg.Auth.JWT.VerificationTokenExpire) * time.Second)

	user := &model.User{
		Email:                   req.Email,
		Name:                    req.Name,
		Role:                    req.Role,
		Password:                hash,
		IsVerified:              false,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.audit(user.ID, constants.AuditActionRegister, map[string]interface{}{"email": user.Email, "role": user.Role})

	notification.Dispatch(s.notifier, s.logger, &notification.Message{
		Event:     notification.EventVerificationRequested,
		Recipient: user.Email,
		Subject:   "请验证你的邮箱",
		Payload:   map[string]interface{}{"name": user.Name, "token": token},
	})

	return dto.NewUserResponse(user), nil
}

// Login 登录
// 凭证错误→401; 未验证→403; 成功签发7天会话Token
func (s *authService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if err == pkgErrors.ErrRecordNotFound {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(req.Password, user.Password) {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, pkgErrors.ErrUserNotVerified
	}

	token, err := jwt.GenerateSessionToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成Token失败", err)
	}

	_ = s.userRepo.UpdateLastLogin(user.ID)
	s.audit(user.ID, constants.AuditActionLogin, nil)

	return &dto.LoginResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	}, nil
}

// VerifyEmail 邮箱验证, 令牌单次使用
func (s *authService) VerifyEmail(token string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByVerificationToken(token)
	if err != nil {
		if err == pkgErrors.ErrRecordNotFound {
			return nil, pkgErrors.ErrOneShotTokenBad
		}
		return nil, err
	}

	if user.VerificationTokenExpiry == nil || user.VerificationTokenExpiry.Before(time.Now()) {
		return nil, pkgErrors.ErrOneShotTokenBad
	}

	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpiry = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.audit(user.ID, constants.AuditActionVerifyEmail, nil)

	notification.Dispatch(s.notifier, s.logger, &notification.Message{
		Event:     notification.EventWelcome,
		Recipient: user.Email,
		Subject:   "欢迎加入",
		Payload:   map[string]interface{}{"name": user.Name},
	})

	return dto.NewUserResponse(user), nil
}

// RequestPasswordReset 申请密码重置
// 无论邮箱是否存在都返回成功, 不泄露用户存在性
func (s *authService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if err == pkgErrors.ErrRecordNotFound {
			return nil
		}
		return err
	}

	token := crypto.NewOneShotToken()
	expiry := time.Now().Add(time.Duration(s.cfg.Auth.JWT.ResetTokenExpire) * time.Second)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	s.audit(user.ID, constants.AuditActionResetRequest, nil)

	notification.Dispatch(s.notifier, s.logger, &notification.Message{
		Event:     notification.EventResetRequested,
		Recipient: user.Email,
		Subject:   "密码重置",
		Payload:   map[string]interface{}{"name": user.Name, "token": token},
	})

	return nil
}

// ResetPassword 重置密码, 令牌单次使用(1h有效)
func (s *authService) ResetPassword(token, newPassword string) error {
	user, err := s.userRepo.FindByResetToken(token)
	if err != nil {
		if err == pkgErrors.ErrRecordNotFound {
			return pkgErrors.ErrOneShotTokenBad
		}
		return err
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		return pkgErrors.ErrOneShotTokenBad
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码哈希失败", err)
	}

	user.Password = hash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	s.audit(user.ID, constants.AuditActionResetPassword, nil)
	return nil
}

// audit 写审计日志, 失败只记log不影响主流程
func (s *authService) audit(userID int64, action string, detail map[string]interface{}) {
	entry := &model.AuditLog{UserID: userID, Action: action}
	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			entry.Detail = datatypes.JSON(raw)
		}
	}
	if err := s.auditRepo.Create(entry); err != nil {
		s.logger.Warn("审计日志写入失败", zap.Int64("user_id", userID), zap.String("action", action), zap.Error(err))
	}
}
