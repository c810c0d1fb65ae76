package repository

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"qa-track/internal/dto"
	"qa-track/internal/model"
	pkgErrors "qa-track/pkg/responses"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int64) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByVerificationToken(token string) (*model.User, error)
	FindByResetToken(token string) (*model.User, error)
	Update(user *model.User) error
	UpdateLastLogin(id int64) error
	Delete(id int64) error
	List(q *dto.UserListQuery) ([]*model.User, int64, error)
	ListVerifiedQA() ([]*model.User, error)
	ClearExpiredTokens(now time.Time) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		// 并发注册会越过服务层的邮箱预检, 撞唯一索引时兜底映射为冲突
		if isDuplicateKey(err) {
			return pkgErrors.ErrEmailExists
		}
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "创建用户失败", err)
	}
	return nil
}

// isDuplicateKey 唯一索引冲突: gorm翻译后的错误或MySQL 1062
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (r *userRepository) FindByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询用户失败", err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询用户失败", err)
	}
	return &user, nil
}

func (r *userRepository) FindByVerificationToken(token string) (*model.User, error) {
	var user model.User
	err := r.db.Where("verification_token = ?", token).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询用户失败", err)
	}
	return &user, nil
}

func (r *userRepository) FindByResetToken(token string) (*model.User, error) {
	var user model.User
	err := r.db.Where("reset_token = ?", token).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询用户失败", err)
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新用户失败", err)
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(id int64) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("last_login_at", time.Now()).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新登录时间失败", err)
	}
	return nil
}

func (r *userRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除用户失败", err)
	}
	return nil
}

func (r *userRepository) List(q *dto.UserListQuery) ([]*model.User, int64, error) {
	db := r.db.Model(&model.User{})

	if q.Role != "" {
		db = db.Where("role = ?", q.Role)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("email LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计用户失败", err)
	}

	var users []*model.User
	err := db.Order("id DESC").Offset(q.GetOffset()).Limit(q.GetLimit()).Find(&users).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询用户列表失败", err)
	}
	return users, total, nil
}

func (r *userRepository) ListVerifiedQA() ([]*model.User, error) {
	var users []*model.User
	err := r.db.Where("role = ? AND is_verified = ?", "qa", true).Order("name ASC").Find(&users).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询QA列表失败", err)
	}
	return users, nil
}

// ClearExpiredTokens 清空已过期的一次性令牌, 返回受影响行数
func (r *userRepository) ClearExpiredTokens(now time.Time) (int64, error) {
	var affected int64

	res := r.db.Model(&model.User{}).
		Where("verification_token IS NOT NULL AND verification_token_expiry < ?", now).
		Updates(map[string]interface{}{"verification_token": nil, "verification_token_expiry": nil})
	if res.Error != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "清理验证令牌失败", res.Error)
	}
	affected += res.RowsAffected

	res = r.db.Model(&model.User{}).
		Where("reset_token IS NOT NULL AND reset_token_expiry < ?", now).
		Updates(map[string]interface{}{"reset_token": nil, "reset_token_expiry": nil})
	if res.Error != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "清理重置令牌失败", res.Error)
	}
	affected += res.RowsAffected

	return affected, nil
}
