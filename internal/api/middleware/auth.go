package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"qa-track/internal/model"
	"qa-track/internal/pkg/auth"
	"qa-track/internal/pkg/jwt"
	"qa-track/internal/repository"
	"qa-track/pkg/constants"
	"qa-track/pkg/responses"
)

// AuthMiddleware JWT认证中间件
// 每次请求都按Token里的用户ID重新加载用户, 角色/验证状态变更立即生效,
// 被删除的用户会话随之失效
func AuthMiddleware(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			responses.ErrorWithCode(c, 401, "缺少Authorization Header")
			c.Abort()
			return
		}

		// 检查Bearer前缀
		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			responses.ErrorWithCode(c, 401, "Authorization格式错误")
			c.Abort()
			return
		}

		// 提取并验证Token
		token := strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix)
		claims, err := jwt.ValidateToken(token)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}

		// 重新加载用户, 不信任claims中的角色快照
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			responses.ErrorWithCode(c, 401, "未授权")
			c.Abort()
			return
		}

		if !user.IsVerified {
			responses.ErrorWithCode(c, 403, "邮箱未验证")
			c.Abort()
			return
		}

		c.Set(constants.ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser 从context取当前用户
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(constants.ContextUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

// CurrentActor 从context取授权主体
func CurrentActor(c *gin.Context) auth.Actor {
	user := CurrentUser(c)
	if user == nil {
		return auth.Actor{}
	}
	return auth.Actor{ID: user.ID, Role: auth.Role(user.Role)}
}
