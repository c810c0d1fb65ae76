package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"qa-track/internal/pkg/config"
	"qa-track/pkg/constants"
	pkgErrors "qa-track/pkg/responses"
)

// SessionClaims 会话Claims
// 只携带用户ID等最小信息; 角色/验证状态每次请求都从数据库重新加载,
// claims里的role仅供客户端展示
type SessionClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateSessionToken 签发会话Token, 默认7天有效
func GenerateSessionToken(userID int64, email, role string) (string, error) {
	cfg := config.GlobalConfig.Auth.JWT

	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   constants.JWTTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.SessionExpire) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken 解析Token
func ParseToken(tokenString string) (*SessionClaims, error) {
	cfg := config.GlobalConfig.Auth.JWT

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})

	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, "解析Token失败", err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, pkgErrors.ErrInvalidToken
}

// ValidateToken 验证Token有效性
func ValidateToken(tokenString string) (*SessionClaims, error) {
	claims, err := ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 检查是否过期
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, pkgErrors.ErrTokenExpired
	}

	if claims.Type != constants.JWTTypeSession {
		return nil, pkgErrors.ErrInvalidToken
	}

	return claims, nil
}
