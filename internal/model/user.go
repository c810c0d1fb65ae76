package model

import "time"

// User 用户模型
// 角色三选一: pm/qa/eng; 一次性令牌单次使用且有过期时间
type User struct {
	BaseModelWithSoftDelete
	Email                   string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Name                    string     `gorm:"size:100;not null" json:"name"`
	Role                    string     `gorm:"size:10;not null;index" json:"role"` // pm/qa/eng
	Password                string     `gorm:"size:255;not null" json:"-"`         // bcrypt哈希, 不返回到前端
	IsVerified              bool       `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken       *string    `gorm:"size:64;index" json:"-"`
	VerificationTokenExpiry *time.Time `json:"-"`
	ResetToken              *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry        *time.Time `json:"-"`
	LastLoginAt             *time.Time `json:"last_login_at,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
