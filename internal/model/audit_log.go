package model

import "gorm.io/datatypes"

// AuditLog 认证操作审计日志
// 每次成功的认证类变更(注册/登录/验证/重置)写入一条
type AuditLog struct {
	BaseModel
	UserID int64          `gorm:"not null;index" json:"user_id"`
	Action string         `gorm:"size:30;not null;index" json:"action"`
	Detail datatypes.JSON `gorm:"type:json" json:"detail,omitempty"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}
