package repository

import (
	"gorm.io/gorm"

	"qa-track/internal/model"
	pkgErrors "qa-track/pkg/responses"
)

type AuditLogRepository interface {
	Create(entry *model.AuditLog) error
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(entry *model.AuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "写入审计日志失败", err)
	}
	return nil
}
