package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"qa-track/internal/pkg/config"
	"qa-track/internal/repository"
)

// Scheduler 调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	userRepo      repository.UserRepository
	cronSchedules map[string]cron.EntryID // 存储任务ID，便于管理
}

// NewScheduler 创建调度器
func NewScheduler(userRepo repository.UserRepository, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		logger:        logger,
		userRepo:      userRepo,
		cronSchedules: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器
func (s *Scheduler) Start(cfg *config.Config) error {
	log := s.logger.Sugar()

	log.Info("启动定时任务调度器...")

	// 获取配置的 cron 表达式，默认每小时执行一次
	cronExpr := cfg.Cleanup.Cron
	if cronExpr == "" {
		cronExpr = "@hourly"
		log.Warnf("未配置cleanup.cron，使用默认值: %s", cronExpr)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		log.Info("执行定时任务: 过期令牌清理")
		cleared, err := s.userRepo.ClearExpiredTokens(time.Now())
		if err != nil {
			log.Errorf("过期令牌清理任务执行失败: %v", err)
			return
		}
		if cleared > 0 {
			log.Infof("过期令牌清理完成, 清理数量=%d", cleared)
		}
	})
	if err != nil {
		log.Errorf("注册过期令牌清理任务失败: cron=%v err=%v", cronExpr, err)
		return err
	}

	s.cronSchedules["token_cleanup"] = entryID
	log.Infof("过期令牌清理任务已注册: %s entry_id=%d", cronExpr, entryID)

	// 启动 cron
	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	// 停止 cron（等待正在执行的任务完成）
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}

// TriggerTokenCleanup 手动触发过期令牌清理（用于测试或手动触发）
func (s *Scheduler) TriggerTokenCleanup() (int64, error) {
	s.logger.Info("手动触发过期令牌清理")
	return s.userRepo.ClearExpiredTokens(time.Now())
}
