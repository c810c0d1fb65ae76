package router

import (
	"qa-track/internal/adapter/notification"
	"qa-track/internal/api/handler"
	"qa-track/internal/api/middleware"
	"qa-track/internal/pkg/config"
	"qa-track/internal/repository"
	"qa-track/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup 设置路由
func Setup(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 获取数据库连接
	db := cfg.DB.(*gorm.DB)

	// 初始化Repository
	userRepo := repository.NewUserRepository(db)
	testRepo := repository.NewTestCaseRepository(db)
	bugRepo := repository.NewBugReportRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// 通知适配器
	notifier := notification.NewNotifier(&cfg.Notify, logger)

	// 初始化Service
	authService := service.NewAuthService(cfg, userRepo, auditRepo, notifier, logger)
	userService := service.NewUserService(userRepo)
	testService := service.NewTestCaseService(cfg, testRepo, userRepo, notifier, logger)
	bugService := service.NewBugReportService(cfg, bugRepo, userRepo, notifier, logger)
	statsService := service.NewStatsService(testRepo, bugRepo)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	testHandler := handler.NewTestCaseHandler(testService)
	bugHandler := handler.NewBugReportHandler(bugService)
	statsHandler := handler.NewStatsHandler(statsService)

	// 认证相关(无需token)
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/verify-email", authHandler.VerifyEmail)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	// 需要认证的路由
	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware(userRepo))
	{
		// 认证信息
		authed.GET("/auth/me", authHandler.GetMe)

		// 测试用例管理
		testGroup := authed.Group("/tests")
		{
			testGroup.GET("", testHandler.List)                    // 列表查询（按角色收窄）
			testGroup.POST("", testHandler.Create)                 // 创建用例（仅PM）
			testGroup.GET("/:id", testHandler.Get)                 // 获取详情
			testGroup.PUT("/:id", testHandler.Update)              // 更新用例（仅PM）
			testGroup.PUT("/:id/result", testHandler.RecordResult) // 记录测试结果（被指派QA）
			testGroup.DELETE("/:id", testHandler.Delete)           // 删除用例（仅PM）
		}

		// Bug管理
		bugGroup := authed.Group("/bugs")
		{
			bugGroup.GET("", bugHandler.List)                 // 列表查询（按角色收窄）
			bugGroup.POST("", bugHandler.Create)              // 提交Bug（仅QA）
			bugGroup.GET("/:id", bugHandler.Get)              // 获取详情
			bugGroup.PUT("/:id", bugHandler.Update)           // 更新Bug
			bugGroup.DELETE("/:id", bugHandler.Delete)        // 删除Bug（仅PM）
			bugGroup.POST("/:id/convert", bugHandler.Convert) // Bug转测试用例（仅PM）
		}

		// 用户管理
		userGroup := authed.Group("/users")
		{
			userGroup.GET("/qa-testers", userHandler.QATesters) // 可指派QA列表（所有角色）
			userGroup.GET("", userHandler.List)                 // 用户列表（仅PM）
			userGroup.POST("", userHandler.Create)              // 创建用户（仅PM）
			userGroup.GET("/:id", userHandler.Get)              // 用户详情（仅PM）
			userGroup.PUT("/:id", userHandler.Update)           // 更新用户（仅PM）
			userGroup.DELETE("/:id", userHandler.Delete)        // 删除用户（仅PM）
		}

		// 统计与导出
		statsGroup := authed.Group("/stats")
		{
			statsGroup.GET("", statsHandler.Stats)         // 统计总览（仅PM）
			statsGroup.GET("/export", statsHandler.Export) // 导出xlsx报表（仅PM）
		}
	}

	return r
}
