package router

import (
	"fmt"

	"github.com/ztrve/lover-ledger/internal/config"
	"github.com/ztrve/lover-ledger/internal/handler"
	"github.com/ztrve/lover-ledger/internal/middleware"
	"github.com/ztrve/lover-ledger/internal/notice"
	"github.com/ztrve/lover-ledger/internal/service"
	"github.com/ztrve/lover-ledger/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter 组装存储、服务、通知注册表和全部路由
func SetupRouter(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLog(logger), gin.Recovery())

	// 存储
	ledgerStore := store.NewLedgerStore(db)
	memberStore := store.NewMemberStore(db)
	noticeStore := store.NewNoticeStore(db)
	userStore := store.NewUserStore(db)

	// 通知注册表：启动时枚举已知 handler，重复注册直接失败
	registry := notice.NewRegistry(noticeStore, logger)
	if err := registry.Register(notice.NewLedgerInviteHandler(memberStore, ledgerStore)); err != nil {
		return nil, fmt.Errorf("register notice handlers: %w", err)
	}

	// 服务
	noticeSvc := service.NewNoticeService(db, noticeStore, registry)
	ledgerSvc := service.NewLedgerService(db, ledgerStore, memberStore, userStore, noticeSvc)
	entrySvc := service.NewEntryService(db, ledgerStore, memberStore)

	// ====== API ======
	api := r.Group("/api")

	// 登录/注册接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer, db),
		middleware.AuditMiddleware(db, cfg.Security.EncryptionKey),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db))

	ledgerHandler := handler.NewLedgerHandler(ledgerSvc)
	protected.GET("/ledgers", ledgerHandler.MyLedgers)
	protected.GET("/ledgers/:id", ledgerHandler.GetDetail)
	protected.POST("/ledgers", ledgerHandler.Create)
	protected.PUT("/ledgers/:id", ledgerHandler.Update)
	protected.DELETE("/ledgers/:id", ledgerHandler.Remove)

	entryHandler := handler.NewEntryHandler(entrySvc)
	protected.POST("/ledgers/:id/entries", entryHandler.CreateEntry)
	protected.GET("/ledgers/:id/entries", entryHandler.ListEntries)
	protected.DELETE("/ledgers/:id/entries/:entryId", entryHandler.DeleteEntry)
	protected.GET("/ledgers/:id/summary", entryHandler.GetSummary)

	exportHandler := handler.NewExportHandler(entrySvc)
	protected.GET("/ledgers/:id/export/csv", exportHandler.ExportCSV)

	noticeHandler := handler.NewNoticeHandler(noticeSvc)
	protected.GET("/notices", noticeHandler.MyNotices)
	protected.POST("/notices/:id/agree", noticeHandler.Agree)
	protected.POST("/notices/:id/disagree", noticeHandler.Disagree)

	logHandler := handler.NewLogHandler(db, cfg.Security.EncryptionKey)
	protected.GET("/logs", logHandler.ListLogs)

	return r, nil
}
