package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sevapay.backend/internal/config"
	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/interfaces/http/handlers"
	"sevapay.backend/internal/interfaces/http/middleware"
	"sevapay.backend/internal/usecases"
	"sevapay.backend/pkg/jwt"
)

type routeDeps struct {
	cfg                 *config.Config
	jwtService          *jwt.JWTService
	partnerUsecase      *usecases.PartnerUsecase
	verificationUsecase *usecases.VerificationUsecase
	posUsecase          *usecases.PosUsecase
	walletUsecase       *usecases.WalletUsecase
	billpayUsecase      *usecases.BillpayUsecase
	adminUsecase        *usecases.AdminUsecase
	reportUsecase       *usecases.ReportUsecase
}

func setupRouter(deps routeDeps) *gin.Engine {
	if deps.cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.adminUsecase)
	partnerHandler := handlers.NewPartnerHandler(deps.partnerUsecase)
	verificationHandler := handlers.NewVerificationHandler(deps.verificationUsecase)
	posHandler := handlers.NewPosHandler(deps.posUsecase)
	walletHandler := handlers.NewWalletHandler(deps.walletUsecase)
	billpayHandler := handlers.NewBillpayHandler(deps.billpayUsecase)
	reportHandler := handlers.NewReportHandler(deps.reportUsecase)
	adminUserHandler := handlers.NewAdminUserHandler(deps.adminUsecase)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/change-password", middleware.Auth(deps.jwtService), middleware.RequireAdmin(), authHandler.ChangePassword)
		auth.GET("/me", middleware.Auth(deps.jwtService), authHandler.Me)
	}

	admin := v1.Group("")
	admin.Use(middleware.Auth(deps.jwtService), middleware.RequireAdmin())

	partners := admin.Group("/partners", middleware.RequireDepartment(entities.DepartmentPartners))
	{
		partners.POST("", partnerHandler.Create)
		partners.GET("", partnerHandler.List)
		partners.GET("/export", partnerHandler.Export)
		partners.POST("/bulk-delete", partnerHandler.BulkDelete)
		partners.GET("/:id", partnerHandler.Get)
		partners.PUT("/:id", partnerHandler.Update)
		partners.DELETE("/:id", partnerHandler.Delete)
		partners.POST("/:id/tpin", partnerHandler.SetTpin)
	}

	verification := admin.Group("/verification", middleware.RequireDepartment(entities.DepartmentVerification))
	{
		verification.GET("/pending", verificationHandler.ListPending)
		verification.GET("/:id", verificationHandler.GetPending)
		verification.POST("/:id/approve", verificationHandler.Approve)
		verification.POST("/:id/reject", verificationHandler.Reject)
	}

	pos := admin.Group("/pos", middleware.RequireDepartment(entities.DepartmentPos))
	{
		pos.POST("/machines", posHandler.CreateMachine)
		pos.GET("/machines", posHandler.ListMachines)
		pos.GET("/machines/export", posHandler.ExportMachines)
		pos.GET("/machines/bulk-upload/template", posHandler.BulkUploadTemplate)
		pos.POST("/machines/bulk-upload", posHandler.BulkUpload)
		pos.GET("/machines/:id", posHandler.GetMachine)
		pos.PUT("/machines/:id", posHandler.UpdateMachine)
		pos.DELETE("/machines/:id", posHandler.DeleteMachine)

		pos.POST("/mappings", posHandler.CreateMapping)
		pos.GET("/mappings", posHandler.ListMappings)
		pos.PUT("/mappings/:id", posHandler.UpdateMapping)
		pos.DELETE("/mappings/:id", posHandler.DeleteMapping)
	}

	wallets := admin.Group("/wallets", middleware.RequireDepartment(entities.DepartmentWallet))
	{
		wallets.POST("/push", middleware.Idempotency(5*time.Minute), walletHandler.Push)
		wallets.POST("/pull", middleware.Idempotency(5*time.Minute), walletHandler.Pull)
		wallets.GET("/:partnerId", walletHandler.Balance)
		wallets.GET("/:partnerId/ledger", walletHandler.Ledger)
	}

	reports := admin.Group("/reports", middleware.RequireDepartment(entities.DepartmentReports))
	{
		reports.GET("/transactions", reportHandler.List)
		reports.GET("/transactions/export", reportHandler.Export)
		reports.GET("/transactions/:id", reportHandler.Get)
	}

	admins := admin.Group("/admins")
	{
		admins.GET("/sub-admins", middleware.RequireSuperAdmin(), adminUserHandler.ListSubAdmins)
		admins.POST("/sub-admins", middleware.RequireSuperAdmin(), adminUserHandler.CreateSubAdmin)
		admins.PUT("/sub-admins/:id", middleware.RequireSuperAdmin(), adminUserHandler.UpdateSubAdmin)
		admins.DELETE("/sub-admins/:id", middleware.RequireSuperAdmin(), adminUserHandler.DeleteSubAdmin)

		admins.POST("/impersonate/stop", adminUserHandler.StopImpersonation)
		admins.POST("/impersonate/:partnerId", adminUserHandler.StartImpersonation)
		admins.POST("/partners/:partnerId/reset-password", middleware.RequireSuperAdmin(), adminUserHandler.ResetPartnerPassword)
	}

	// Partner-scoped flow, reached through impersonation tokens.
	billpay := v1.Group("/billpay")
	billpay.Use(middleware.Auth(deps.jwtService), middleware.RequirePartner())
	{
		billpay.GET("/categories", billpayHandler.Categories)
		billpay.GET("/billers", billpayHandler.Billers)
		billpay.POST("/sessions", billpayHandler.StartSession)
		billpay.GET("/sessions/:sessionId", billpayHandler.GetSession)
		billpay.POST("/sessions/:sessionId/amount", billpayHandler.SelectAmount)
		billpay.POST("/sessions/:sessionId/confirm", middleware.Idempotency(5*time.Minute), billpayHandler.Confirm)
		billpay.POST("/sessions/:sessionId/back", billpayHandler.Back)
		billpay.POST("/complaints", billpayHandler.RegisterComplaint)
	}

	return router
}
