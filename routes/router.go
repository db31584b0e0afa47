package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kalougata/klgt-portal/config"
	"github.com/kalougata/klgt-portal/controllers"
	"github.com/kalougata/klgt-portal/middleware"
	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, portal *services.Portal, metrics *utils.Metrics) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		utils.Sugar.Warnf("gin access log disabled: %v", err)
		r.Use(gin.Recovery())
	}
	r.Use(metrics.Middleware())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authController := controllers.NewAuthController(portal, metrics)
	memberController := controllers.NewMemberController(portal, metrics)
	adminController := controllers.NewAdminController(portal, metrics)
	registerLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	tipsLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", registerLimiter.Middleware(), authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", authController.Logout)
	authGroup.GET("/session", authController.Session)
	authGroup.POST("/recover", authController.Recover)

	api.GET("/leaderboard", memberController.Leaderboard)
	membersGroup := api.Group("/members")
	membersGroup.GET("", memberController.List)
	membersGroup.GET("/:id", memberController.Profile)
	membersGroup.PATCH("/:id/profile", memberController.UpdateProfile)
	membersGroup.GET("/:id/tips", tipsLimiter.Middleware(), memberController.Tips)

	adminGroup := api.Group("/admin")
	adminGroup.POST("/unlock", adminController.Unlock)
	adminGroup.POST("/lock", adminController.Lock)
	adminGroup.GET("/status", adminController.Status)

	gated := adminGroup.Group("")
	gated.Use(middleware.AdminRequired(portal.Admin))
	gated.POST("/scan", adminController.Scan)
	gated.GET("/search", adminController.Search)
	gated.POST("/select", adminController.Select)
	gated.DELETE("/selection", adminController.ClearSelection)
	gated.POST("/award", adminController.Award)
	gated.POST("/deduct", adminController.Deduct)
	gated.GET("/activities", adminController.Activities)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
