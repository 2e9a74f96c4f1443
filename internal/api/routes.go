package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/ai"
	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/auth"
	"resumebuilder/internal/resume"
)

// Dependencies 汇总路由需要的全部句柄，由 cmd/api 构造后传入。
type Dependencies struct {
	DB                *gorm.DB
	Resumes           *resume.Service
	AI                *ai.Gateway
	Auth              *auth.AuthService
	RateCounter       middleware.RateCounter
	AIRequestsPerHour int
	MaxImageBytes     int64
	Logger            *slog.Logger
}

// RegisterRoutes 注册 /api 下的业务路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	resumeHandler := NewResumeHandler(deps.Resumes, deps.MaxImageBytes)
	aiHandler := NewAIHandler(deps.AI, deps.Resumes)
	authHandler := NewAuthHandler(deps.DB, deps.Auth, deps.Logger)
	authMiddleware := middleware.AuthMiddleware(deps.Auth)
	aiRateLimit := middleware.HourlyRateLimit(deps.RateCounter, "ai", deps.AIRequestsPerHour)

	apiGroup := router.Group("/api")
	{
		aiGroup := apiGroup.Group("/ai")
		{
			aiGroup.POST("/enhance-pro-sum", aiRateLimit, aiHandler.EnhanceProfessionalSummary)
			aiGroup.POST("/enhance-job-desc", aiRateLimit, aiHandler.EnhanceJobDescription)
			aiGroup.POST("/upload-resume", authMiddleware, aiHandler.UploadResume)
		}

		resumeGroup := apiGroup.Group("/resumes")
		{
			resumeGroup.GET("/public/:resumeId", resumeHandler.GetPublicResume)

			owned := resumeGroup.Group("")
			owned.Use(authMiddleware)
			owned.POST("/create", resumeHandler.CreateResume)
			owned.PUT("/update", resumeHandler.UpdateResume)
			owned.DELETE("/delete/:resumeId", resumeHandler.DeleteResume)
			owned.GET("/get/:resumeId", resumeHandler.GetResume)
		}

		userGroup := apiGroup.Group("/users")
		{
			userGroup.POST("/register", authHandler.Register)
			userGroup.POST("/login", authHandler.Login)
			userGroup.GET("/data", authMiddleware, authHandler.CurrentUser)
			userGroup.GET("/resumes", authMiddleware, resumeHandler.ListResumes)
		}
	}
}
