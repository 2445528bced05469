package app

import (
	"lingua_backend/docs"
	"lingua_backend/internal/config"
	"lingua_backend/internal/middleware"
	"lingua_backend/internal/model"
	"lingua_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		exams := authGroup.Group("/exams")
		{
			exams.GET("/visible", c.examStudent.VisibleExams)
			exams.GET("/:testId", c.examStudent.GetExam)
			exams.POST("/:testId/start", c.examStudent.Start)
			exams.GET("/:testId/time", c.examStudent.RemainingTime)
			exams.POST("/:testId/answer", c.examStudent.SaveAnswer)
			exams.POST("/:testId/warning", c.examStudent.RecordWarning)
			exams.POST("/:testId/submit", c.examStudent.Submit)
			exams.GET("/:testId/result", c.examStudent.GetResult)
		}

		streak := authGroup.Group("/streak")
		{
			streak.GET("", c.streak.GetStreak)
			streak.POST("/checkin", c.streak.CheckIn)
			streak.GET("/leaderboard", c.streak.Leaderboard)
		}
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/exams", c.examAdmin.CreateExam)
		admin.GET("/exams", c.examAdmin.ListExams)
		admin.GET("/exams/:testId", c.examAdmin.GetExam)
		admin.PUT("/exams/:testId", c.examAdmin.UpdateExam)
		admin.DELETE("/exams/:testId", c.examAdmin.DeleteExam)

		admin.POST("/exams/:testId/questions", c.examAdmin.AddQuestion)
		admin.PUT("/exams/:testId/questions/reorder", c.examAdmin.ReorderQuestions)
		admin.PUT("/exams/:testId/questions/:questionId", c.examAdmin.UpdateQuestion)
		admin.DELETE("/exams/:testId/questions/:questionId", c.examAdmin.DeleteQuestion)

		admin.POST("/exams/:testId/visibility", c.examAdmin.SetVisibility)
		admin.GET("/exams/:testId/visibility", c.examAdmin.GetVisibility)
		admin.DELETE("/exams/:testId/visibility/:ruleId", c.examAdmin.RemoveVisibility)

		admin.GET("/exams/:testId/submissions", c.examAdmin.ListSubmissions)
		admin.POST("/submissions/:submissionId/reopen", c.examAdmin.ReopenSubmission)
		admin.POST("/submissions/:submissionId/reset", c.examAdmin.ResetSubmission)
	}
}
