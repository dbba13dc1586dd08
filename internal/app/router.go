package app

import (
	"skillorbit_backend/docs"
	"skillorbit_backend/internal/middleware"
	"skillorbit_backend/internal/model"
	"skillorbit_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware())
	{
		a.registerCommonRoutes(authGroup, c)
		a.registerSharedContentRoutes(authGroup, c)
		a.registerManagerRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerCommonRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.Profile)
	rg.GET("/trainings", c.training.ListTrainings)
	rg.GET("/trainings/:id", c.training.GetTraining)
	rg.GET("/assignments/my", c.training.MyTrainings)
}

// Shared-content routes carry no role middleware: whether the caller is a
// trainer for the training or an assigned employee is decided per training
// inside the service.
func (a *App) registerSharedContentRoutes(rg *gin.RouterGroup, c *controllers) {
	sc := rg.Group("/shared-content")
	{
		// Trainer side
		sc.POST("/assignments", c.shared.ShareAssignment)
		sc.GET("/trainer/assignments/:trainingId", c.shared.OpenAssignmentForTrainer)
		sc.POST("/feedback", c.shared.ShareFeedback)
		sc.GET("/trainer/feedback/:trainingId", c.shared.OpenFeedbackForTrainer)
		sc.GET("/assignments/:trainingId/submissions", c.shared.ListSubmissions)
		sc.GET("/feedback/:trainingId/responses", c.shared.ListFeedbackResponses)

		// Employee side
		sc.GET("/assignments/:trainingId", c.shared.StartExam)
		sc.POST("/assignments/submit", c.shared.SubmitExam)
		sc.GET("/assignments/:trainingId/result", c.shared.ViewResult)
		sc.GET("/feedback/:trainingId", c.shared.GetFeedbackForm)
		sc.POST("/feedback/submit", c.shared.SubmitFeedback)
	}
}

func (a *App) registerManagerRoutes(rg *gin.RouterGroup, c *controllers) {
	manager := rg.Group("")
	manager.Use(middleware.RoleMiddleware(model.Manager))
	{
		manager.POST("/trainings", c.training.CreateTraining)
		manager.DELETE("/trainings/:id", c.training.DeleteTraining)
		manager.POST("/assignments", c.training.AssignTraining)
		manager.GET("/assignments/team", c.training.TeamAssignments)
		manager.DELETE("/assignments/:trainingId/:employee", c.training.UnassignTraining)
	}
}
