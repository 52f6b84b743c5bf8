package api

import (
	"net/http"

	"fitplan/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	workoutService service.WorkoutService,
	generationService service.GenerationService,
	settingsService service.SettingsService,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)
	generationHandler := NewGenerationHandler(generationService)
	settingsHandler := NewSettingsHandler(settingsService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	// Everything below requires a valid session.
	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/generate", generationHandler.GeneratePlan)

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			// Registered before /:id so the literal path wins.
			workoutGroup.POST("/deactivate-all", workoutHandler.DeactivateAll)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/:id/progress", workoutHandler.SaveProgress)
			workoutGroup.POST("/:id/finish-cycle", workoutHandler.FinishCycle)
			workoutGroup.POST("/:id/export", workoutHandler.ExportSnapshot)
		}

		settingsGroup := protected.Group("/settings")
		{
			settingsGroup.GET("", settingsHandler.GetSettings)
			settingsGroup.PUT("", settingsHandler.UpdateSettings)
			settingsGroup.DELETE("", settingsHandler.DeleteProviderKey)
		}

		protected.PUT("/password", authHandler.ChangePassword)
	}
}
