package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/devcamper/internal/app/controllers"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/middleware"
)

// ResultSources back the paginated list endpoints
type ResultSources struct {
	Bootcamps middleware.ResultSource
	Courses   middleware.ResultSource
	Users     middleware.ResultSource
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	bootcampController *controllers.BootcampController,
	courseController *controllers.CourseController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
	sources ResultSources,
	maxUpload int64,
) {
	// API version group
	v1 := router.Group("/api/v1")

	protect := authMiddleware.Protect()
	publishers := authMiddleware.Authorize(models.RolePublisher, models.RoleAdmin)

	// --- Bootcamp routes ---
	bootcamps := v1.Group("/bootcamps")
	{
		bootcamps.GET("", middleware.AdvancedResults(sources.Bootcamps), bootcampController.GetBootcamps)
		bootcamps.GET("/radius/:zipcode/:distance", bootcampController.GetBootcampsInRadius)
		bootcamps.GET("/:id", bootcampController.GetBootcamp)

		bootcamps.POST("", protect, publishers, bootcampController.CreateBootcamp)
		bootcamps.PUT("/:id", protect, publishers, bootcampController.UpdateBootcamp)
		bootcamps.DELETE("/:id", protect, publishers, bootcampController.DeleteBootcamp)
		bootcamps.PUT("/:id/photo", protect, publishers, middleware.LimitUpload(maxUpload), bootcampController.UploadPhoto)

		// courses nested under their bootcamp
		bootcamps.GET("/:id/courses", courseController.GetBootcampCourses)
		bootcamps.POST("/:id/courses", protect, publishers, courseController.AddCourse)
	}

	// --- Course routes ---
	courses := v1.Group("/courses")
	{
		courses.GET("", middleware.AdvancedResults(sources.Courses), courseController.GetCourses)
		courses.GET("/:id", courseController.GetCourse)

		courses.PUT("/:id", protect, publishers, courseController.UpdateCourse)
		courses.DELETE("/:id", protect, publishers, courseController.DeleteCourse)
	}

	// --- Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/forgotpassword", authController.ForgotPassword)
		auth.PUT("/resetpassword/:resettoken", authController.ResetPassword)

		auth.POST("/logout", protect, authController.Logout)
		auth.GET("/me", protect, authController.GetMe)
		auth.PUT("/updatedetails", protect, authController.UpdateDetails)
		auth.PUT("/updatepassword", protect, authController.UpdatePassword)
	}

	// --- Admin user management ---
	users := v1.Group("/users")
	users.Use(protect, authMiddleware.Authorize(models.RoleAdmin))
	{
		users.GET("", middleware.AdvancedResults(sources.Users), userController.GetUsers)
		users.GET("/:id", userController.GetUser)
		users.POST("", userController.CreateUser)
		users.PUT("/:id", userController.UpdateUser)
		users.DELETE("/:id", userController.DeleteUser)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}))
	})
}
