package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/controllers"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/middleware"
	"github.com/yigit/agora/internal/pkg/metrics"
	"github.com/yigit/agora/internal/pkg/websocket"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controllers groups the HTTP handlers mounted under /api/v1
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Address    *controllers.AddressController
	Class      *controllers.ClassController
	Register   *controllers.RegisterController
	Note       *controllers.NoteController
	ReportCard *controllers.ReportCardController
	Enrollment *controllers.EnrollmentController
	Site       *controllers.SiteController
	Banner     *controllers.BannerController
	Feedback   *controllers.FeedbackController
	Convention *controllers.ConventionController
	Tourist    *controllers.TouristController
	News       *controllers.NewsController
}

// Options carries everything SetupRouter mounts besides the controllers
type Options struct {
	AuthMiddleware *middleware.AuthMiddleware
	FeedHandler    *websocket.Handler
	Metrics        *metrics.Metrics
	MetricsPath    string
	StoragePath    string
	Database       Pinger
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, opts Options) {
	authMiddleware := opts.AuthMiddleware

	router.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	if opts.StoragePath != "" {
		router.Static("/uploads", opts.StoragePath)
	}
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", healthHandler(opts.Database))

	staff := []models.RoleType{models.RoleAdministrator, models.RoleTeacher}
	school := []models.RoleType{models.RoleAdministrator, models.RoleTeacher, models.RoleStudent, models.RoleParent}
	pointStaff := []models.RoleType{models.RoleAgencyOperator, models.RolePointOperator}

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
	}
	v1.POST("/enrollments", c.Enrollment.Submit)
	v1.POST("/tourists", c.Tourist.Register)

	// eTour catalogue browsing is open to guests
	v1.GET("/sites", c.Site.SearchSites)
	v1.GET("/sites/nearby", c.Site.NearbySites)
	v1.GET("/sites/:id", c.Site.GetSite)
	v1.GET("/sites/:id/feedback", c.Feedback.ListFeedback)
	v1.GET("/tags", c.Site.ListTags)
	v1.GET("/refreshment-points/:id/menu", c.Convention.WeekMenu)
	v1.GET("/refreshment-points/:id/banners", c.Banner.ListBanners)
	v1.GET("/news", c.News.ListNews)
	v1.GET("/news/:id", c.News.GetNews)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", c.Auth.Logout)
		authenticated.PUT("/auth/password", c.Auth.ChangePassword)
		authenticated.GET("/auth/profile", c.Auth.Profile)

		if opts.FeedHandler != nil {
			authenticated.GET("/ws/feed", opts.FeedHandler.HandleConnection)
		}
	}

	setupSchoolRoutes(authenticated, c, authMiddleware, staff, school)
	setupTourismRoutes(authenticated, c, authMiddleware, pointStaff)
}

func setupSchoolRoutes(authenticated *gin.RouterGroup, c Controllers, authMiddleware *middleware.AuthMiddleware, staff, school []models.RoleType) {
	admin := authenticated.Group("")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdministrator))
	{
		users := admin.Group("/users")
		{
			users.GET("", c.User.ListUsers)
			users.POST("", c.User.CreateUser)
			users.GET("/:id", c.User.GetUser)
			users.PUT("/:id", c.User.UpdateUser)
			users.DELETE("/:id", c.User.DeleteUser)
			users.POST("/:id/roles", c.User.AssignRoles)
			users.DELETE("/:id/roles/:role", c.User.RemoveRole)
			users.GET("/:id/students", c.User.ListChildren)
			users.POST("/:id/students", c.User.AssignStudents)
			users.DELETE("/:id/students/:studentId", c.User.RemoveStudent)
		}

		admin.POST("/addresses", c.Address.CreateAddress)
		admin.DELETE("/addresses/:id", c.Address.DeleteAddress)
		admin.POST("/addresses/:id/teachings", c.Address.AssignTeachings)
		admin.DELETE("/addresses/:id/teachings/:teachingId", c.Address.RemoveTeaching)

		admin.POST("/teachings", c.Address.CreateTeaching)
		admin.PUT("/teachings/:id", c.Address.UpdateTeaching)
		admin.DELETE("/teachings/:id", c.Address.DeleteTeaching)

		admin.POST("/classes", c.Class.CreateClass)
		admin.PUT("/classes/:id", c.Class.UpdateClass)
		admin.DELETE("/classes/:id", c.Class.DeleteClass)
		admin.POST("/classes/:id/students", c.Class.EnrollStudent)
		admin.DELETE("/classes/:id/students/:studentId", c.Class.RemoveStudent)
		admin.POST("/classes/:id/teachers", c.Class.AssignTeacher)
		admin.DELETE("/classes/:id/teachers/:teacherId/teachings/:teachingId", c.Class.RemoveTeacher)

		enrollments := admin.Group("/enrollments")
		{
			enrollments.GET("", c.Enrollment.ListPending)
			enrollments.GET("/:id", c.Enrollment.GetRequest)
			enrollments.POST("/:id/accept", c.Enrollment.Accept)
			enrollments.POST("/:id/reject", c.Enrollment.Reject)
		}

		admin.GET("/monitoring", c.Enrollment.Monitoring)
	}

	teaching := authenticated.Group("")
	teaching.Use(authMiddleware.RoleRequired(staff...))
	{
		teaching.GET("/addresses", c.Address.ListAddresses)
		teaching.GET("/addresses/:id", c.Address.GetAddress)
		teaching.GET("/addresses/:id/classes", c.Class.ListClasses)
		teaching.GET("/teachings", c.Address.ListTeachings)
		teaching.GET("/teachings/:id", c.Address.GetTeaching)

		teaching.GET("/classes/:id", c.Class.GetClass)
		teaching.GET("/classes/:id/students", c.Class.ListStudents)
		teaching.GET("/classes/:id/teachers", c.Class.ListTeachers)

		teaching.GET("/classes/:id/register", c.Register.ViewRegister)
		teaching.PUT("/classes/:id/register", c.Register.SaveRegister)
		teaching.PUT("/delays/:id", c.Register.UpdateDelay)
		teaching.DELETE("/delays/:id", c.Register.DeleteDelay)
		teaching.POST("/justifications", c.Register.CreateJustification)
		teaching.PUT("/justifications/:id", c.Register.UpdateJustification)
		teaching.DELETE("/justifications/:id", c.Register.DeleteJustification)

		teaching.POST("/notes", c.Note.CreateNote)
		teaching.PUT("/notes/:id", c.Note.UpdateNote)
		teaching.DELETE("/notes/:id", c.Note.DeleteNote)

		teaching.GET("/classes/:id/report-cards", c.ReportCard.ListForClass)
		teaching.POST("/report-cards", c.ReportCard.CreateReportCard)
		teaching.PUT("/report-cards/:id", c.ReportCard.UpdateGrades)
		teaching.DELETE("/report-cards/:id", c.ReportCard.DeleteReportCard)
	}

	authenticated.GET("/classes/mine", authMiddleware.RoleRequired(models.RoleTeacher), c.Class.ListMyClasses)

	// Students and parents read their own records; the services check ownership
	records := authenticated.Group("")
	records.Use(authMiddleware.RoleRequired(school...))
	{
		records.GET("/students/:id/record", c.Register.StudentRecord)
		records.GET("/students/:id/justifications", c.Register.ListJustifications)
		records.GET("/students/:id/notes", c.Note.ListNotes)
		records.GET("/students/:id/report-cards", c.ReportCard.ListForStudent)
		records.GET("/notes/:id", c.Note.GetNote)
		records.GET("/report-cards/:id", c.ReportCard.GetReportCard)
	}
}

func setupTourismRoutes(authenticated *gin.RouterGroup, c Controllers, authMiddleware *middleware.AuthMiddleware, pointStaff []models.RoleType) {
	agency := authenticated.Group("")
	agency.Use(authMiddleware.RoleRequired(models.RoleAgencyOperator))
	{
		agency.POST("/cultural-objects", c.Site.CreateCulturalObject)
		agency.POST("/refreshment-points", c.Site.CreateRefreshmentPoint)
		agency.DELETE("/sites/:id", c.Site.DeleteSite)
		agency.POST("/sites/:id/tags", c.Site.AddTags)
		agency.DELETE("/sites/:id/tags/:tagId", c.Site.RemoveTag)

		agency.POST("/tags", c.Site.CreateTag)
		agency.PUT("/tags/:id", c.Site.UpdateTag)
		agency.DELETE("/tags/:id", c.Site.DeleteTag)

		agency.GET("/news/manage", c.News.ManageNews)
		agency.POST("/news", c.News.CreateNews)
		agency.PUT("/news/:id", c.News.UpdateNews)
		agency.DELETE("/news/:id", c.News.DeleteNews)

		agency.GET("/conventions/pending", c.Convention.ListPending)
		agency.POST("/conventions/:id/activate", c.Convention.Activate)
		agency.POST("/conventions/:id/reject", c.Convention.Reject)

		agency.GET("/tourists", c.Tourist.SearchTourists)
		agency.POST("/tourists/:id/activate", c.Tourist.ActivateTourist)
		agency.POST("/tourists/:id/disable", c.Tourist.DisableTourist)
		agency.DELETE("/tourists/:id", c.Tourist.DeleteTourist)
	}

	// Point operators act on their own points; the services check ownership
	points := authenticated.Group("")
	points.Use(authMiddleware.RoleRequired(pointStaff...))
	{
		points.PUT("/sites/:id", c.Site.UpdateSite)
		points.GET("/refreshment-points/mine", c.Site.ListMyPoints)
		points.GET("/refreshment-points/:id/statistics", c.Site.PointStatistics)
		points.GET("/refreshment-points/:id/conventions", c.Convention.History)
		points.POST("/refreshment-points/:id/conventions", c.Convention.RequestConvention)
		points.PUT("/refreshment-points/:id/menu/:day", c.Convention.SaveMenuDay)
		points.DELETE("/refreshment-points/:id/menu/:day", c.Convention.DeleteMenuDay)
		points.POST("/refreshment-points/:id/banners", c.Banner.CreateBanner)
		points.PUT("/banners/:id", c.Banner.ReplaceBanner)
		points.DELETE("/banners/:id", c.Banner.DeleteBanner)
	}

	touristCard := authenticated.Group("/tourists")
	touristCard.Use(authMiddleware.RoleRequired(models.RoleTourist, models.RoleAgencyOperator))
	{
		touristCard.GET("/:id", c.Tourist.GetTourist)
		touristCard.PUT("/:id", c.Tourist.UpdateTourist)
	}

	feedback := authenticated.Group("")
	feedback.Use(authMiddleware.RoleRequired(models.RoleTourist, models.RoleAgencyOperator))
	{
		feedback.DELETE("/feedback/:id", c.Feedback.DeleteFeedback)
	}

	tourist := authenticated.Group("")
	tourist.Use(authMiddleware.RoleRequired(models.RoleTourist))
	{
		tourist.POST("/sites/:id/feedback", c.Feedback.CreateFeedback)
		tourist.PUT("/feedback/:id", c.Feedback.UpdateFeedback)

		me := tourist.Group("/me")
		{
			me.GET("/bookmarks", c.Tourist.ListBookmarks)
			me.GET("/visited-sites", c.Tourist.VisitedSites)
			me.PUT("/bookmarks/:siteId", c.Tourist.AddBookmark)
			me.DELETE("/bookmarks/:siteId", c.Tourist.RemoveBookmark)
			me.GET("/search-preferences", c.Tourist.SearchPreferences)
			me.PUT("/search-preferences", c.Tourist.ReplaceSearchPreferences)
		}
	}

	// Generic preferences belong to every account, not only tourists
	authenticated.GET("/me/preferences", c.Tourist.GenericPreferences)
	authenticated.PUT("/me/preferences", c.Tourist.SaveGenericPreferences)
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if db != nil {
			pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(pingCtx); err != nil {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Database is unreachable").
					WithDetails(err.Error())
				ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
				return
			}
		}
		ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok", "database": "up"}))
	}
}
