package router

import (
	"errors"
	"time"

	"github.com/collegebuddy/api/config"
	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/handlers"
	admin_handlers "github.com/collegebuddy/api/handlers/admin"
	auth_handlers "github.com/collegebuddy/api/handlers/auth"
	content_handlers "github.com/collegebuddy/api/handlers/content"
	course_handlers "github.com/collegebuddy/api/handlers/course"
	dashboard_handlers "github.com/collegebuddy/api/handlers/dashboard"
	earning_handlers "github.com/collegebuddy/api/handlers/earning"
	enrollment_handlers "github.com/collegebuddy/api/handlers/enrollment"
	gig_handlers "github.com/collegebuddy/api/handlers/gig"
	notification_handlers "github.com/collegebuddy/api/handlers/notification"
	payout_handlers "github.com/collegebuddy/api/handlers/payout"
	referral_handlers "github.com/collegebuddy/api/handlers/referral"
	subject_handlers "github.com/collegebuddy/api/handlers/subject"
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/services/account"
	"github.com/collegebuddy/api/services/catalog"
	"github.com/collegebuddy/api/services/earnings"
	"github.com/collegebuddy/api/services/gig"
	"github.com/collegebuddy/api/services/mail"
	"github.com/collegebuddy/api/services/payment"
	"github.com/collegebuddy/api/services/payout"
	"github.com/collegebuddy/api/services/referral"
	"github.com/collegebuddy/api/services/storage"
	"github.com/collegebuddy/api/utils"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/collegebuddy/api/utils/cache"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/gofiber/fiber/v2"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is not set")

// Infra holds the external clients the routes depend on. Nil fields fall back to
// in-process stand-ins.
type Infra struct {
	Cache  cache.Store
	Mailer mail.Mailer
	Files  storage.Store
	Orders payment.OrderCreator
}

func SetupRoutes(app *fiber.App, store database.Storage, env *config.EnviornmentVariable, infra Infra) error {
	if env.JWT_SECRET == "" {
		return ErrMissingJWTSecret
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        env.JWT_ISSUER,
	})

	db := store.GetDB()

	if infra.Cache == nil {
		infra.Cache = cache.NewMemoryCache()
	}
	if infra.Mailer == nil {
		infra.Mailer = mail.LogMailer{}
	}
	if infra.Files == nil {
		infra.Files = storage.Disabled{}
	}

	// Services
	notifier := services.NewNotificationService(db)
	emails := services.NewEmailService(infra.Mailer, env.APP_URL)
	earningService := earnings.NewService(db, env.Location())
	referralService := referral.NewService(db, infra.Cache, notifier, earningService)
	accountService := account.NewService(db, jwtManager, referralService, emails, infra.Cache)
	catalogService := catalog.NewService(db, infra.Files)
	gigService := gig.NewService(db, notifier)
	ledger := payout.NewLedger(db, notifier)
	gate := payment.NewGate(db, infra.Orders, payment.GateConfig{
		KeyID:       env.RAZORPAY_KEY_ID,
		KeySecret:   env.RAZORPAY_KEY_SECRET,
		SignupBonus: env.REFERRAL_SIGNUP_BONUS,
	}, referralService, notifier)

	// Middleware
	bruteForceProtection := middleware.NewBruteForceProtection(infra.Cache)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(accountService, bruteForceProtection)
	referralHandler := referral_handlers.NewReferralHandler(referralService)
	earningHandler := earning_handlers.NewEarningHandler(earningService)
	payoutHandler := payout_handlers.NewPayoutHandler(ledger)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(gate, catalogService)
	courseHandler := course_handlers.NewCourseHandler(catalogService)
	subjectHandler := subject_handlers.NewSubjectHandler(catalogService)
	contentHandler := content_handlers.NewContentHandler(catalogService)
	gigHandler := gig_handlers.NewGigHandler(gigService)
	userHandler := admin_handlers.NewUserHandler(accountService)
	notificationHandler := notification_handlers.NewNotificationHandler(notifier)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(catalogService, earningService, referralService)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	})
	app.Use(middleware.Metrics())

	app.Get("/health", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))
	app.Get("/metrics", middleware.MetricsHandler())

	v1 := app.Group("/api/v1")

	// Auth routes (public)
	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Get("/verify", authHandler.VerifyEmail)
	authRoutes.Post("/forgot-password", authHandler.ForgotPassword)
	authRoutes.Post("/reset-password", authHandler.ResetPassword)

	// Auth routes (protected)
	authRoutes.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authRoutes.Get("/me", authMiddleware.Required(), authHandler.Me)
	authRoutes.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)
	authRoutes.Post("/send-otp", authMiddleware.Required(), authHandler.SendOTP)
	authRoutes.Post("/verify-otp", authMiddleware.Required(), authHandler.VerifyOTP)

	// Course catalogue (public)
	v1.Get("/courses", courseHandler.ListCourses)
	v1.Get("/courses/:id", courseHandler.GetCourse)

	// Admin area (ADMIN and SUPERADMIN), mutations are audited
	adminRoutes := v1.Group("/admin", authMiddleware.Required(), authMiddleware.RequireArea(auth.AreaAdmin))

	adminRoutes.Get("/payouts", payoutHandler.AdminList)
	adminRoutes.Patch("/payouts/:id", middleware.AdminAuditLog(db, "payout"), payoutHandler.Transition)

	adminGigs := adminRoutes.Group("/gigs", middleware.AdminAuditLog(db, "gig"))
	adminGigs.Post("/", gigHandler.Create)
	adminGigs.Put("/:id", gigHandler.Update)
	adminGigs.Delete("/:id", gigHandler.Delete)
	adminGigs.Post("/:id/award", gigHandler.Award)

	adminRoutes.Post("/notes", middleware.AdminAuditLog(db, "note"), contentHandler.CreateNote)
	adminRoutes.Post("/notes/upload", middleware.AdminAuditLog(db, "note"), contentHandler.UploadNote)
	adminRoutes.Delete("/notes/:id", middleware.AdminAuditLog(db, "note"), contentHandler.DeleteNote)
	adminRoutes.Post("/lectures", middleware.AdminAuditLog(db, "lecture"), contentHandler.CreateLecture)
	adminRoutes.Delete("/lectures/:id", middleware.AdminAuditLog(db, "lecture"),
		contentHandler.DeleteContent(func() interface{} { return &model.Lecture{} }))
	adminRoutes.Post("/live-sessions", middleware.AdminAuditLog(db, "live_session"), contentHandler.CreateLiveSession)
	adminRoutes.Delete("/live-sessions/:id", middleware.AdminAuditLog(db, "live_session"),
		contentHandler.DeleteContent(func() interface{} { return &model.LiveSession{} }))
	adminRoutes.Post("/assignments", middleware.AdminAuditLog(db, "assignment"), contentHandler.CreateAssignment)
	adminRoutes.Delete("/assignments/:id", middleware.AdminAuditLog(db, "assignment"),
		contentHandler.DeleteContent(func() interface{} { return &model.Assignment{} }))

	// Super admin area
	superAdmin := v1.Group("/super-admin", authMiddleware.Required(), authMiddleware.RequireArea(auth.AreaSuperAdmin))

	users := superAdmin.Group("/users", middleware.AdminAuditLog(db, "user"))
	users.Get("/", userHandler.ListUsers)
	users.Post("/", userHandler.CreateUser)
	users.Patch("/:id/role", userHandler.UpdateRole)
	users.Delete("/:id", userHandler.DeleteUser)

	admins := superAdmin.Group("/admins", middleware.AdminAuditLog(db, "admin"))
	admins.Get("/", userHandler.ListAdmins)
	admins.Post("/", userHandler.CreateAdmin)
	admins.Patch("/:id/role", userHandler.UpdateRole)
	admins.Delete("/:id", userHandler.DeleteUser)

	superAdmin.Get("/referrals", referralHandler.ListAll)
	superAdmin.Patch("/referrals/:id", middleware.AdminAuditLog(db, "referral"), referralHandler.Review)

	courses := superAdmin.Group("/courses", middleware.AdminAuditLog(db, "course"))
	courses.Post("/", courseHandler.CreateCourse)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)
	courses.Post("/:id/subjects", subjectHandler.CreateSubject)

	subjects := superAdmin.Group("/subjects", middleware.AdminAuditLog(db, "subject"))
	subjects.Put("/:id", subjectHandler.UpdateSubject)
	subjects.Delete("/:id", subjectHandler.DeleteSubject)

	superAdmin.Get("/audit-logs", utils.MakeHTTPHandleFunc(admin_handlers.ListAuditLogs, store))
	superAdmin.Get("/audit-logs/:id", utils.MakeHTTPHandleFunc(admin_handlers.GetAuditLog, store))
	superAdmin.Get("/cron-logs", utils.MakeHTTPHandleFunc(admin_handlers.ListCronLogs, store))

	// Authenticated area. Its middleware is mounted on the /api/v1 prefix, so it is
	// registered after the admin groups.
	protected := v1.Group("", authMiddleware.Required(), authMiddleware.RequireArea(auth.AreaAuthenticated))

	protected.Get("/dashboard", dashboardHandler.Get)
	protected.Get("/profile", authHandler.GetProfile)
	protected.Put("/profile", authHandler.UpdateProfile)

	protected.Get("/referrals", referralHandler.List)
	protected.Get("/referrals/stats", referralHandler.Stats)
	protected.Post("/referrals/apply", referralHandler.Apply)

	protected.Get("/earnings", earningHandler.Summary)
	protected.Get("/earnings/history", earningHandler.History)

	protected.Get("/payouts", payoutHandler.List)
	protected.Post("/payouts", payoutHandler.Request)

	protected.Get("/enrollments", enrollmentHandler.List)
	protected.Post("/enrollments", enrollmentHandler.Create)
	protected.Post("/payments/verify", enrollmentHandler.Verify)

	protected.Get("/subjects/:id", subjectHandler.GetSubject)
	protected.Get("/notes", contentHandler.ListNotes)
	protected.Get("/lectures", contentHandler.ListLectures)
	protected.Get("/live-sessions", contentHandler.ListLiveSessions)
	protected.Get("/assignments", contentHandler.ListAssignments)

	protected.Get("/gigs", gigHandler.List)

	protected.Get("/notifications", notificationHandler.GetNotifications)
	protected.Get("/notifications/unread-count", notificationHandler.GetUnreadCount)
	protected.Patch("/notifications/read-all", notificationHandler.MarkAllAsRead)
	protected.Patch("/notifications/:id/read", notificationHandler.MarkAsRead)

	return nil
}
