// Package routes wires repositories, services and handlers into the
// fiber route tree and applies the auth middleware per group.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compas/internal/config"
	"compas/internal/fare"
	"compas/internal/handlers"
	"compas/internal/middleware"
	"compas/internal/repositories"
	"compas/internal/services/attendance"
	"compas/internal/services/auth"
	"compas/internal/services/billing"
	"compas/internal/services/course"
	"compas/internal/services/enrollment"
	"compas/internal/services/event"
	"compas/internal/services/notification"
	"compas/internal/services/payment"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Repositories
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)
	tariffRepo := repositories.NewTariffRepository(db, repositories.CacheService)
	membershipRepo := repositories.NewMembershipRepository(db, repositories.CacheService)
	courseRepo := repositories.NewCourseRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Services
	authService := auth.NewService(userRepo)
	notificationService := notification.NewService(notificationRepo)
	billingService := billing.NewService(tariffRepo, membershipRepo, billingConfig(), nil)
	paymentService := payment.NewService(paymentRepo, membershipRepo, billingService, notificationService, nil)
	enrollmentService := enrollment.NewService(enrollmentRepo, courseRepo, membershipRepo, billingService, notificationService)
	courseService := course.NewService(courseRepo)
	attendanceService := attendance.NewService(attendanceRepo, courseRepo)
	eventService := event.NewService(eventRepo, notificationService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	billingHandler := handlers.NewBillingHandler(billingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, billingService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	courseHandler := handlers.NewCourseHandler(courseService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	eventHandler := handlers.NewEventHandler(eventService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)
	api.Get("/courses", courseHandler.List)
	api.Get("/courses/:id", courseHandler.Get)
	api.Get("/tariffs", billingHandler.ListTariffs)

	// Authenticated endpoints
	authenticated := api.Group("/", authMiddleware.Handler)
	authenticated.Post("/logout", authHandler.Logout)
	authenticated.Post("/change-password", authHandler.ChangePassword)
	authenticated.Get("/me", authHandler.Me)

	billingGroup := authenticated.Group("/billing")
	billingGroup.Get("/quote", billingHandler.QuoteEnrollment)
	billingGroup.Get("/renewal-quote", billingHandler.QuoteRenewal)

	enrollments := authenticated.Group("/enrollments")
	enrollments.Post("/", enrollmentHandler.Request)
	enrollments.Get("/", enrollmentHandler.Mine)
	enrollments.Post("/:id/cancel", enrollmentHandler.Cancel)

	payments := authenticated.Group("/payments")
	payments.Post("/renewal", paymentHandler.PayRenewal)
	payments.Post("/enrollment", paymentHandler.PayEnrollment)
	payments.Get("/", paymentHandler.MyPayments)
	payments.Get("/receipt/:receipt", paymentHandler.GetReceipt)

	events := authenticated.Group("/events")
	events.Get("/", eventHandler.ListUpcoming)
	events.Post("/:id/register", eventHandler.Register)
	events.Delete("/:id/register", eventHandler.Unregister)
	events.Get("/registrations", eventHandler.MyRegistrations)

	notifications := authenticated.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
	notifications.Post("/push-token", notificationHandler.RegisterPushToken)

	authenticated.Get("/attendance", attendanceHandler.MyAttendance)

	// Instructor endpoints
	instructor := authenticated.Group("/instructor", middleware.InstructorOnly)
	instructor.Post("/attendance", attendanceHandler.CheckIn)
	instructor.Get("/courses/:id/attendance", attendanceHandler.ListByCourse)

	// Admin endpoints
	admin := authenticated.Group("/admin", middleware.AdminOnly)
	admin.Get("/enrollments", enrollmentHandler.ListPending)
	admin.Post("/enrollments/:id/approve", enrollmentHandler.Approve)
	admin.Post("/enrollments/:id/reject", enrollmentHandler.Reject)
	admin.Post("/courses", courseHandler.Create)
	admin.Put("/courses/:id", courseHandler.Update)
	admin.Delete("/courses/:id", courseHandler.Deactivate)
	admin.Post("/tariffs", billingHandler.UpsertTariff)
	admin.Delete("/tariffs/:id", billingHandler.DeleteTariff)
	admin.Get("/payments", paymentHandler.List)
	admin.Post("/events", eventHandler.Create)
	admin.Put("/events/:id", eventHandler.Update)
	admin.Post("/events/:id/publish", eventHandler.Publish)
}

// billingConfig reads the late policy knobs from the environment so the
// academy can tune grace and the fallback rate without a deploy.
func billingConfig() billing.Config {
	return billing.Config{
		LatePolicy: fare.LatePolicy{
			GraceDays:      config.GetIntEnv("LATE_FEE_GRACE_DAYS", fare.DefaultGraceDays),
			FallbackPerDay: config.GetInt64Env("LATE_FEE_FALLBACK_PER_DAY", fare.DefaultLateFeePerDay),
		},
	}
}
