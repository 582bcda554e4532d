package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/alexsergeyev/skillforge/config"
	"github.com/alexsergeyev/skillforge/database"
	"github.com/alexsergeyev/skillforge/handlers"
	auth_handlers "github.com/alexsergeyev/skillforge/handlers/auth"
	course_handlers "github.com/alexsergeyev/skillforge/handlers/course"
	lesson_handlers "github.com/alexsergeyev/skillforge/handlers/lesson"
	media_handlers "github.com/alexsergeyev/skillforge/handlers/media"
	payment_handlers "github.com/alexsergeyev/skillforge/handlers/payment"
	subscription_handlers "github.com/alexsergeyev/skillforge/handlers/subscription"
	user_handlers "github.com/alexsergeyev/skillforge/handlers/user"
	"github.com/alexsergeyev/skillforge/services"
	"github.com/alexsergeyev/skillforge/services/mediastore"
	"github.com/alexsergeyev/skillforge/services/queue"
	"github.com/alexsergeyev/skillforge/utils/auth"
	"github.com/alexsergeyev/skillforge/utils/cache"
	"github.com/alexsergeyev/skillforge/utils/middleware"
)

// Deps carries shared components built during application setup.
type Deps struct {
	RedisCache     *cache.RedisCache
	JobQueue       *queue.Queue
	PaymentService *services.PaymentService
	Spaces         *mediastore.SpacesClient
}

func SetupRoutes(app *fiber.App, store database.Storage, env *config.EnvironmentVariable, deps Deps) {
	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        env.JWT_ACCESS_EXPIRY,
		RefreshExpiry: env.JWT_REFRESH_EXPIRY,
		Issuer:        env.JWT_ISSUER,
	})

	db := store.DB()

	var bruteForceProtection *middleware.BruteForceProtection
	if deps.RedisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.RedisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db, deps.JobQueue)
	lessonHandler := lesson_handlers.NewLessonHandler(db, deps.JobQueue)
	subscriptionHandler := subscription_handlers.NewSubscriptionHandler(db)
	paymentHandler := payment_handlers.NewPaymentHandler(db, deps.PaymentService)
	userHandler := user_handlers.NewUserHandler(db, deps.Spaces)
	mediaHandler := media_handlers.NewMediaHandler(deps.Spaces)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    originsFor(env),
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.Refresh)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.Profile)

	// Courses routes (all protected)
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", courseHandler.CreateCourse)
	courses.Patch("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)

	// Lessons routes (all protected)
	lessons := api.Group("/lessons", authMiddleware.Required())
	lessons.Get("/", lessonHandler.ListLessons)
	lessons.Get("/:id", lessonHandler.GetLesson)
	lessons.Post("/", lessonHandler.CreateLesson)
	lessons.Patch("/:id", lessonHandler.UpdateLesson)
	lessons.Delete("/:id", lessonHandler.DeleteLesson)

	// Subscriptions routes (all protected)
	subscriptions := api.Group("/subscriptions", authMiddleware.Required())
	subscriptions.Get("/", subscriptionHandler.ListMine)
	subscriptions.Post("/", subscriptionHandler.Toggle)

	// Payments routes. Success and cancel are the checkout return URLs
	// and must stay reachable without a token.
	api.Get("/payments/success", paymentHandler.Success)
	api.Get("/payments/cancel", paymentHandler.Cancel)

	payments := api.Group("/payments", authMiddleware.Required())
	payments.Get("/", paymentHandler.ListPayments)
	payments.Post("/checkout", paymentHandler.CreateCheckout)
	payments.Get("/:id", paymentHandler.GetPayment)
	payments.Get("/:id/status", paymentHandler.CheckStatus)

	// Users routes (protected)
	users := api.Group("/users", authMiddleware.Required())
	users.Get("/:id", userHandler.GetUser)
	users.Patch("/:id", userHandler.UpdateUser)

	// Media uploads (protected)
	api.Post("/media/upload", authMiddleware.Required(), mediaHandler.Upload)
}

func originsFor(env *config.EnvironmentVariable) string {
	if env.GO_ENV == "production" {
		return env.APP_BASE_URL
	}
	return "http://localhost:3000,http://localhost:3001"
}
