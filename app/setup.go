package app

import (
	"fmt"
	"log"
	"os"

	"github.com/alexsergeyev/skillforge/api"
	"github.com/alexsergeyev/skillforge/config"
	"github.com/alexsergeyev/skillforge/database"
	"github.com/alexsergeyev/skillforge/router"
	"github.com/alexsergeyev/skillforge/services"
	"github.com/alexsergeyev/skillforge/services/cron"
	"github.com/alexsergeyev/skillforge/services/mediastore"
	"github.com/alexsergeyev/skillforge/services/queue"
	"github.com/alexsergeyev/skillforge/utils/cache"
)

func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	// Database
	store, err := database.StartGORM(env)
	if err != nil {
		fmt.Println("Check whether Postgres is running and reachable")
		return err
	}

	if err := store.Init(); err != nil {
		fmt.Println("Failed to initialize database tables")
		return err
	}

	if err := database.NewSeeder(store.DB(), env).SeedAll(); err != nil {
		return err
	}

	// Redis cache. Brute force protection, notification cooldowns and
	// the job queue all run through it; the API itself survives without.
	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Background jobs and brute force protection are disabled.", err)
		redisCache = nil
	}

	emailService := services.NewEmailService(env)

	// Background job queue and notification pipeline
	var jobQueue *queue.Queue
	if redisCache != nil {
		notifyService := services.NewNotifyService(store.DB(), emailService, redisCache, env.NOTIFY_COOLDOWN)

		jobQueue = queue.NewQueue(redisCache.GetClient(), env.QUEUE_WORKERS)
		services.RegisterCourseUpdateProcessor(jobQueue, notifyService)
		jobQueue.Start()
	}

	// Scheduled jobs
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(store.DB(), env.INACTIVITY_CUTOFF).
			WithOperatorNotifier(emailService, env.OPS_EMAIL)
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: Failed to start cron jobs: %v", err)
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if jobQueue != nil {
			jobQueue.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		store.Close()
	}()

	// Payment provider
	paymentService := services.NewPaymentService(
		store.DB(),
		services.NewStripeProvider(env.STRIPE_API_KEY),
		env.APP_BASE_URL,
	)

	// Media storage
	var spaces *mediastore.SpacesClient
	if env.DO_SPACES_KEY != "" && env.DO_SPACES_ENDPOINT != "" {
		spaces, err = mediastore.NewSpacesClient(mediastore.SpacesConfig{
			AccessKey: env.DO_SPACES_KEY,
			SecretKey: env.DO_SPACES_SECRET,
			Bucket:    env.DO_SPACES_BUCKET,
			Region:    env.DO_SPACES_REGION,
			Endpoint:  env.DO_SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Media storage unavailable: %v", err)
			spaces = nil
		}
	}

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT))
	app := server.GetEngine()

	router.SetupRoutes(app, store, env, router.Deps{
		RedisCache:     redisCache,
		JobQueue:       jobQueue,
		PaymentService: paymentService,
		Spaces:         spaces,
	})

	return server.Run()
}
