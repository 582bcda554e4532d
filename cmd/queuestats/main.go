package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/alexsergeyev/skillforge/config"
	"github.com/alexsergeyev/skillforge/services/queue"
	"github.com/alexsergeyev/skillforge/utils/cache"
)

// Prints the state of the background job queue, or a single job record
// when called with a job ID. Handy when checking whether notification
// jobs are draining.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	env, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	q := queue.NewQueue(redisCache.GetClient(), 0)
	ctx := context.Background()

	if len(os.Args) > 1 {
		printJob(ctx, q, os.Args[1])
		return
	}

	pending, err := q.GetQueueSize(ctx)
	if err != nil {
		log.Fatalf("Failed to read queue size: %v", err)
	}

	processing, err := q.GetProcessingSize(ctx)
	if err != nil {
		log.Fatalf("Failed to read processing size: %v", err)
	}

	stats, err := q.GetJobStats(ctx)
	if err != nil {
		log.Fatalf("Failed to read job stats: %v", err)
	}

	fmt.Printf("Pending jobs:    %d\n", pending)
	fmt.Printf("Processing jobs: %d\n", processing)
	fmt.Println("Lifetime totals:")
	for status, count := range stats {
		fmt.Printf("  %-12s %d\n", status, count)
	}
}

func printJob(ctx context.Context, q *queue.Queue, jobID string) {
	job, err := q.GetJob(ctx, jobID)
	if err != nil {
		log.Fatalf("Failed to fetch job %s: %v", jobID, err)
	}

	fmt.Printf("Job:     %s\n", job.ID)
	fmt.Printf("Type:    %s\n", job.Type)
	fmt.Printf("Status:  %s\n", job.Status)
	fmt.Printf("Retries: %d/%d\n", job.RetryCount, job.MaxRetries)
	fmt.Printf("Created: %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	if job.CompletedAt != nil {
		fmt.Printf("Done:    %s\n", job.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if job.ErrorMsg != "" {
		fmt.Printf("Error:   %s\n", job.ErrorMsg)
	}
}
