package services

import (
	"context"
	"fmt"
	"log"

	"github.com/alexsergeyev/skillforge/services/queue"
)

// RegisterCourseUpdateProcessor binds the course update notification
// handler to the job queue.
func RegisterCourseUpdateProcessor(q *queue.Queue, notify *NotifyService) {
	q.Register(queue.JobTypeCourseUpdateNotification, func(ctx context.Context, job *queue.Job) error {
		payload, err := queue.CourseUpdateJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("invalid course update payload: %w", err)
		}

		outcome, err := notify.NotifyCourseSubscribers(ctx, payload.CourseID)
		if err != nil {
			return err
		}

		log.Printf("[JobQueue] %s", outcome)
		return nil
	})
}
