package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"vecindo/config"
	"vecindo/services/realtime"

	"github.com/hibiken/asynq"
)

const TypeNotificationSweep = "notification:sweep"

// InitSweeperWorker runs the async worker and its periodic scheduler in the
// background. The sweep task deletes expired notifications on the configured
// interval.
func InitSweeperWorker(sweeper realtime.ExpirySweeper) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweeperDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotificationSweep, handleSweepTask(sweeper))

	// Start async worker with retry logic
	go func() {
		log.Println("[SweeperWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SweeperWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SweeperWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	go runScheduler(redisOpts)
}

// runScheduler enqueues the sweep task on the configured interval.
func runScheduler(redisOpts asynq.RedisClientOpt) {
	interval := config.AppConfig.SweepIntervalMin
	if interval <= 0 {
		interval = 15
	}

	scheduler := asynq.NewScheduler(redisOpts, nil)
	spec := fmt.Sprintf("@every %dm", interval)
	if _, err := scheduler.Register(spec, asynq.NewTask(TypeNotificationSweep, nil)); err != nil {
		log.Printf("[SweeperWorker] failed to register sweep schedule: %v", err)
		return
	}

	if err := scheduler.Run(); err != nil {
		log.Printf("[SweeperWorker] scheduler stopped: %v", err)
	}
}

func handleSweepTask(sweeper realtime.ExpirySweeper) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		count, err := sweeper.Sweep(time.Now())
		if err != nil {
			log.Printf("[SweeperWorker] sweep failed: %v", err)
			return err
		}
		if count > 0 {
			log.Printf("[SweeperWorker] deleted %d expired notifications", count)
		}
		return nil
	}
}
