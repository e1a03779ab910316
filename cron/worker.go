package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"droply/config"
	"droply/services/delivery"

	"github.com/hibiken/asynq"
)

const TypeShipmentExpire = "shipment:expire"

// expirePayload is the task body for a deferred shipment expiry check.
type expirePayload struct {
	ShipmentID string `json:"shipmentId"`
}

// ExpiryScheduler enqueues expiry tasks against the Redis-backed queue.
// One task is scheduled per posted shipment, due after the open-shipment TTL.
type ExpiryScheduler struct {
	client *asynq.Client
	ttl    time.Duration
}

func NewExpiryScheduler() *ExpiryScheduler {
	ttl := time.Duration(config.AppConfig.OpenShipmentTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &ExpiryScheduler{
		client: asynq.NewClient(queueRedisOpts()),
		ttl:    ttl,
	}
}

func (s *ExpiryScheduler) ScheduleExpiry(ctx context.Context, shipmentID string) error {
	payload, err := json.Marshal(expirePayload{ShipmentID: shipmentID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeShipmentExpire, payload)
	_, err = s.client.EnqueueContext(ctx, task, asynq.ProcessIn(s.ttl), asynq.MaxRetry(3))
	return err
}

// InitExpiryWorker runs the async worker in background.
func InitExpiryWorker(shipments delivery.ShipmentService) {
	srv := asynq.NewServer(
		queueRedisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeShipmentExpire, handleExpireTask(shipments))

	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleExpireTask(shipments delivery.ShipmentService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p expirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryWorker] invalid payload: %v", err)
			return err
		}

		// ExpireShipment is a no-op for anything already settled, cancelled,
		// or delivered, so redelivered tasks are harmless.
		if err := shipments.ExpireShipment(ctx, p.ShipmentID); err != nil {
			log.Printf("[ExpiryWorker] failed to expire shipment %s: %v", p.ShipmentID, err)
			return err
		}
		return nil
	}
}

func queueRedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
