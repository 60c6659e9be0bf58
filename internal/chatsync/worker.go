// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chatsync

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// # Background Worker

const (
	// popTimeout is how long a single blocking pop waits before looping,
	// which is also the worker's shutdown latency upper bound.
	popTimeout = 5 * time.Second

	// retryBaseDelay seeds the exponential backoff inside one delivery pass.
	retryBaseDelay = 1 * time.Second

	// retriesPerPass is the number of backoff retries within one pass.
	retriesPerPass = 4

	// maxPasses is the number of queue passes before a job is dead-lettered.
	maxPasses = 3

	// errorPause throttles the loop when the queue itself is failing.
	errorPause = 2 * time.Second
)

// Worker drains the sync outbox and delivers records to the provider.
//
// # Delivery Semantics
//
// At-least-once: a job is re-queued after a failed pass and only parked on
// the dead-letter list once maxPasses is exhausted. The provider's upsert
// is idempotent, so duplicate delivery is harmless.
type Worker struct {
	queue    Queue
	upserter Upserter
	logger   *slog.Logger

	// retryBase is retryBaseDelay, overridable in tests.
	retryBase time.Duration
}

// NewWorker constructs a Worker.
func NewWorker(queue Queue, upserter Upserter, logger *slog.Logger) *Worker {
	return &Worker{
		queue:     queue,
		upserter:  upserter,
		logger:    logger,
		retryBase: retryBaseDelay,
	}
}

// Run consumes the outbox until the context is canceled.
//
// It is intended to run on its own goroutine, started once at process
// startup and stopped by the shutdown context.
func (worker *Worker) Run(context context.Context) {
	worker.logger.Info("chatsync_worker_started")

	for {
		job, err := worker.queue.Pop(context, popTimeout)

		if context.Err() != nil {
			worker.logger.Info("chatsync_worker_stopped")
			return
		}

		if err != nil {
			worker.logger.Error("chatsync_worker_pop_failed", slog.Any("error", err))
			worker.sleep(context, errorPause)
			continue
		}

		if job == nil {
			continue
		}

		worker.process(context, job)
	}
}

// process attempts one delivery pass with exponential backoff, then either
// re-queues or dead-letters the job.
func (worker *Worker) process(ctx context.Context, job *Job) {
	backoff := retry.WithMaxRetries(retriesPerPass, retry.NewExponential(worker.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if upsertErr := worker.upserter.Upsert(ctx, job.record()); upsertErr != nil {
			return retry.RetryableError(upsertErr)
		}
		return nil
	})

	if err == nil {
		worker.logger.Info("chatsync_user_provisioned", slog.String("user_id", job.UserID))
		return
	}

	job.Attempts++
	if job.Attempts < maxPasses {
		worker.logger.Warn("chatsync_delivery_failed_requeueing",
			slog.String("user_id", job.UserID),
			slog.Int("attempts", job.Attempts),
			slog.Any("error", err),
		)
		if pushErr := worker.queue.Push(ctx, job); pushErr != nil {
			worker.logger.Error("chatsync_requeue_failed", slog.String("user_id", job.UserID), slog.Any("error", pushErr))
		}
		return
	}

	worker.logger.Error("chatsync_delivery_exhausted_dead_lettering",
		slog.String("user_id", job.UserID),
		slog.Int("attempts", job.Attempts),
		slog.Any("error", err),
	)
	if deadErr := worker.queue.PushDead(ctx, job); deadErr != nil {
		worker.logger.Error("chatsync_dead_letter_failed", slog.String("user_id", job.UserID), slog.Any("error", deadErr))
	}
}

// sleep pauses without outliving the worker's context.
func (worker *Worker) sleep(context context.Context, duration time.Duration) {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-context.Done():
	}
}
