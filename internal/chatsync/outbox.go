// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chatsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/lumeo/internal/platform/constants"
)

// # Outbox Jobs

// Job is one pending directory-sync unit of work.
//
// Attempts counts completed worker passes (each pass is itself retried with
// backoff); it travels with the job through re-queues.
type Job struct {
	UserID         string `json:"user_id"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture"`
	Attempts       int    `json:"attempts"`
}

// record converts the job into the provider-side projection.
func (job *Job) record() Record {
	return Record{
		ID:    job.UserID,
		Name:  job.FullName,
		Image: job.ProfilePicture,
	}
}

// Queue is the transport between signup and the background worker.
type Queue interface {
	// Push appends a job to the outbox.
	Push(context context.Context, job *Job) error

	// Pop blocks up to timeout for the next job. It returns (nil, nil)
	// when the timeout elapses with an empty queue.
	Pop(context context.Context, timeout time.Duration) (*Job, error)

	// PushDead parks a job that exhausted all delivery attempts.
	PushDead(context context.Context, job *Job) error
}

// # Redis Queue

// RedisQueue implements Queue on top of Redis lists.
//
// LPUSH/BRPOP gives FIFO ordering and lets multiple worker processes share
// one outbox without coordination.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a Redis-backed outbox queue.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

// Push appends a job to the outbox list.
func (queue *RedisQueue) Push(context context.Context, job *Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("chatsync_outbox_encode_failed: %w", err)
	}

	if err := queue.client.LPush(context, constants.RedisKeySyncOutbox, encoded).Err(); err != nil {
		return fmt.Errorf("chatsync_outbox_push_failed: %w", err)
	}

	return nil
}

// Pop blocks up to timeout for the next job from the outbox list.
func (queue *RedisQueue) Pop(context context.Context, timeout time.Duration) (*Job, error) {
	values, err := queue.client.BRPop(context, timeout, constants.RedisKeySyncOutbox).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("chatsync_outbox_pop_failed: %w", err)
	}

	// BRPop returns [key, value].
	job := &Job{}
	if err := json.Unmarshal([]byte(values[1]), job); err != nil {
		return nil, fmt.Errorf("chatsync_outbox_decode_failed: %w", err)
	}

	return job, nil
}

// PushDead parks an undeliverable job on the dead-letter list for
// operator inspection and manual replay.
func (queue *RedisQueue) PushDead(context context.Context, job *Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("chatsync_deadletter_encode_failed: %w", err)
	}

	if err := queue.client.LPush(context, constants.RedisKeySyncDeadLetter, encoded).Err(); err != nil {
		return fmt.Errorf("chatsync_deadletter_push_failed: %w", err)
	}

	return nil
}

// # Dispatcher

// Dispatcher is the signup-facing entry point of the sync pipeline. It
// satisfies the auth service's DirectorySync contract.
type Dispatcher struct {
	queue  Queue
	client Upserter
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher over a queue, with the provider client
// as an inline fallback when the queue itself is unreachable.
func NewDispatcher(queue Queue, client Upserter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{queue: queue, client: client, logger: logger}
}

/*
Schedule enqueues a directory-sync job for background delivery.

Description: If the enqueue fails (redis down), it degrades to one direct
best-effort upsert so provisioning still usually happens; only when both
paths fail does an error surface, and the caller treats it as a logged
warning, never a request failure.

Parameters:
  - context: context.Context
  - userID, fullName, profilePicture: provider record fields

Returns:
  - error: Only when both enqueue and the inline fallback failed
*/
func (dispatcher *Dispatcher) Schedule(context context.Context, userID, fullName, profilePicture string) error {
	job := &Job{
		UserID:         userID,
		FullName:       fullName,
		ProfilePicture: profilePicture,
	}

	err := dispatcher.queue.Push(context, job)
	if err == nil {
		return nil
	}

	dispatcher.logger.WarnContext(context, "chatsync_enqueue_failed_falling_back_inline",
		slog.String("user_id", userID),
		slog.Any("error", err),
	)

	if upsertErr := dispatcher.client.Upsert(context, job.record()); upsertErr != nil {
		return fmt.Errorf("chatsync_schedule_failed: enqueue: %v, inline upsert: %w", err, upsertErr)
	}

	return nil
}
