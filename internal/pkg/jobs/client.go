package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Enqueuer is the producer side used by services.
type Enqueuer interface {
	EnqueueSendOTP(ctx context.Context, payload SendOTPPayload) error
	EnqueueAccountDecision(ctx context.Context, payload AccountDecisionPayload) error
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

func (c *Client) EnqueueSendOTP(ctx context.Context, payload SendOTPPayload) error {
	task, err := NewSendOTPTask(payload)
	if err != nil {
		return fmt.Errorf("build otp task: %w", err)
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue otp task: %w", err)
	}
	return nil
}

func (c *Client) EnqueueAccountDecision(ctx context.Context, payload AccountDecisionPayload) error {
	task, err := NewAccountDecisionTask(payload)
	if err != nil {
		return fmt.Errorf("build account decision task: %w", err)
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue account decision task: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
