// Package jobs carries background work between the API and the worker over asynq.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskTypeSendOTP             = "email:otp"
	TaskTypeSendAccountDecision = "email:account_decision"
)

type SendOTPPayload struct {
	To        string        `json:"to"`
	Name      string        `json:"name"`
	Code      string        `json:"code"`
	ExpiresIn time.Duration `json:"expires_in"`
}

type AccountDecisionPayload struct {
	To       string `json:"to"`
	Name     string `json:"name"`
	Approved bool   `json:"approved"`
}

func NewSendOTPTask(payload SendOTPPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
	}
	// a code is useless once expired
	if payload.ExpiresIn > 0 {
		opts = append(opts, asynq.Deadline(time.Now().Add(payload.ExpiresIn)))
	}
	return asynq.NewTask(TaskTypeSendOTP, data, opts...), nil
}

func NewAccountDecisionTask(payload AccountDecisionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendAccountDecision, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}
