package legacy

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Publisher emits role-created events toward the compatibility adapter.
// Callers treat publish failures as non-fatal.
type Publisher interface {
	PublishRoleCreated(ctx context.Context, event RoleCreatedEvent) error
}

// AsynqPublisher enqueues mirror events on the background queue.
type AsynqPublisher struct {
	client *asynq.Client
	queue  string
}

// NewAsynqPublisher constructs a Publisher backed by asynq.
func NewAsynqPublisher(client *asynq.Client, queue string) *AsynqPublisher {
	return &AsynqPublisher{client: client, queue: queue}
}

// PublishRoleCreated enqueues one mirror task.
func (p *AsynqPublisher) PublishRoleCreated(ctx context.Context, event RoleCreatedEvent) error {
	task, err := NewMirrorRoleTask(event)
	if err != nil {
		return fmt.Errorf("legacy: build mirror task: %w", err)
	}
	if _, err := p.client.EnqueueContext(ctx, task, asynq.Queue(p.queue)); err != nil {
		return fmt.Errorf("legacy: enqueue mirror task: %w", err)
	}
	return nil
}
