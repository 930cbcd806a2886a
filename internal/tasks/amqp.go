package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// dial opens a connection and channel and declares the durable task queue
func dial(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return conn, ch, nil
}

// AMQPDispatcher publishes tasks to a RabbitMQ queue for Worker to run
type AMQPDispatcher struct {
	url      string
	queue    string
	registry *Registry
	store    StatusStore
	logger   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPDispatcher connects to url and declares queue
func NewAMQPDispatcher(url, queue string, registry *Registry, store StatusStore, logger *zap.Logger) (*AMQPDispatcher, error) {
	d := &AMQPDispatcher{
		url:      url,
		queue:    queue,
		registry: registry,
		store:    store,
		logger:   logger,
	}
	if err := d.connect(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *AMQPDispatcher) connect() error {
	conn, ch, err := dial(d.url, d.queue)
	if err != nil {
		return err
	}
	d.conn, d.ch = conn, ch
	d.logger.Info("connected to task broker", zap.String("queue", d.queue))
	return nil
}

// Submit records the task as pending and publishes it
func (d *AMQPDispatcher) Submit(ctx context.Context, kind Kind, payload any) (*Status, error) {
	task, err := newTask(ctx, d.registry, kind, payload)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task: %w", err)
	}

	status := pendingStatus(task)
	if err := d.store.Create(ctx, status); err != nil {
		d.logger.Error("failed to record task", zap.Error(err), zap.String("task_id", task.ID))
		return nil, err
	}

	if err := d.publish(task, body); err != nil {
		d.logger.Error("failed to publish task",
			zap.Error(err),
			zap.String("task_id", task.ID),
			zap.String("kind", string(kind)),
		)
		status.State = StateFailed
		status.Error = "failed to enqueue task"
		status.UpdatedAt = time.Now().UTC()
		saveStatus(ctx, d.store, status, d.logger)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	d.logger.Info("task enqueued",
		zap.String("task_id", task.ID),
		zap.String("kind", string(kind)),
		zap.String("queue", d.queue),
	)

	return status, nil
}

// publish sends body, reconnecting once if the channel was closed
func (d *AMQPDispatcher) publish(task Task, body []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    task.ID,
		Type:         string(task.Kind),
		Timestamp:    task.SubmittedAt,
		Body:         body,
	}

	err := d.ch.Publish("", d.queue, false, false, msg)
	if err == nil {
		return nil
	}
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	d.logger.Warn("task broker channel closed, reconnecting", zap.Error(err))
	if err := d.connect(); err != nil {
		return err
	}
	return d.ch.Publish("", d.queue, false, false, msg)
}

// Status returns the stored status of a task
func (d *AMQPDispatcher) Status(ctx context.Context, id string) (*Status, error) {
	return d.store.Get(ctx, id)
}

// Close releases the broker connection
func (d *AMQPDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ch != nil {
		d.ch.Close()
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// Worker consumes tasks from the queue and executes them
type Worker struct {
	url      string
	queue    string
	prefetch int
	retry    time.Duration
	registry *Registry
	store    StatusStore
	logger   *zap.Logger
}

// NewWorker creates a Worker for queue
func NewWorker(url, queue string, registry *Registry, store StatusStore, logger *zap.Logger) *Worker {
	return &Worker{
		url:      url,
		queue:    queue,
		prefetch: 1,
		retry:    5 * time.Second,
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Run consumes until ctx is cancelled, reconnecting after broker failures
func (w *Worker) Run(ctx context.Context) error {
	for {
		err := w.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}

		w.logger.Warn("task consumer stopped, retrying",
			zap.Error(err),
			zap.Duration("retry_in", w.retry),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.retry):
		}
	}
}

func (w *Worker) consume(ctx context.Context) error {
	conn, ch, err := dial(w.url, w.queue)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer ch.Close()

	if err := ch.Qos(w.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	deliveries, err := ch.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", w.queue, err)
	}

	w.logger.Info("waiting for tasks", zap.String("queue", w.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := w.Handle(ctx, d.Body); err != nil {
				w.logger.Error("dropping malformed task", zap.Error(err), zap.String("message_id", d.MessageId))
				d.Reject(false)
				continue
			}
			d.Ack(false)
		}
	}
}

// Handle decodes and executes one task message. Only malformed messages
// return an error; task failures are recorded in the status store.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return fmt.Errorf("failed to decode task: %w", err)
	}
	if task.ID == "" || task.Kind == "" {
		return errors.New("task message is missing id or kind")
	}

	execute(ctx, w.registry, w.store, task, w.logger)
	return nil
}
