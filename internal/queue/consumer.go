package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"fieldreports/internal/config"
	"fieldreports/internal/dataprocessing"
	apperrors "fieldreports/internal/errors"
	"fieldreports/internal/infrastructure"
	"fieldreports/internal/middleware"
	"fieldreports/internal/services"
	"fieldreports/internal/validation"
	"fieldreports/internal/workbook"
	"fieldreports/pkg/contracts/domain"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

var (
	// ErrNotConnected is returned by Ping while no broker connection is open
	ErrNotConnected = errors.New("queue: not connected")

	errInvalidMessage = errors.New("invalid upload message")
)

// Ingester stores a parsed report; satisfied by *services.ReportService
type Ingester interface {
	Ingest(ctx context.Context, req services.IngestRequest) (*domain.ReportSummary, error)
}

// Message announces a report file dropped into the uploads directory
type Message struct {
	ReportID  string `json:"report_id" validate:"omitempty,max=64,identifier"`
	ProjectID string `json:"project_id" validate:"required,max=64,identifier"`
	FileName  string `json:"file_name" validate:"required,filename"`
}

// Decision is what the consumer did with a delivery
type Decision int

const (
	// DecisionAck means the report was stored
	DecisionAck Decision = iota
	// DecisionDrop means the message can never succeed; it was acked and logged
	DecisionDrop
	// DecisionRequeue means the failure looked transient; the message was requeued
	DecisionRequeue
	// DecisionDeadLetter means a redelivered message failed again and was rejected
	DecisionDeadLetter
)

func (d Decision) String() string {
	switch d {
	case DecisionAck:
		return "ack"
	case DecisionDrop:
		return "drop"
	case DecisionRequeue:
		return "requeue"
	case DecisionDeadLetter:
		return "dead_letter"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Consumer ingests reports announced on a RabbitMQ queue
type Consumer struct {
	cfg        config.QueueConfig
	uploadsDir string
	ingester   Ingester
	files      *validation.FileValidator
	validator  *middleware.Validator
	logger     *slog.Logger

	mu   sync.RWMutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewConsumer creates a consumer reading files from uploadsDir
func NewConsumer(cfg config.QueueConfig, uploadsDir string, maxUpload int64, ingester Ingester, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "queue.consumer")

	return &Consumer{
		cfg:        cfg,
		uploadsDir: uploadsDir,
		ingester:   ingester,
		files:      validation.NewFileValidator(logger, maxUpload),
		validator:  middleware.NewValidator(),
		logger:     logger,
	}
}

// Run consumes until ctx is cancelled, reconnecting with backoff when the broker goes away
func (c *Consumer) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		deliveries, err := c.connect()
		if err != nil {
			c.logger.WarnContext(ctx, "Queue connection failed",
				slog.String("queue", c.cfg.Name),
				slog.Duration("retry_in", backoff),
				slog.String("error", err.Error()))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = minBackoff
		c.logger.InfoContext(ctx, "Queue consumer started",
			slog.String("queue", c.cfg.Name),
			slog.Int("prefetch", c.cfg.Prefetch))

		if done := c.consume(ctx, deliveries); done {
			return c.Close()
		}
		c.logger.WarnContext(ctx, "Queue channel closed, reconnecting",
			slog.String("queue", c.cfg.Name))
	}
}

// consume drains deliveries; it reports true when ctx ended rather than the channel
func (c *Consumer) consume(ctx context.Context, deliveries <-chan amqp.Delivery) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case d, ok := <-deliveries:
			if !ok {
				c.reset()
				return false
			}
			c.Handle(ctx, d)
		}
	}
}

func (c *Consumer) connect() (<-chan amqp.Delivery, error) {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return nil, apperrors.NewQueueError("dial broker", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, apperrors.NewQueueError("open channel", err)
	}

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		conn.Close()
		return nil, apperrors.NewQueueError("set prefetch", err)
	}

	if _, err := ch.QueueDeclare(c.cfg.Name, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, apperrors.NewQueueError("declare queue", err).WithContext("queue", c.cfg.Name)
	}

	deliveries, err := ch.Consume(c.cfg.Name, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, apperrors.NewQueueError("consume queue", err).WithContext("queue", c.cfg.Name)
	}

	c.mu.Lock()
	c.conn, c.ch = conn, ch
	c.mu.Unlock()
	return deliveries, nil
}

func (c *Consumer) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil && !c.conn.IsClosed() {
		c.conn.Close()
	}
	c.conn, c.ch = nil, nil
}

// Handle processes one delivery and settles it with the broker
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) Decision {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()
	summary, err := c.process(ctx, d.Body)
	decision := classify(err, d.Redelivered)

	logger := c.logger.With(
		slog.String("message_id", d.MessageId),
		slog.String("decision", decision.String()),
		slog.Duration("duration", time.Since(start)))

	var settleErr error
	switch decision {
	case DecisionAck:
		settleErr = d.Ack(false)
		logger.InfoContext(ctx, "Queued report ingested",
			slog.String("report_id", summary.ReportID),
			slog.String("project_id", summary.ProjectID),
			slog.Int("records", summary.RecordCount))
	case DecisionDrop:
		settleErr = d.Ack(false)
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Dropping queued report")
	case DecisionRequeue:
		settleErr = d.Nack(false, true)
		infrastructure.WithError(logger, err).WarnContext(ctx, "Requeueing queued report")
	case DecisionDeadLetter:
		settleErr = d.Nack(false, false)
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Queued report failed after redelivery")
	}

	if settleErr != nil {
		logger.ErrorContext(ctx, "Failed to settle delivery",
			slog.String("error", settleErr.Error()))
	}
	return decision
}

func (c *Consumer) process(ctx context.Context, body []byte) (*domain.ReportSummary, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidMessage, err)
	}
	if err := c.validator.ValidateStruct(msg); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidMessage, err)
	}

	path, err := validation.ResolveUpload(c.uploadsDir, msg.FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidMessage, err)
	}

	data, err := c.files.ValidateWorkbookFile(path)
	if err != nil {
		return nil, err
	}

	return c.ingester.Ingest(ctx, services.IngestRequest{
		Upload: services.Upload{
			Name:     msg.FileName,
			Data:     data,
			ReportID: msg.ReportID,
		},
		ProjectID: msg.ProjectID,
	})
}

// classify maps an ingest error onto a settlement; unknown errors are retried once
func classify(err error, redelivered bool) Decision {
	if err == nil {
		return DecisionAck
	}
	if permanent(err) {
		return DecisionDrop
	}
	if redelivered {
		return DecisionDeadLetter
	}
	return DecisionRequeue
}

func permanent(err error) bool {
	switch {
	case errors.Is(err, errInvalidMessage),
		errors.Is(err, os.ErrNotExist),
		errors.Is(err, dataprocessing.ErrSheetNotFound),
		errors.Is(err, workbook.ErrUnsupportedFormat),
		errors.Is(err, validation.ErrEmptyFile),
		errors.Is(err, validation.ErrTemporaryFile),
		errors.Is(err, validation.ErrFileTooLarge),
		errors.Is(err, validation.ErrNotAFile):
		return true
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrTypeValidation, apperrors.ErrTypeParsing, apperrors.ErrTypeUnsupported:
			return true
		}
	}
	return false
}

// Ping reports whether the broker connection is open
func (c *Consumer) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil || c.conn.IsClosed() {
		return ErrNotConnected
	}
	return nil
}

// Close shuts the channel and connection
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.ch != nil {
		errs = append(errs, c.ch.Close())
	}
	if c.conn != nil && !c.conn.IsClosed() {
		errs = append(errs, c.conn.Close())
	}
	c.conn, c.ch = nil, nil
	return errors.Join(errs...)
}
