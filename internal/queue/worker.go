package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
)

const (
	reconnectBackoff = 5 * time.Second
	errorBackoff     = time.Second
)

// JobProcessor runs one job; *batch.Processor implements it.
type JobProcessor interface {
	Process(ctx context.Context, req models.JobRequest) (*models.JobResult, error)
}

// JobTracker is notified of job progress; *jobs.Store implements it.
type JobTracker interface {
	Register(req models.JobRequest)
	Start(req models.JobRequest)
	Complete(result *models.JobResult)
	Fail(jobID, reason string)
}

// WorkerConfig names the stream, group and consumer the worker reads as.
type WorkerConfig struct {
	Stream   string
	Group    string
	Consumer string
	Block    time.Duration
	Count    int64
}

// Worker consumes job descriptors from a stream and publishes their results.
type Worker struct {
	client    StreamClient
	processor JobProcessor
	tracker   JobTracker
	cfg       WorkerConfig
	logger    logging.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewWorker creates a Worker. tracker may be nil.
func NewWorker(client StreamClient, processor JobProcessor, tracker JobTracker, cfg WorkerConfig, logger logging.Logger) *Worker {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if cfg.Count < 1 {
		cfg.Count = 1
	}
	return &Worker{
		client:    client,
		processor: processor,
		tracker:   tracker,
		cfg:       cfg,
		logger: logger.WithFields(
			logging.F(logging.FieldStream, cfg.Stream),
		),
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Run reads and handles messages until ctx is cancelled. Lost connections
// are re-established; Run only returns an error when the first connection
// attempt fails.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.connect(ctx); err != nil {
		return err
	}
	w.logger.Info("Worker started",
		logging.F("group", w.cfg.Group),
		logging.F("consumer", w.cfg.Consumer))

	for {
		if ctx.Err() != nil {
			w.logger.Info("Worker stopped")
			return nil
		}

		messages, err := w.client.Read(ctx, ReadArgs{
			Stream:   w.cfg.Stream,
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			Count:    w.cfg.Count,
			Block:    w.cfg.Block,
		})
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.backOff(ctx, err)
			continue
		}

		w.registerBatch(messages)
		for _, msg := range messages {
			if ctx.Err() != nil {
				break
			}
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	if err := w.client.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to stream %s: %w", w.cfg.Stream, err)
	}
	if err := w.client.EnsureGroup(ctx, w.cfg.Stream, w.cfg.Group); err != nil {
		return fmt.Errorf("failed to create consumer group %s: %w", w.cfg.Group, err)
	}
	return nil
}

// backOff waits after a read failure, reconnecting when the failure was
// a connection loss.
func (w *Worker) backOff(ctx context.Context, err error) {
	if !errors.Is(err, ErrConnection) {
		w.logger.WithError(err).Error("Error reading from stream")
		w.sleep(ctx, errorBackoff)
		return
	}

	w.logger.WithError(err).Warn("Connection to stream lost, reconnecting")
	w.sleep(ctx, reconnectBackoff)
	if ctx.Err() != nil {
		return
	}
	if err := w.connect(ctx); err != nil {
		w.logger.WithError(err).Error("Reconnect failed")
		return
	}
	w.logger.Info("Reconnected to stream")
}

// registerBatch records every valid job of a read batch as pending, so jobs
// queued behind the running one are visible before they start.
func (w *Worker) registerBatch(messages []Message) {
	if w.tracker == nil {
		return
	}
	for _, msg := range messages {
		if !ShouldProcess(msg.Step()) {
			continue
		}
		if req, err := DecodeJob(msg); err == nil {
			w.tracker.Register(req)
		}
	}
}

// handleMessage processes one message. The message stays pending when the
// job was interrupted or its result could not be published.
func (w *Worker) handleMessage(ctx context.Context, msg Message) {
	logger := w.logger.WithFields(
		logging.F(logging.FieldMessageID, msg.ID),
		logging.F(logging.FieldJobID, msg.JobID()),
		logging.F(logging.FieldStep, msg.Step()))

	if !ShouldProcess(msg.Step()) {
		logger.Debug("Skipping message")
		w.ack(ctx, logger, msg)
		return
	}

	req, err := DecodeJob(msg)
	if err != nil {
		logger.WithError(err).Error("Malformed job descriptor")
		if _, pubErr := w.client.Publish(ctx, w.cfg.Stream, EncodeError(req.JobID, err.Error(), w.now())); pubErr != nil {
			logger.WithError(pubErr).Error("Failed to publish job error")
		}
		if w.tracker != nil {
			w.tracker.Fail(req.JobID, err.Error())
		}
		w.ack(ctx, logger, msg)
		return
	}

	if w.tracker != nil {
		w.tracker.Start(req)
	}
	result, err := w.processor.Process(ctx, req)
	if err != nil {
		logger.WithError(err).Warn("Job did not complete, leaving message pending")
		if w.tracker != nil {
			w.tracker.Fail(req.JobID, err.Error())
		}
		return
	}

	values, err := EncodeResult(result, w.now())
	if err == nil {
		_, err = w.client.Publish(ctx, w.cfg.Stream, values)
	}
	if err != nil {
		logger.WithError(err).Error("Failed to publish job result, leaving message pending")
		if w.tracker != nil {
			w.tracker.Fail(req.JobID, err.Error())
		}
		return
	}

	w.ack(ctx, logger, msg)
	if w.tracker != nil {
		w.tracker.Complete(result)
	}
	logger.Info("Job result published",
		logging.F(logging.FieldCount, result.Total()),
		logging.F(logging.FieldErrorCount, len(result.Errors)))
}

func (w *Worker) ack(ctx context.Context, logger logging.Logger, msg Message) {
	if err := w.client.Ack(ctx, w.cfg.Stream, w.cfg.Group, msg.ID); err != nil {
		logger.WithError(err).Error("Failed to acknowledge message")
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
