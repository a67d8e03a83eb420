package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"telemetry-bridge/internal/config"
	"telemetry-bridge/internal/engine"
	"telemetry-bridge/internal/logging"
	"telemetry-bridge/internal/metrics"
	"telemetry-bridge/internal/models"
)

// ConfigStore resolves per-device configuration documents.
type ConfigStore interface {
	EnsureConfig(ctx context.Context, deviceID string) (models.DeviceConfig, error)
}

// ErrorStateStore resolves and persists per-device error-state documents.
type ErrorStateStore interface {
	EnsureErrorState(ctx context.Context, deviceID string) (models.ErrorState, error)
	SaveErrorState(ctx context.Context, deviceID string, state models.ErrorState) error
}

// TelemetryStore persists device status and history.
type TelemetryStore interface {
	SaveStatus(ctx context.Context, deviceID string, r models.Reading) error
	AppendHistory(ctx context.Context, deviceID string, r models.Reading) error
}

// Notifier delivers triggered alert notifications.
type Notifier interface {
	Notify(ctx context.Context, notif models.Notification) error
}

// Stores bundles the document-store adapters the orchestrator needs.
type Stores struct {
	Configs   ConfigStore
	States    ErrorStateStore
	Telemetry TelemetryStore
}

// Task is one reading queued for evaluation. Ack, when set, commits the
// message on the inbound bus; it is called only after the error state has
// been persisted, so a failed persist leaves the message for redelivery.
type Task struct {
	RequestID string
	DeviceID  string
	Reading   models.Reading
	Ack       func()
}

// Service is the ingestion orchestrator: a worker pool that drives each
// reading through persistence, threshold evaluation, and notification.
// Cross-invocation state lives entirely in the document store; tasks for
// different devices run concurrently without coordination. Near-simultaneous
// readings for one device can both observe the same prior state and
// double-notify; that window is accepted.
type Service struct {
	stores    Stores
	notifier  Notifier
	logger    *logging.Logger
	config    config.Config
	tasks     chan Task
	ctx       context.Context
	cancel    context.CancelFunc
	wg        *sync.WaitGroup
	wsManager *WebSocketManager
}

// New constructs the ingestion Service.
func New(stores Stores, notifier Notifier, logger *logging.Logger, cfg config.Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		stores:    stores,
		notifier:  notifier,
		logger:    logger,
		config:    cfg,
		tasks:     make(chan Task, cfg.Ingest.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		wsManager: NewWebSocketManager(logger),
	}
}

// Logger exposes the Service's logger to the bus consumer.
func (s *Service) Logger() *logging.Logger {
	return s.logger
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.config.Ingest.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop signals workers to drain and exit.
func (s *Service) Stop() {
	s.cancel()
}

// QueueTask enqueues a reading for processing, blocking while the queue is
// full. Backpressure stalls the bus consumer instead of dropping: a dropped
// reading would be neither acked nor failed, and a later commit would bury
// it on the broker.
func (s *Service) QueueTask(task Task) {
	select {
	case s.tasks <- task:
		metrics.QueueDepth.Set(float64(len(s.tasks)))
		s.logger.Debugf("Queued reading: request_id=%s device=%s", task.RequestID, task.DeviceID)
	case <-s.ctx.Done():
		s.logger.Warnf("Shutting down, reading %s for device %s left for redelivery", task.RequestID, task.DeviceID)
	}
}

// worker processes tasks until context is cancelled.
func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Worker %d stopped", id)
			return
		case task := <-s.tasks:
			metrics.QueueDepth.Set(float64(len(s.tasks)))
			if err := s.handleTask(task); err != nil {
				metrics.ReadingsTotal.WithLabelValues("failed").Inc()
				s.logger.Errorf("Reading %s for device %s failed, leaving for redelivery: %v",
					task.RequestID, task.DeviceID, err)
				continue
			}
			metrics.ReadingsTotal.WithLabelValues("processed").Inc()
			if task.Ack != nil {
				task.Ack()
			}
		}
	}
}

// handleTask drives one reading through the pipeline. Status and history
// writes are best effort; config resolution, error-state resolution, and
// the final error-state persist are not, because a stale error state on
// the next reading means wrong or duplicate alerts.
func (s *Service) handleTask(task Task) error {
	log := s.logger.WithDevice(task.DeviceID)
	reading := task.Reading
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}

	if err := s.stores.Telemetry.SaveStatus(s.ctx, task.DeviceID, reading); err != nil {
		metrics.StoreWriteFailures.WithLabelValues("status").Inc()
		log.Warnf("Status write failed: %v", err)
	}
	if err := s.stores.Telemetry.AppendHistory(s.ctx, task.DeviceID, reading); err != nil {
		metrics.StoreWriteFailures.WithLabelValues("history").Inc()
		log.Warnf("History write failed: %v", err)
	}

	cfg, err := s.stores.Configs.EnsureConfig(s.ctx, task.DeviceID)
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}

	prior, err := s.stores.States.EnsureErrorState(s.ctx, task.DeviceID)
	if err != nil {
		return fmt.Errorf("resolve error state: %w", err)
	}

	next, notifs := engine.Evaluate(task.DeviceID, reading, cfg, prior)

	for _, notif := range notifs {
		if err := s.notifier.Notify(s.ctx, notif); err != nil {
			log.Errorf("Notification failed (%s): %v", notif.Condition, err)
		}
		s.broadcastAlert(notif)
	}

	if err := s.stores.States.SaveErrorState(s.ctx, task.DeviceID, next); err != nil {
		metrics.StoreWriteFailures.WithLabelValues("error_state").Inc()
		return fmt.Errorf("persist error state: %w", err)
	}

	log.Debugf("Reading %s processed (%d alerts)", task.RequestID, len(notifs))
	return nil
}

// broadcastAlert mirrors a triggered alert to websocket subscribers of the
// device. Best effort.
func (s *Service) broadcastAlert(notif models.Notification) {
	msg, err := json.Marshal(notif)
	if err != nil {
		s.logger.Errorf("Failed to marshal alert for websocket: %v", err)
		return
	}
	s.wsManager.SendToDevice(notif.DeviceID, msg)
}
