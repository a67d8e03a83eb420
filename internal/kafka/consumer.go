package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"telemetry-bridge/internal/ingest"
	"telemetry-bridge/internal/logging"
	"telemetry-bridge/internal/metrics"
	"telemetry-bridge/internal/models"
)

// Consumer reads device readings from the bus and feeds the ingestion
// service. Workers acknowledge a message only after its error state has
// been persisted; acknowledgements feed a per-partition watermark and a
// single commit loop, so the group offset never advances past an unhandled
// message no matter how many later messages other workers finish first. A
// failed reading holds the watermark at its offset and the broker
// redelivers from there.
type Consumer struct {
	reader  *kafka.Reader
	svc     *ingest.Service
	logger  *logging.Logger
	tracker *offsetTracker
	wake    chan struct{}
	quit    chan struct{}
	closed  atomic.Bool
}

func NewConsumer(brokers []string, topic, groupID string, svc *ingest.Service) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &Consumer{
		reader:  reader,
		svc:     svc,
		logger:  svc.Logger(),
		tracker: newOffsetTracker(),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

func (c *Consumer) Start(wg *sync.WaitGroup) {
	wg.Add(2)
	go c.fetchLoop(wg)
	go c.commitLoop(wg)
}

func (c *Consumer) fetchLoop(wg *sync.WaitGroup) {
	defer wg.Done()
	c.logger.Info("Kafka consumer started")
	ctx := context.Background()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.logger.Errorf("Fetch message failed: %v", err)
			continue
		}
		c.tracker.observe(msg)

		deviceID, reading, err := parseMessage(msg)
		if err != nil {
			// Malformed delivery: reject, acknowledge, never retry in-core.
			metrics.ReadingsTotal.WithLabelValues("rejected").Inc()
			c.logger.Errorf("Invalid message at offset %d: %v", msg.Offset, err)
			c.ack(msg)
			continue
		}

		m := msg
		c.svc.QueueTask(ingest.Task{
			RequestID: uuid.New().String(),
			DeviceID:  deviceID,
			Reading:   reading,
			Ack: func() {
				c.ack(m)
			},
		})
	}
}

// ack marks one message handled and nudges the commit loop when the
// watermark advanced.
func (c *Consumer) ack(msg kafka.Message) {
	if c.tracker.ack(msg) {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

// commitLoop is the only goroutine that talks to the broker about offsets,
// committing whatever watermark positions the tracker has cleared.
func (c *Consumer) commitLoop(wg *sync.WaitGroup) {
	defer wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-c.quit:
			return
		case <-c.wake:
			msgs := c.tracker.commitReady()
			if len(msgs) == 0 {
				continue
			}
			if err := c.reader.CommitMessages(ctx, msgs...); err != nil && !c.closed.Load() {
				c.logger.Errorf("Commit failed: %v", err)
			}
		}
	}
}

// parseMessage validates one bus message and extracts the device id and
// reading. A reading with no known sensor fields is rejected here: it has
// no verdict to offer the evaluator.
func parseMessage(msg kafka.Message) (string, models.Reading, error) {
	deviceID := deviceIDFrom(msg)
	if deviceID == "" {
		return "", models.Reading{}, errors.New("missing device id")
	}
	reading, err := models.ParseReading(msg.Value)
	if err != nil {
		return "", models.Reading{}, err
	}
	if reading.Empty() {
		return "", models.Reading{}, fmt.Errorf("no known sensor fields from device %s", deviceID)
	}
	return deviceID, reading, nil
}

// deviceIDFrom resolves the device identifier attribute: message key first,
// then a device_id header.
func deviceIDFrom(msg kafka.Message) string {
	if len(msg.Key) > 0 {
		return string(msg.Key)
	}
	for _, h := range msg.Headers {
		if h.Key == "device_id" {
			return string(h.Value)
		}
	}
	return ""
}

func (c *Consumer) Close() {
	c.closed.Store(true)
	close(c.quit)
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Consumer close failed: %v", err)
	}
}
